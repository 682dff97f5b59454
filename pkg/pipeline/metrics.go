// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var phaseDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

type phaseMetrics struct {
	phaseDuration   *prometheus.HistogramVec
	phaseItems      *prometheus.CounterVec
	phaseErrors     *prometheus.CounterVec
	panicsRecovered prometheus.Counter
}

var (
	metricsOnce sync.Once
	pipelineMetrics *phaseMetrics
)

func initMetrics() {
	metricsOnce.Do(func() {
		pipelineMetrics = &phaseMetrics{
			phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "debtmap_phase_duration_seconds",
				Help:    "Duration of each pipeline phase in seconds.",
				Buckets: phaseDurationBuckets,
			}, []string{"phase"}),
			phaseItems: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "debtmap_phase_items_processed_total",
				Help: "Number of items (files/functions) processed per phase.",
			}, []string{"phase"}),
			phaseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "debtmap_phase_errors_total",
				Help: "Number of non-fatal errors recorded per phase.",
			}, []string{"phase"}),
			panicsRecovered: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "debtmap_worker_panics_recovered_total",
				Help: "Number of worker panics recovered across all phases.",
			}),
		}
		prometheus.MustRegister(
			pipelineMetrics.phaseDuration,
			pipelineMetrics.phaseItems,
			pipelineMetrics.phaseErrors,
			pipelineMetrics.panicsRecovered,
		)
	})
}

// RecordPhaseDuration observes a phase's wall-clock duration.
func RecordPhaseDuration(phase string, seconds float64) {
	initMetrics()
	pipelineMetrics.phaseDuration.WithLabelValues(phase).Observe(seconds)
}

// RecordPhaseItems increments the processed-item counter for a phase.
func RecordPhaseItems(phase string, n int) {
	initMetrics()
	pipelineMetrics.phaseItems.WithLabelValues(phase).Add(float64(n))
}

// RecordPhaseError increments the error counter for a phase.
func RecordPhaseError(phase string) {
	initMetrics()
	pipelineMetrics.phaseErrors.WithLabelValues(phase).Inc()
}

// RecordPanicRecovered increments the worker-panic counter.
func RecordPanicRecovered() {
	initMetrics()
	pipelineMetrics.panicsRecovered.Inc()
}
