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

// Package pipeline orchestrates the nine-phase debt-prioritization
// pipeline as an explicit state machine: extraction, call-graph build,
// framework-exclusion detection, optional coverage load, purity
// propagation, optional context detection, classification, scoring, and
// filtering/ranking. Phase transitions are gated by pure guard
// predicates (guards.go) so the state machine itself never silently
// skips a required dependency.
package pipeline

import (
	"github.com/iepathos/debtmap-sub009/pkg/callgraph"
	"github.com/iepathos/debtmap-sub009/pkg/classify"
	"github.com/iepathos/debtmap-sub009/pkg/coverage"
	"github.com/iepathos/debtmap-sub009/pkg/extract"
	"github.com/iepathos/debtmap-sub009/pkg/scoring"
)

// Phase enumerates every state the pipeline can be in.
type Phase int

const (
	PhaseInitialized Phase = iota
	PhaseCallGraphBuilding
	PhaseCallGraphComplete
	PhaseCoverageLoading
	PhaseCoverageComplete
	PhasePurityAnalyzing
	PhasePurityComplete
	PhaseContextLoading
	PhaseContextComplete
	PhaseScoringInProgress
	PhaseScoringComplete
	PhaseFilteringInProgress
	PhaseComplete
)

// Config carries the run-wide options guards consult: whether a
// coverage file was supplied, whether context detection is enabled,
// and which languages have dead-code detection turned on.
type Config struct {
	CoverageFile string
	EnableContext bool
	DeadCodeFeatures map[string]bool
}

// HasCoverageFile reports whether a coverage source was configured.
func (c Config) HasCoverageFile() bool { return c.CoverageFile != "" }

// Results accumulates pipeline output additively across phases: each
// phase's With* method returns a new Results value with one more field
// populated, never mutating a value already handed to a later phase
// (copy-on-write), so earlier phases' output stays valid for
// diagnostics or checkpointing even after later phases run.
type Results struct {
	Files           []extract.ExtractedFileData
	Metrics         []extract.FunctionMetrics
	CallGraph       *callgraph.CallGraph
	Coverage        *coverage.Map
	EnrichedMetrics []extract.FunctionMetrics // metrics post purity-propagation
	DebtItems       []classify.DebtItem
	ScoredItems     []scoring.Scored
}

// WithMetrics returns a copy of r with Metrics set.
func (r Results) WithMetrics(m []extract.FunctionMetrics) Results {
	r.Metrics = m
	return r
}

// WithCallGraph returns a copy of r with CallGraph set.
func (r Results) WithCallGraph(g *callgraph.CallGraph) Results {
	r.CallGraph = g
	return r
}

// WithCoverage returns a copy of r with Coverage set.
func (r Results) WithCoverage(c *coverage.Map) Results {
	r.Coverage = c
	return r
}

// WithEnrichedMetrics returns a copy of r with EnrichedMetrics set.
func (r Results) WithEnrichedMetrics(m []extract.FunctionMetrics) Results {
	r.EnrichedMetrics = m
	return r
}

// WithDebtItems returns a copy of r with DebtItems set.
func (r Results) WithDebtItems(items []classify.DebtItem) Results {
	r.DebtItems = items
	return r
}

// WithScoredItems returns a copy of r with ScoredItems set.
func (r Results) WithScoredItems(items []scoring.Scored) Results {
	r.ScoredItems = items
	return r
}

// State is the full pipeline state: current phase, config, and
// accumulated results.
type State struct {
	Phase   Phase
	Config  Config
	Results Results
}

// NewState returns a fresh Initialized state for the given config.
func NewState(cfg Config) State {
	return State{Phase: PhaseInitialized, Config: cfg}
}

// WithMetrics returns a copy of s with Results.Metrics populated, used
// by tests exercising guard transitions directly off extraction output.
func (s State) WithMetrics(m []extract.FunctionMetrics) State {
	s.Results = s.Results.WithMetrics(m)
	return s
}
