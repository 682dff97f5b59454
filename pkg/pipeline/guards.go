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

// Guards are pure functions over State: same input, same output, no
// side effects, and they never mutate the state they inspect.

// CanStartCallGraph: Initialized -> CallGraphBuilding requires metrics
// from the extraction phase.
func CanStartCallGraph(s State) bool {
	return s.Phase == PhaseInitialized && s.Results.Metrics != nil
}

// CanStartCoverage: CallGraphComplete -> CoverageLoading requires a
// built call graph and a configured coverage file.
func CanStartCoverage(s State) bool {
	return s.Phase == PhaseCallGraphComplete && s.Results.CallGraph != nil && s.Config.HasCoverageFile()
}

// CanSkipCoverage is true when no coverage file is configured and the
// pipeline should proceed straight to CoverageComplete.
func CanSkipCoverage(s State) bool {
	return s.Phase == PhaseCallGraphComplete && !s.Config.HasCoverageFile()
}

// CanStartPurity: CoverageComplete -> PurityAnalyzing requires a call
// graph (coverage itself is optional, loaded or skipped either way).
func CanStartPurity(s State) bool {
	return s.Phase == PhaseCoverageComplete && s.Results.CallGraph != nil
}

// CanStartContext: PurityComplete -> ContextLoading requires enriched
// (purity-propagated) metrics and context detection enabled in config.
func CanStartContext(s State) bool {
	return s.Phase == PhasePurityComplete && s.Results.EnrichedMetrics != nil && s.Config.EnableContext
}

// CanSkipContext is true when context detection is disabled and the
// pipeline should proceed straight to ContextComplete.
func CanSkipContext(s State) bool {
	return s.Phase == PhasePurityComplete && !s.Config.EnableContext
}

// CanStartScoring: ContextComplete -> ScoringInProgress requires every
// upstream dependency to be present.
func CanStartScoring(s State) bool {
	return s.Phase == PhaseContextComplete && s.Results.CallGraph != nil && s.Results.EnrichedMetrics != nil
}

// CanStartFiltering: ScoringComplete -> FilteringInProgress requires
// scored items.
func CanStartFiltering(s State) bool {
	return s.Phase == PhaseScoringComplete && s.Results.ScoredItems != nil
}

// CanComplete: FilteringInProgress -> Complete requires the final
// scored/ranked item list.
func CanComplete(s State) bool {
	return s.Phase == PhaseFilteringInProgress && s.Results.ScoredItems != nil
}

// IsValidCheckpoint validates that a resumed state carries every field
// its current phase requires, used when loading a checkpoint to decide
// whether it is safe to continue from rather than restart.
func IsValidCheckpoint(s State) bool {
	switch s.Phase {
	case PhaseInitialized:
		return true
	case PhaseCallGraphBuilding:
		return s.Results.Metrics != nil
	case PhaseCallGraphComplete, PhaseCoverageLoading:
		return s.Results.Metrics != nil && s.Results.CallGraph != nil
	case PhaseCoverageComplete, PhasePurityAnalyzing:
		return s.Results.Metrics != nil && s.Results.CallGraph != nil
	case PhasePurityComplete, PhaseContextLoading, PhaseContextComplete:
		return s.Results.Metrics != nil && s.Results.CallGraph != nil && s.Results.EnrichedMetrics != nil
	case PhaseScoringInProgress, PhaseScoringComplete:
		return s.Results.Metrics != nil && s.Results.CallGraph != nil && s.Results.EnrichedMetrics != nil
	case PhaseFilteringInProgress:
		return s.Results.Metrics != nil && s.Results.CallGraph != nil && s.Results.EnrichedMetrics != nil && s.Results.ScoredItems != nil
	case PhaseComplete:
		return s.Results.ScoredItems != nil
	default:
		return false
	}
}
