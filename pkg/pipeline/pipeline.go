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
	"context"
	"log/slog"
	"os"

	"github.com/iepathos/debtmap-sub009/internal/limits"
	"github.com/iepathos/debtmap-sub009/pkg/callgraph"
	"github.com/iepathos/debtmap-sub009/pkg/classify"
	debtcontext "github.com/iepathos/debtmap-sub009/pkg/context"
	"github.com/iepathos/debtmap-sub009/pkg/coverage"
	"github.com/iepathos/debtmap-sub009/pkg/extract"
	"github.com/iepathos/debtmap-sub009/pkg/framework"
	"github.com/iepathos/debtmap-sub009/pkg/purity"
	"github.com/iepathos/debtmap-sub009/pkg/scoring"
)

// Pipeline runs the full nine-phase debt-prioritization flow over a set
// of already-discovered source files.
type Pipeline struct {
	logger              *slog.Logger
	registry            *extract.Registry
	patternCfg          *framework.PatternConfig
	diagnostics         DiagnosticCollector
	frameworkExclusions map[extract.FunctionId]bool
}

// Option configures a Pipeline at construction time.
type Option func(*Pipeline)

// WithLogger overrides the default slog.Logger (os.Stderr, text handler).
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithPatternConfig attaches loaded framework pattern files.
func WithPatternConfig(cfg *framework.PatternConfig) Option {
	return func(p *Pipeline) { p.patternCfg = cfg }
}

// New builds a Pipeline with the given extractor registry.
func New(registry *extract.Registry, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry: registry,
		logger:   slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Input is everything the pipeline needs to run: raw file contents
// keyed by path, plus the run configuration (coverage file path,
// whether context detection runs).
type Input struct {
	Sources map[string][]byte
	Config  Config
}

// Run executes all nine phases sequentially and returns the final state,
// whose Results.ScoredItems holds the ranked item list. Every phase runs
// on the calling goroutine; Run does not use WorkerPool.
func (p *Pipeline) Run(ctx context.Context, in Input) (State, error) {
	state := NewState(in.Config)

	if r := limits.ValidateTotalInputSize(in.Sources); !r.OK {
		return state, &FatalError{Phase: state.Phase, Message: r.Message}
	}

	// Phase 1: Extraction.
	files, diags := p.extractAll(in.Sources)
	for _, d := range diags {
		p.diagnostics.Add(d)
	}
	var metrics []extract.FunctionMetrics
	for _, f := range files {
		for _, fn := range f.Functions {
			metrics = append(metrics, fn.Metrics)
		}
	}
	state.Results.Files = files
	state = state.WithMetrics(metrics)

	if !CanStartCallGraph(state) {
		return state, &FatalError{Phase: state.Phase, Message: "extraction produced no metrics"}
	}
	state.Phase = PhaseCallGraphBuilding

	// Phase 2: Call-graph build + framework-exclusion detection. No trait
	// registry is consulted, so no trait-dispatch edges are added.
	imports, moduleTree := buildImportsAndModuleTree(files)
	g := callgraph.Build(files, imports, moduleTree)
	p.augmentFrameworkExclusions(files)
	state.Phase = PhaseCallGraphComplete
	state.Results = state.Results.WithCallGraph(g)

	// Phase 3 (optional): Coverage load.
	var covMap *coverage.Map
	if CanStartCoverage(state) {
		state.Phase = PhaseCoverageLoading
		var err error
		covMap, err = coverage.LoadLCOV(in.Config.CoverageFile)
		if err != nil {
			p.diagnostics.Add(FileDiagnostic{File: in.Config.CoverageFile, Phase: state.Phase, Message: err.Error()})
			covMap = coverage.NewMap()
		} else {
			covMap.BindFunctions(metrics)
		}
	} else if CanSkipCoverage(state) {
		covMap = coverage.NewMap()
	}
	state.Phase = PhaseCoverageComplete
	state.Results = state.Results.WithCoverage(covMap)

	if !CanStartPurity(state) {
		return state, &FatalError{Phase: state.Phase, Message: "call graph missing before purity phase"}
	}

	// Phase 4: Purity propagation.
	state.Phase = PhasePurityAnalyzing
	propagator := purity.NewPropagator(g)
	purityResults := propagator.Propagate(metrics)
	enriched := applyPurity(metrics, purityResults)
	state.Phase = PhasePurityComplete
	state.Results = state.Results.WithEnrichedMetrics(enriched)

	// Phase 5 (optional): Context detection.
	var engine *debtcontext.Engine
	contexts := make(map[extract.FunctionId]debtcontext.FunctionContext)
	if CanStartContext(state) {
		state.Phase = PhaseContextLoading
		engine = debtcontext.NewEngine()
		for _, f := range files {
			det := debtcontext.NewDetector(debtcontext.ClassifyFile(f.Path))
			for _, fn := range f.Functions {
				contexts[fn.Metrics.ID] = det.AnalyzeFunction(fn.Metrics)
			}
		}
	} else if CanSkipContext(state) {
		engine = nil
	}
	state.Phase = PhaseContextComplete

	if !CanStartScoring(state) {
		return state, &FatalError{Phase: state.Phase, Message: "enriched metrics missing before scoring"}
	}

	// Phase 6: Classification.
	state.Phase = PhaseScoringInProgress
	excluded := p.frameworkExclusions
	items := make([]classify.DebtItem, 0, len(enriched))
	for _, fn := range enriched {
		fc := contexts[fn.ID]
		items = append(items, classify.Classify(fn, covMap, g, excluded, engine, fc, in.Config.DeadCodeFeatures)...)
	}
	state.Results = state.Results.WithDebtItems(items)

	// Phase 7: Scoring.
	scored := make([]scoring.Scored, 0, len(items))
	for _, item := range items {
		crit := scoring.Criticality(g, item.FuncID, nil)
		action := debtcontext.ActionDeny
		if engine != nil {
			action = engine.Evaluate(actionPatternFor(item.Kind), contexts[item.FuncID])
		}
		scored = append(scored, scoring.Score(item, crit, action))
	}
	state.Phase = PhaseScoringComplete
	state.Results = state.Results.WithScoredItems(scored)

	if !CanStartFiltering(state) {
		return state, &FatalError{Phase: state.Phase, Message: "scored items missing before filtering"}
	}

	// Phase 8: Filtering + ranking.
	state.Phase = PhaseFilteringInProgress
	ranked := scoring.Rank(scored)
	state.Results = state.Results.WithScoredItems(ranked)

	if !CanComplete(state) {
		return state, &FatalError{Phase: state.Phase, Message: "ranking did not produce a final item list"}
	}
	state.Phase = PhaseComplete

	_ = ctx
	return state, nil
}

func (p *Pipeline) extractAll(sources map[string][]byte) ([]extract.ExtractedFileData, []FileDiagnostic) {
	var files []extract.ExtractedFileData
	var diags []FileDiagnostic
	for path, src := range sources {
		f, err := p.registry.Dispatch(path, src)
		if err != nil {
			diags = append(diags, FileDiagnostic{File: path, Phase: PhaseInitialized, Message: err.Error()})
			continue
		}
		files = append(files, f)
	}
	return files, diags
}

func (p *Pipeline) augmentFrameworkExclusions(files []extract.ExtractedFileData) {
	det := framework.NewDetector()
	if p.patternCfg != nil {
		det = det.WithConfig(p.patternCfg)
	}
	for _, f := range files {
		det.Analyze(f)
	}
	p.frameworkExclusions = det.Exclusions()
}

func buildImportsAndModuleTree(files []extract.ExtractedFileData) (extract.ImportMap, extract.ModuleTree) {
	imports := make(extract.ImportMap)
	tree := make(extract.ModuleTree)
	for _, f := range files {
		imports[f.Path] = f.Imports
		if f.PackageName != "" {
			tree[f.PackageName] = append(tree[f.PackageName], f.Path)
		}
	}
	return imports, tree
}

func applyPurity(metrics []extract.FunctionMetrics, results map[extract.FunctionId]purity.Result) []extract.FunctionMetrics {
	out := make([]extract.FunctionMetrics, len(metrics))
	for i, m := range metrics {
		if r, ok := results[m.ID]; ok {
			m.IsPure = r.IsPure
			m.PurityConfidence = r.Confidence
			m.PurityLevel = r.Level
			m.PurityReason = r.Reason
		}
		out[i] = m
	}
	return out
}

func actionPatternFor(kind classify.DebtKind) debtcontext.DebtPattern {
	switch kind {
	case classify.KindComplexityHotspot, classify.KindTestComplexityHotspot:
		return debtcontext.PatternComplexity
	case classify.KindDeadCode:
		return debtcontext.PatternDeadCode
	case classify.KindTestingGap:
		return debtcontext.PatternTestingGap
	default:
		return debtcontext.PatternRisk
	}
}
