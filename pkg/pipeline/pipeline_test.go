// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"testing"

	"github.com/iepathos/debtmap-sub009/pkg/extract"
)

// fakeExtractor is a controllable test double, grounded in
// pkg/extract's own fakeExtractor used to test Registry.Dispatch. It
// lets the end-to-end pipeline test fix function shapes directly
// rather than depending on a real language parser.
type fakeExtractor struct {
	lang  extract.Language
	files map[string]extract.ExtractedFileData
}

func (f *fakeExtractor) ExtractFile(path string, _ []byte) (extract.ExtractedFileData, error) {
	return f.files[path], nil
}

func (f *fakeExtractor) Language() extract.Language { return f.lang }

func mainID() extract.FunctionId { return extract.FunctionId{File: "main.go", Name: "main", StartLine: 1} }
func helperID() extract.FunctionId {
	return extract.FunctionId{File: "main.go", Name: "helper", StartLine: 10}
}
func orphanID() extract.FunctionId {
	return extract.FunctionId{File: "main.go", Name: "unused", StartLine: 20}
}

func buildFixtureRegistry() *extract.Registry {
	main := extract.ExtractedFunctionData{
		Metrics: extract.FunctionMetrics{
			ID: mainID(), File: "main.go", Name: "main", StartLine: 1, EndLine: 8,
			Visibility: extract.VisibilityPublic, Cyclomatic: 2, Cognitive: 2, Length: 7,
		},
		CallSites: []extract.CallSite{{CalleeName: "helper", Line: 3}},
	}
	helper := extract.ExtractedFunctionData{
		Metrics: extract.FunctionMetrics{
			ID: helperID(), File: "main.go", Name: "helper", StartLine: 10, EndLine: 30,
			Visibility: extract.VisibilityPrivate, Cyclomatic: 12, Cognitive: 18, Length: 20,
		},
	}
	orphan := extract.ExtractedFunctionData{
		Metrics: extract.FunctionMetrics{
			ID: orphanID(), File: "main.go", Name: "unused", StartLine: 20, EndLine: 25,
			Visibility: extract.VisibilityPublic, Cyclomatic: 1, Cognitive: 1, Length: 5,
		},
	}

	file := extract.ExtractedFileData{
		Path:        "main.go",
		Language:    extract.LangGo,
		Functions:   []extract.ExtractedFunctionData{main, helper, orphan},
		PackageName: "main",
	}

	fx := &fakeExtractor{lang: extract.LangGo, files: map[string]extract.ExtractedFileData{"main.go": file}}
	reg := extract.NewRegistry(extract.ExtractorModeSimplified)
	reg.RegisterSimplified(extract.LangGo, fx)
	return reg
}

func TestPipeline_Run_EndToEndReachesCompleteWithRankedItems(t *testing.T) {
	reg := buildFixtureRegistry()
	p := New(reg)

	in := Input{
		Sources: map[string][]byte{"main.go": []byte("package main\n")},
		Config:  Config{},
	}

	state, err := p.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if state.Phase != PhaseComplete {
		t.Fatalf("Phase = %v, want PhaseComplete", state.Phase)
	}
	if len(state.Results.ScoredItems) == 0 {
		t.Fatal("expected at least one scored item")
	}
	if state.Results.CallGraph == nil {
		t.Fatal("expected a populated call graph")
	}

	scored := state.Results.ScoredItems
	for i := 1; i < len(scored); i++ {
		if scored[i].FinalScore > scored[i-1].FinalScore {
			t.Errorf("Rank() result not sorted descending at index %d: %v > %v",
				i, scored[i].FinalScore, scored[i-1].FinalScore)
		}
	}

	foundHelper := false
	for _, s := range scored {
		if s.Item.FuncID == helperID() {
			foundHelper = true
			if s.Item.Kind.String() == "" {
				t.Error("expected helper's debt kind to stringify")
			}
		}
	}
	if !foundHelper {
		t.Error("expected the complex helper function to appear among scored items")
	}
}

func TestPipeline_Run_WithCoverageFileMissingRecordsDiagnosticNotFatal(t *testing.T) {
	reg := buildFixtureRegistry()
	p := New(reg)

	in := Input{
		Sources: map[string][]byte{"main.go": []byte("package main\n")},
		Config:  Config{CoverageFile: "/nonexistent/coverage.lcov"},
	}

	state, err := p.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil even when the coverage file is missing", err)
	}
	if state.Phase != PhaseComplete {
		t.Fatalf("Phase = %v, want PhaseComplete", state.Phase)
	}
	if len(p.diagnostics.All()) == 0 {
		t.Error("expected a diagnostic recorded for the missing coverage file")
	}
}

func TestPipeline_Run_EmptySourcesIsFatal(t *testing.T) {
	reg := extract.NewRegistry(extract.ExtractorModeSimplified)
	p := New(reg)

	state, err := p.Run(context.Background(), Input{Sources: map[string][]byte{}})
	if err == nil {
		t.Fatal("expected an error when extraction produces no metrics")
	}
	if state.Phase == PhaseComplete {
		t.Error("expected the pipeline to stop before PhaseComplete")
	}
}

func TestPipeline_Run_WithContextEnabledClassifiesEntryPointRole(t *testing.T) {
	reg := buildFixtureRegistry()
	p := New(reg)

	in := Input{
		Sources: map[string][]byte{"main.go": []byte("package main\n")},
		Config:  Config{EnableContext: true},
	}

	state, err := p.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if state.Phase != PhaseComplete {
		t.Fatalf("Phase = %v, want PhaseComplete", state.Phase)
	}
	if len(state.Results.ScoredItems) == 0 {
		t.Fatal("expected scored items with context detection enabled")
	}
}
