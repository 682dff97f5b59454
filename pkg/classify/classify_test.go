// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iepathos/debtmap-sub009/pkg/callgraph"
	"github.com/iepathos/debtmap-sub009/pkg/context"
	"github.com/iepathos/debtmap-sub009/pkg/coverage"
	"github.com/iepathos/debtmap-sub009/pkg/extract"

	fixtures "github.com/iepathos/debtmap-sub009/internal/testing"
)

func TestDebtKind_String(t *testing.T) {
	tests := []struct {
		kind DebtKind
		want string
	}{
		{KindRisk, "Risk"},
		{KindTestingGap, "TestingGap"},
		{KindComplexityHotspot, "ComplexityHotspot"},
		{KindDeadCode, "DeadCode"},
		{KindTestComplexityHotspot, "TestComplexityHotspot"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func hasKind(items []DebtItem, k DebtKind) bool {
	for _, item := range items {
		if item.Kind == k {
			return true
		}
	}
	return false
}

func TestClassify_MultipleIndependentKindsAccumulate(t *testing.T) {
	// cyclomatic=18, cognitive=25, coverage=0.10: clears both the
	// testing-gap and complexity-hotspot thresholds at once, so both
	// must appear in the same result set (spec end-to-end scenario 3).
	fn := fixtures.NewFunction("a.go", "Handle", 1, fixtures.WithComplexity(18), fixtures.WithCognitive(25))
	fn.EndLine = 10

	dir := t.TempDir()
	lcov := "SF:a.go\nDA:1,1\nDA:2,0\nDA:3,0\nDA:4,0\nDA:5,0\nDA:6,0\nDA:7,0\nDA:8,0\nDA:9,0\nDA:10,0\nend_of_record\n"
	path := filepath.Join(dir, "lcov.info")
	if err := os.WriteFile(path, []byte(lcov), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	cov, err := coverage.LoadLCOV(path)
	if err != nil {
		t.Fatalf("LoadLCOV: %v", err)
	}
	cov.BindFunctions([]extract.FunctionMetrics{fn})

	// The scenario's function has two callers, so it is not dead code.
	g := callgraph.New()
	g.AddFunction(fn.ID, false, false, fn.Cyclomatic, fn.Length)
	for i, name := range []string{"CallerA", "CallerB"} {
		caller := fixtures.NewFunction("b.go", name, i+1)
		g.AddFunction(caller.ID, false, false, 1, 1)
		g.AddCall(callgraph.FunctionCall{Caller: caller.ID, Callee: fn.ID})
	}

	items := Classify(fn, cov, g, nil, nil, context.FunctionContext{}, nil)
	if !hasKind(items, KindTestingGap) {
		t.Errorf("items = %+v, want a TestingGap item", items)
	}
	if !hasKind(items, KindComplexityHotspot) {
		t.Errorf("items = %+v, want a ComplexityHotspot item", items)
	}
	if len(items) != 2 {
		t.Errorf("len(items) = %d, want exactly 2 (TestingGap + ComplexityHotspot)", len(items))
	}
}

func TestClassify_ComplexityHotspotAboveThreshold(t *testing.T) {
	fn := fixtures.NewFunction("a.go", "Big", 1, fixtures.WithComplexity(15), fixtures.WithCognitive(20))
	items := Classify(fn, nil, nil, nil, nil, context.FunctionContext{}, nil)
	if !hasKind(items, KindComplexityHotspot) {
		t.Errorf("items = %+v, want KindComplexityHotspot", items)
	}
}

// TestLowTierSuppression concerns INV-6. The low-tier condition
// (effective cyclomatic < 8 AND cognitive < 15) can never hold together
// with isComplex (cyclomatic > 10 OR cognitive > 15), because
// lowTierCognitiveThreshold == complexityCognitiveThreshold, so the
// suppression itself is not observable through Classify. This test pins
// the isComplex boundary instead: exactly-boundary values (cyclomatic 10,
// cognitive 15) produce no finding.
func TestLowTierSuppression_BoundaryValuesProduceNoComplexityFinding(t *testing.T) {
	fn := fixtures.NewFunction("a.go", "Ok", 1, fixtures.WithComplexity(10), fixtures.WithCognitive(15))
	items := Classify(fn, nil, nil, nil, nil, context.FunctionContext{}, nil)
	if hasKind(items, KindComplexityHotspot) {
		t.Errorf("boundary values (cyclomatic=10, cognitive=15) should not trigger isComplex, got %+v", items)
	}
}

func TestClassify_DeadCodeWhenNoCallers(t *testing.T) {
	fn := fixtures.NewFunction("a.go", "Unused", 1, fixtures.WithVisibility(extract.VisibilityPrivate))
	g := callgraph.New()
	g.AddFunction(fn.ID, false, false, fn.Cyclomatic, fn.Length)

	items := Classify(fn, nil, g, nil, nil, context.FunctionContext{}, nil)
	if !hasKind(items, KindDeadCode) {
		t.Errorf("items = %+v, want KindDeadCode", items)
	}
	for _, item := range items {
		if item.Kind == KindDeadCode && item.Visibility != VisibilityPrivate {
			t.Errorf("Visibility = %v, want VisibilityPrivate", item.Visibility)
		}
	}
}

func TestClassify_NotDeadCodeWhenCallerExists(t *testing.T) {
	callee := fixtures.NewFunction("a.go", "Used", 1)
	caller := fixtures.NewFunction("a.go", "Caller", 10)
	g := callgraph.New()
	g.AddFunction(callee.ID, false, false, 1, 1)
	g.AddFunction(caller.ID, false, false, 1, 1)
	g.AddCall(callgraph.FunctionCall{Caller: caller.ID, Callee: callee.ID})

	items := Classify(callee, nil, g, nil, nil, context.FunctionContext{}, nil)
	if hasKind(items, KindDeadCode) {
		t.Error("expected a function with a caller to not be classified as dead code")
	}
}

func TestIsDeadCode_ExcludesMainAndTestFunctions(t *testing.T) {
	mainFn := fixtures.NewFunction("main.go", "main", 1)
	if IsDeadCode(mainFn, nil, nil, nil) {
		t.Error("expected main() to never be flagged as dead code")
	}

	testFn := fixtures.NewFunction("a_test.go", "TestFoo", 1, fixtures.WithTest())
	if IsDeadCode(testFn, nil, nil, nil) {
		t.Error("expected a test function to never be flagged as dead code")
	}
}

func TestIsDeadCode_ExcludesFrameworkManagedFunctions(t *testing.T) {
	fn := fixtures.NewFunction("app.go", "processThing", 1)
	excluded := map[extract.FunctionId]bool{fn.ID: true}
	if IsDeadCode(fn, nil, excluded, nil) {
		t.Error("expected a framework-excluded function to never be flagged as dead code")
	}
}

func TestIsDeadCode_ExcludesTraitMethodNames(t *testing.T) {
	fn := fixtures.NewFunction("app.go", "clone", 1, fixtures.WithVisibility(extract.VisibilityPublic))
	if IsDeadCode(fn, nil, nil, nil) {
		t.Error("expected a public function named after a conventional trait method to never be flagged as dead code")
	}
}

func TestIsDeadCode_ExcludesFrameworkCallbackNames(t *testing.T) {
	fn := fixtures.NewFunction("app.go", "handle_request", 1, fixtures.WithVisibility(extract.VisibilityPrivate))
	if IsDeadCode(fn, nil, nil, nil) {
		t.Error("expected a framework-callback-shaped name to never be flagged as dead code")
	}
}

func TestIsDeadCode_DisabledByLanguageFeatureGate(t *testing.T) {
	fn := fixtures.NewFunction("app.go", "orphan", 1, fixtures.WithVisibility(extract.VisibilityPrivate))
	features := map[string]bool{"go": false}
	if IsDeadCode(fn, nil, nil, features) {
		t.Error("expected dead-code detection to be disabled when the language's detect_dead_code feature is false")
	}
}

func TestIsDeadCode_EnabledWhenLanguageFeatureMissing(t *testing.T) {
	fn := fixtures.NewFunction("app.go", "orphan", 1, fixtures.WithVisibility(extract.VisibilityPrivate))
	features := map[string]bool{"rust": false}
	if !IsDeadCode(fn, nil, nil, features) {
		t.Error("expected dead-code detection to default to enabled for a language absent from the feature map")
	}
}

func TestClassify_SimpleTestFunctionIsTestingGap(t *testing.T) {
	fn := fixtures.NewFunction("a_test.go", "TestSomething", 1, fixtures.WithTest(), fixtures.WithComplexity(3))
	items := Classify(fn, nil, nil, nil, nil, context.FunctionContext{}, nil)
	if len(items) != 1 || items[0].Kind != KindTestingGap {
		t.Errorf("items = %+v, want a single KindTestingGap (simple test, no complexity overage)", items)
	}
}

func TestClassify_ComplexTestFunctionIsTestComplexityHotspot(t *testing.T) {
	fn := fixtures.NewFunction("a_test.go", "TestSomething", 1, fixtures.WithTest(), fixtures.WithComplexity(20), fixtures.WithCognitive(25))
	items := Classify(fn, nil, nil, nil, nil, context.FunctionContext{}, nil)
	if len(items) != 1 || items[0].Kind != KindTestComplexityHotspot {
		t.Errorf("items = %+v, want a single KindTestComplexityHotspot", items)
	}
}

func TestClassify_SimplePureLogicIsMinimalRisk(t *testing.T) {
	fn := fixtures.NewFunction("a.go", "Add", 1, fixtures.WithComplexity(1), fixtures.WithCognitive(1), fixtures.WithRole(extract.RolePureLogic))
	fn.Length = 5
	excluded := map[extract.FunctionId]bool{fn.ID: true} // has a caller in the real graph; irrelevant to this case
	items := Classify(fn, nil, nil, excluded, nil, context.FunctionContext{}, nil)
	if len(items) != 1 || items[0].Kind != KindRisk || items[0].RiskScore != 0.0 {
		t.Errorf("items = %+v, want a single Kind=Risk RiskScore=0.0", items)
	}
}

func TestClassify_NeedsRiskAssessmentComputesWeightedScore(t *testing.T) {
	// cyclomatic=7, cognitive=9 stay under the complexity-hotspot thresholds
	// (10, 15) but clear the risk-assessment thresholds (5, 8), and a
	// 100-line body clears the length threshold (50).
	fn := fixtures.NewFunction("a.go", "Moderate", 1, fixtures.WithComplexity(7), fixtures.WithCognitive(9))
	fn.Length = 100
	excluded := map[extract.FunctionId]bool{fn.ID: true}
	items := Classify(fn, nil, nil, excluded, nil, context.FunctionContext{}, nil)
	if len(items) != 1 || items[0].Kind != KindRisk {
		t.Fatalf("items = %+v, want a single KindRisk", items)
	}
	item := items[0]
	want := (7.0/30.0*0.4 + 9.0/45.0*0.4 + 100.0/100.0*0.2) * 10.0
	if item.RiskScore != want {
		t.Errorf("RiskScore = %v, want %v", item.RiskScore, want)
	}
	if len(item.RiskFactors) != 3 {
		t.Errorf("RiskFactors = %v, want 3 factors (cyclomatic, cognitive, length)", item.RiskFactors)
	}
}

func TestEngine_SuppressesComplexityAndDeadCodeInGeneratedFiles(t *testing.T) {
	engine := context.NewEngine()
	fc := context.FunctionContext{FileType: context.FileTypeGenerated}

	fn := fixtures.NewFunction("a.go", "Big", 1, fixtures.WithComplexity(15), fixtures.WithCognitive(20))
	items := Classify(fn, nil, nil, nil, engine, fc, nil)
	if hasKind(items, KindComplexityHotspot) {
		t.Error("expected the context engine to skip a complexity finding in a generated file")
	}
	if hasKind(items, KindDeadCode) {
		t.Error("expected the context engine to skip a dead-code finding in a generated file")
	}
}
