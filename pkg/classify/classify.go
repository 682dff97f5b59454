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

// Package classify assigns each function zero or more debt kinds:
// TestingGap, ComplexityHotspot and DeadCode are independent checks and
// a function can carry more than one; test functions are classified
// exclusively as TestingGap or TestComplexityHotspot, and any function
// that matches none of the above falls back to a role-and-complexity
// driven Risk classification.
package classify

import (
	"fmt"
	"strings"

	"github.com/iepathos/debtmap-sub009/pkg/callgraph"
	"github.com/iepathos/debtmap-sub009/pkg/context"
	"github.com/iepathos/debtmap-sub009/pkg/coverage"
	"github.com/iepathos/debtmap-sub009/pkg/extract"
)

// DebtKind enumerates the classifications a function can receive. A
// function may carry more than one DebtItem, each with a distinct
// DebtKind.
type DebtKind int

const (
	KindRisk DebtKind = iota
	KindTestingGap
	KindComplexityHotspot
	KindDeadCode
	KindTestComplexityHotspot
)

// String renders the debt kind for reports and diagnostics.
func (k DebtKind) String() string {
	switch k {
	case KindTestingGap:
		return "TestingGap"
	case KindComplexityHotspot:
		return "ComplexityHotspot"
	case KindDeadCode:
		return "DeadCode"
	case KindTestComplexityHotspot:
		return "TestComplexityHotspot"
	default:
		return "Risk"
	}
}

// Visibility mirrors the three-way access lattice used in scoring
// output (public/crate-or-package/private).
type Visibility int

const (
	VisibilityPrivate Visibility = iota
	VisibilityPackage
	VisibilityPublic
)

// DebtItem is the classifier's verdict for one function.
type DebtItem struct {
	FuncID               extract.FunctionId
	Kind                 DebtKind
	Coverage             float64
	Cyclomatic           int
	Cognitive            int
	AdjustedCyclomatic   int
	Visibility           Visibility
	UsageHints           []string
	RiskScore            float64
	RiskFactors          []string
}

const (
	complexityCyclomaticThreshold = 10
	complexityCognitiveThreshold  = 15
	lowTierCyclomaticThreshold    = 8
	lowTierCognitiveThreshold     = 15
	testingGapCoverageThreshold   = 0.20
	simpleCyclomaticThreshold     = 3
	simpleCognitiveThreshold      = 5
	riskCyclomaticThreshold       = 5
	riskCognitiveThreshold        = 8
	riskLengthThreshold           = 50

	testComplexityCyclomaticThreshold = 15
	testComplexityCognitiveThreshold  = 20
)

// Classify determines the debt kinds for fn (INV-3: a distinct DebtItem
// per distinct debt kind the function carries). Test functions are
// classified exclusively via classifyTestDebt. Every other function
// accumulates the independent TestingGap, ComplexityHotspot and
// DeadCode checks (INV-5, INV-6 govern the dead-code and low-tier
// rules applied along the way), falling back to a role-and-complexity
// classification only when none of those checks produced a finding.
func Classify(fn extract.FunctionMetrics, cov *coverage.Map, g *callgraph.CallGraph, excluded map[extract.FunctionId]bool, engine *context.Engine, fc context.FunctionContext, deadCodeFeatures map[string]bool) []DebtItem {
	if fn.IsTest {
		return []DebtItem{classifyTestDebt(fn)}
	}

	var items []DebtItem
	if item, ok := checkTestingGap(fn, cov, engine, fc); ok {
		items = append(items, item)
	}
	if item, ok := checkComplexityHotspot(fn, engine, fc); ok {
		items = append(items, item)
	}
	if item, ok := checkDeadCode(fn, g, excluded, engine, fc, deadCodeFeatures); ok {
		items = append(items, item)
	}
	if len(items) > 0 {
		return items
	}
	return []DebtItem{classifyByRoleAndComplexity(fn, cov)}
}

func checkTestingGap(fn extract.FunctionMetrics, cov *coverage.Map, engine *context.Engine, fc context.FunctionContext) (DebtItem, bool) {
	if fn.IsTest || cov == nil {
		return DebtItem{}, false
	}
	direct, ok := cov.Direct(fn.ID)
	if !ok || direct >= testingGapCoverageThreshold {
		return DebtItem{}, false
	}
	if engine != nil && !engine.ShouldAnalyze(context.PatternTestingGap, fc) {
		return DebtItem{}, false
	}
	return DebtItem{
		FuncID:     fn.ID,
		Kind:       KindTestingGap,
		Coverage:   direct,
		Cyclomatic: fn.Cyclomatic,
		Cognitive:  fn.Cognitive,
	}, true
}

// checkComplexityHotspot applies the effective (entropy-adjusted where
// available) cyclomatic threshold and suppresses the "Low tier" case
// (INV-6): effective cyclomatic < 8 AND cognitive < 15 is treated as
// already maintainable and emits no finding.
func checkComplexityHotspot(fn extract.FunctionMetrics, engine *context.Engine, fc context.FunctionContext) (DebtItem, bool) {
	effective := fn.Cyclomatic
	if fn.AdjustedComplexity > 0 {
		effective = roundToInt(fn.AdjustedComplexity)
	}

	isComplex := effective > complexityCyclomaticThreshold || fn.Cognitive > complexityCognitiveThreshold
	if !isComplex {
		return DebtItem{}, false
	}

	isLowTier := effective < lowTierCyclomaticThreshold && fn.Cognitive < lowTierCognitiveThreshold
	if isLowTier {
		return DebtItem{}, false
	}

	if engine != nil && !engine.ShouldAnalyze(context.PatternComplexity, fc) {
		return DebtItem{}, false
	}

	return DebtItem{
		FuncID:             fn.ID,
		Kind:               KindComplexityHotspot,
		Cyclomatic:         fn.Cyclomatic,
		Cognitive:          fn.Cognitive,
		AdjustedCyclomatic: effective,
	}, true
}

func checkDeadCode(fn extract.FunctionMetrics, g *callgraph.CallGraph, excluded map[extract.FunctionId]bool, engine *context.Engine, fc context.FunctionContext, deadCodeFeatures map[string]bool) (DebtItem, bool) {
	if !IsDeadCode(fn, g, excluded, deadCodeFeatures) {
		return DebtItem{}, false
	}
	if engine != nil && !engine.ShouldAnalyze(context.PatternDeadCode, fc) {
		return DebtItem{}, false
	}
	return DebtItem{
		FuncID:     fn.ID,
		Kind:       KindDeadCode,
		Visibility: determineVisibility(fn),
		Cyclomatic: fn.Cyclomatic,
		Cognitive:  fn.Cognitive,
		UsageHints: generateUsageHints(fn),
	}, true
}

// IsDeadCode implements INV-5's ordering: the per-language
// detect_dead_code gate is checked first (a language with dead-code
// detection disabled never reports anything dead), then callers-empty
// (an implementation with a caller is never dead, however it got one),
// then hardcoded exclusions last (test functions, main, build-script
// entry points, trait/interface methods, framework callbacks, and
// anything the framework detector already excluded).
func IsDeadCode(fn extract.FunctionMetrics, g *callgraph.CallGraph, excluded map[extract.FunctionId]bool, deadCodeFeatures map[string]bool) bool {
	if !deadCodeEnabledFor(fn.File, deadCodeFeatures) {
		return false
	}
	if g != nil && len(g.GetCallers(fn.ID)) > 0 {
		return false
	}
	if excluded != nil && excluded[fn.ID] {
		return false
	}
	if isExcludedFromDeadCodeAnalysis(fn) {
		return false
	}
	return true
}

// deadCodeEnabledFor consults the caller-supplied per-language feature
// map (keyed by the config's language name, e.g. "go", "rust"). A nil
// map or a missing key both default to enabled, so callers that never
// configure language features keep today's behavior.
func deadCodeEnabledFor(file string, deadCodeFeatures map[string]bool) bool {
	if deadCodeFeatures == nil {
		return true
	}
	enabled, ok := deadCodeFeatures[languageKey(file)]
	if !ok {
		return true
	}
	return enabled
}

func languageKey(file string) string {
	switch {
	case strings.HasSuffix(file, ".go"):
		return "go"
	case strings.HasSuffix(file, ".rs"):
		return "rust"
	case strings.HasSuffix(file, ".py"):
		return "python"
	case strings.HasSuffix(file, ".ts"), strings.HasSuffix(file, ".tsx"):
		return "typescript"
	case strings.HasSuffix(file, ".js"), strings.HasSuffix(file, ".jsx"):
		return "javascript"
	default:
		return ""
	}
}

// traitMethodNames are conventional trait/interface-implementation
// method names: a public function with one of these names is almost
// always satisfying a trait contract rather than being unreachable,
// even when the extractor didn't tag it IsTraitMethod directly.
var traitMethodNames = map[string]bool{
	"fmt": true, "clone": true, "default": true,
	"from": true, "into": true, "try_from": true, "try_into": true,
	"as_ref": true, "as_mut": true, "drop": true,
	"deref": true, "deref_mut": true, "index": true, "index_mut": true,
	"add": true, "sub": true, "mul": true, "div": true, "rem": true,
	"eq": true, "ne": true, "partial_cmp": true, "cmp": true, "hash": true,
	"serialize": true, "deserialize": true,
	"next": true, "size_hint": true, "new": true,
}

// frameworkCallbackSubstrings flag names that a web or async framework
// typically invokes by reflection or registration rather than by a
// visible direct call, so a callgraph miss alone shouldn't mark them
// dead.
var frameworkCallbackSubstrings = []string{
	"handler", "route", "middleware", "controller", "endpoint",
	"spawn", "poll", "on_", "handle_", "_event", "_listener",
}

func isExcludedFromDeadCodeAnalysis(fn extract.FunctionMetrics) bool {
	if fn.Name == "main" || strings.HasPrefix(fn.Name, "_start") {
		return true
	}
	if fn.IsTest || strings.HasPrefix(fn.Name, "test_") || strings.HasPrefix(fn.Name, "Test") ||
		strings.HasPrefix(fn.Name, "tests::") {
		return true
	}
	if strings.HasSuffix(fn.File, "build.rs") && fn.Name == "main" {
		return true
	}
	if fn.IsTraitMethod {
		return true
	}
	if fn.Visibility == extract.VisibilityPublic && traitMethodNames[fn.Name] {
		return true
	}
	name := strings.ToLower(fn.Name)
	for _, substr := range frameworkCallbackSubstrings {
		if strings.Contains(name, substr) {
			return true
		}
	}
	return false
}

// classifyTestDebt is the exclusive classification path for test
// functions: one whose cyclomatic or cognitive complexity exceeds the
// (higher, test-specific) thresholds is a TestComplexityHotspot;
// otherwise it is reported as a TestingGap, since test functions carry
// no coverage of their own.
func classifyTestDebt(fn extract.FunctionMetrics) DebtItem {
	if fn.Cyclomatic > testComplexityCyclomaticThreshold || fn.Cognitive > testComplexityCognitiveThreshold {
		return DebtItem{
			FuncID:     fn.ID,
			Kind:       KindTestComplexityHotspot,
			Cyclomatic: fn.Cyclomatic,
			Cognitive:  fn.Cognitive,
		}
	}
	return DebtItem{
		FuncID:     fn.ID,
		Kind:       KindTestingGap,
		Coverage:   0.0,
		Cyclomatic: fn.Cyclomatic,
		Cognitive:  fn.Cognitive,
	}
}

func classifyByRoleAndComplexity(fn extract.FunctionMetrics, cov *coverage.Map) DebtItem {
	if isSimpleFunction(fn) {
		return classifySimpleByRole(fn)
	}
	if needsRiskAssessment(fn) {
		return DebtItem{
			FuncID:      fn.ID,
			Kind:        KindRisk,
			RiskScore:   calculateRiskScore(fn),
			RiskFactors: identifyRiskFactors(fn, cov),
		}
	}

	// Between simple and complex: the original's two branches, kept
	// verbatim rather than collapsed to one value (see DESIGN.md).
	if fn.Role == extract.RolePureLogic {
		return DebtItem{
			FuncID:      fn.ID,
			Kind:        KindRisk,
			RiskScore:   0.0,
			RiskFactors: []string{"Simple pure function - minimal risk"},
		}
	}
	return DebtItem{
		FuncID:      fn.ID,
		Kind:        KindRisk,
		RiskScore:   0.1,
		RiskFactors: []string{"Simple function with low complexity"},
	}
}

func isSimpleFunction(fn extract.FunctionMetrics) bool {
	return fn.Cyclomatic <= simpleCyclomaticThreshold && fn.Cognitive <= simpleCognitiveThreshold
}

func needsRiskAssessment(fn extract.FunctionMetrics) bool {
	return fn.Cyclomatic > riskCyclomaticThreshold || fn.Cognitive > riskCognitiveThreshold || fn.Length > riskLengthThreshold
}

func classifySimpleByRole(fn extract.FunctionMetrics) DebtItem {
	switch fn.Role {
	case extract.RoleIOWrapper, extract.RoleEntryPoint:
		return DebtItem{FuncID: fn.ID, Kind: KindRisk, RiskScore: 0.0, RiskFactors: []string{"Simple I/O wrapper or entry point - minimal risk"}}
	case extract.RolePureLogic:
		if fn.Length <= 10 {
			return DebtItem{FuncID: fn.ID, Kind: KindRisk, RiskScore: 0.0, RiskFactors: []string{"Trivial pure function - not technical debt"}}
		}
		return DebtItem{FuncID: fn.ID, Kind: KindRisk, RiskScore: 0.1, RiskFactors: []string{"Simple function with low complexity"}}
	default:
		return DebtItem{FuncID: fn.ID, Kind: KindRisk, RiskScore: 0.1, RiskFactors: []string{"Simple function with low complexity"}}
	}
}

// calculateRiskScore weighs cyclomatic, cognitive and length risk at
// 0.4/0.4/0.2, each capped to 1.0 before weighting, scaled to a 0-10
// range. Coverage is intentionally excluded here; it is folded in by
// the scoring package's unified formula instead.
func calculateRiskScore(fn extract.FunctionMetrics) float64 {
	cycloRisk := minF(float64(fn.Cyclomatic)/30.0, 1.0)
	cognitiveRisk := minF(float64(fn.Cognitive)/45.0, 1.0)
	lengthRisk := minF(float64(fn.Length)/100.0, 1.0)

	weighted := cycloRisk*0.4 + cognitiveRisk*0.4 + lengthRisk*0.2
	return weighted * 10.0
}

func identifyRiskFactors(fn extract.FunctionMetrics, cov *coverage.Map) []string {
	var factors []string
	if fn.Cyclomatic > riskCyclomaticThreshold {
		factors = append(factors, fmt.Sprintf("Moderate complexity (cyclomatic: %d)", fn.Cyclomatic))
	}
	if fn.Cognitive > riskCognitiveThreshold {
		factors = append(factors, fmt.Sprintf("Elevated cognitive load (cognitive: %d)", fn.Cognitive))
	}
	if fn.Length > riskLengthThreshold {
		factors = append(factors, fmt.Sprintf("Long function body (%d lines)", fn.Length))
	}
	if cov != nil {
		if direct, ok := cov.Direct(fn.ID); ok && direct < 0.5 {
			factors = append(factors, fmt.Sprintf("Low test coverage (%.0f%%)", direct*100))
		}
	}
	if len(factors) == 0 {
		return []string{"Potential improvement opportunity"}
	}
	return factors
}

func determineVisibility(fn extract.FunctionMetrics) Visibility {
	switch fn.Visibility {
	case extract.VisibilityPublic:
		return VisibilityPublic
	case extract.VisibilityPackage:
		return VisibilityPackage
	default:
		return VisibilityPrivate
	}
}

func generateUsageHints(fn extract.FunctionMetrics) []string {
	if fn.Visibility == extract.VisibilityPublic {
		return []string{"Public function with no internal callers"}
	}
	return []string{"Private function with no callers"}
}

func roundToInt(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
