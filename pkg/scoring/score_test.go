// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package scoring

import (
	"math"
	"testing"

	"github.com/iepathos/debtmap-sub009/pkg/classify"
	"github.com/iepathos/debtmap-sub009/pkg/context"
	"github.com/iepathos/debtmap-sub009/pkg/extract"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		sev  Severity
		want string
	}{
		{SeverityLow, "Low"},
		{SeverityModerate, "Moderate"},
		{SeverityHigh, "High"},
		{SeverityCritical, "Critical"},
	}
	for _, tt := range tests {
		if got := tt.sev.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestBaseScore_TestingGap(t *testing.T) {
	item := classify.DebtItem{Kind: classify.KindTestingGap, Coverage: 0.1, Cyclomatic: 5, Cognitive: 5}
	want := (1.0 - 0.1) * math.Pow(10, 0.7)
	if got := BaseScore(item); got != want {
		t.Errorf("BaseScore() = %v, want %v", got, want)
	}
}

func TestBaseScore_ComplexityHotspotUsesAdjustedWhenPresent(t *testing.T) {
	item := classify.DebtItem{Kind: classify.KindComplexityHotspot, AdjustedCyclomatic: 20, Cognitive: 25}
	want := math.Max(float64(20-10), 0) + math.Max(float64(25-15), 0)*1.5
	if got := BaseScore(item); got != want {
		t.Errorf("BaseScore() = %v, want %v", got, want)
	}
}

func TestBaseScore_ComplexityHotspotFallsBackToRawCyclomatic(t *testing.T) {
	item := classify.DebtItem{Kind: classify.KindComplexityHotspot, Cyclomatic: 12, Cognitive: 10}
	want := math.Max(float64(12-10), 0) + math.Max(float64(10-15), 0)*1.5
	if got := BaseScore(item); got != want {
		t.Errorf("BaseScore() = %v, want %v", got, want)
	}
}

func TestBaseScore_DeadCodeScalesByVisibility(t *testing.T) {
	pub := classify.DebtItem{Kind: classify.KindDeadCode, Cyclomatic: 5, Cognitive: 5, Visibility: classify.VisibilityPublic}
	priv := classify.DebtItem{Kind: classify.KindDeadCode, Cyclomatic: 5, Cognitive: 5, Visibility: classify.VisibilityPrivate}

	if got, want := BaseScore(pub), 10.0*1.0; got != want {
		t.Errorf("public BaseScore() = %v, want %v", got, want)
	}
	if got, want := BaseScore(priv), 10.0*0.3; got != want {
		t.Errorf("private BaseScore() = %v, want %v", got, want)
	}
}

func TestBaseScore_Risk(t *testing.T) {
	item := classify.DebtItem{Kind: classify.KindRisk, RiskScore: 4.2}
	if got := BaseScore(item); got != 4.2 {
		t.Errorf("BaseScore() = %v, want 4.2", got)
	}
}

func TestScore_ActionAllowDropsItem(t *testing.T) {
	item := classify.DebtItem{Kind: classify.KindRisk, RiskScore: 5.0}
	scored := Score(item, 1.0, context.ActionAllow)
	if !scored.Dropped {
		t.Error("expected ActionAllow to drop the item")
	}
}

func TestScore_ActionSkipDropsItem(t *testing.T) {
	item := classify.DebtItem{Kind: classify.KindRisk, RiskScore: 5.0}
	scored := Score(item, 1.0, context.ActionSkip)
	if !scored.Dropped {
		t.Error("expected ActionSkip to drop the item")
	}
}

func TestScore_ActionWarnAppliesDampening(t *testing.T) {
	item := classify.DebtItem{Kind: classify.KindRisk, RiskScore: 10.0}
	scored := Score(item, 1.0, context.ActionWarn)
	if scored.Dropped {
		t.Fatal("ActionWarn should not drop the item")
	}
	if want := 10.0 * 0.6; scored.FinalScore != want {
		t.Errorf("FinalScore = %v, want %v", scored.FinalScore, want)
	}
}

func TestScore_ReduceSeverityAppliesProportionalFactor(t *testing.T) {
	item := classify.DebtItem{Kind: classify.KindRisk, RiskScore: 10.0}
	scored := Score(item, 1.0, context.ReduceSeverity(2))
	want := 10.0 * (1.0 - 2*0.2)
	if scored.FinalScore != want {
		t.Errorf("FinalScore = %v, want %v", scored.FinalScore, want)
	}
}

func TestScore_DenyAppliesCriticalityOnly(t *testing.T) {
	item := classify.DebtItem{Kind: classify.KindRisk, RiskScore: 5.0}
	scored := Score(item, 1.5, context.ActionDeny)
	if scored.FinalScore != 7.5 {
		t.Errorf("FinalScore = %v, want 7.5", scored.FinalScore)
	}
	if scored.Severity != SeverityHigh {
		t.Errorf("Severity = %v, want High", scored.Severity)
	}
}

func TestSeverityFor_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  Severity
	}{
		{2.0, SeverityLow},
		{2.1, SeverityModerate},
		{5.0, SeverityModerate},
		{5.1, SeverityHigh},
		{10.0, SeverityHigh},
		{10.1, SeverityCritical},
	}
	for _, tt := range tests {
		if got := severityFor(tt.score); got != tt.want {
			t.Errorf("severityFor(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestRank_DropsDroppedItemsAndSortsByScoreDescending(t *testing.T) {
	items := []Scored{
		{Item: classify.DebtItem{FuncID: extract.NewFunctionID("a.go", "Low", 1)}, FinalScore: 1.0},
		{Item: classify.DebtItem{FuncID: extract.NewFunctionID("b.go", "High", 1)}, FinalScore: 9.0},
		{Item: classify.DebtItem{FuncID: extract.NewFunctionID("c.go", "Dropped", 1)}, FinalScore: 99.0, Dropped: true},
	}

	ranked := Rank(items)
	if len(ranked) != 2 {
		t.Fatalf("Rank() returned %d items, want 2 (dropped item excluded)", len(ranked))
	}
	if ranked[0].Item.FuncID.Name != "High" || ranked[1].Item.FuncID.Name != "Low" {
		t.Errorf("Rank() order = %v, want High before Low", ranked)
	}
}

func TestRank_TieBreaksBySeverityThenFileThenLine(t *testing.T) {
	items := []Scored{
		{Item: classify.DebtItem{FuncID: extract.NewFunctionID("z.go", "Z", 5)}, FinalScore: 3.0, Severity: SeverityLow},
		{Item: classify.DebtItem{FuncID: extract.NewFunctionID("a.go", "A", 1)}, FinalScore: 3.0, Severity: SeverityHigh},
		{Item: classify.DebtItem{FuncID: extract.NewFunctionID("a.go", "A2", 2)}, FinalScore: 3.0, Severity: SeverityHigh},
	}

	ranked := Rank(items)
	if ranked[0].Item.FuncID.Name != "A" || ranked[1].Item.FuncID.Name != "A2" || ranked[2].Item.FuncID.Name != "Z" {
		t.Errorf("Rank() order = %v, want [A, A2, Z]", namesOf(ranked))
	}
}

func namesOf(scored []Scored) []string {
	names := make([]string, len(scored))
	for i, s := range scored {
		names[i] = s.Item.FuncID.Name
	}
	return names
}
