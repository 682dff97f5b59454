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

package scoring

import (
	"math"
	"sort"

	"github.com/iepathos/debtmap-sub009/pkg/callgraph"
	"github.com/iepathos/debtmap-sub009/pkg/classify"
	"github.com/iepathos/debtmap-sub009/pkg/context"
)

// Severity is the final tier a scored item falls into.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityModerate
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "Critical"
	case SeverityHigh:
		return "High"
	case SeverityModerate:
		return "Moderate"
	default:
		return "Low"
	}
}

// Scored is a DebtItem with its final score, severity and any dampening
// reason applied by the context rule engine.
type Scored struct {
	Item            classify.DebtItem
	BaseScore       float64
	Criticality     float64
	FinalScore      float64
	Severity        Severity
	DampeningReason string
	Dropped         bool
}

// BaseScore computes a debt item's raw score from its kind-specific
// formula, before any criticality multiplier or context dampening.
func BaseScore(item classify.DebtItem) float64 {
	switch item.Kind {
	case classify.KindTestingGap:
		return (1.0 - item.Coverage) * math.Pow(float64(item.Cyclomatic+item.Cognitive), 0.7)
	case classify.KindComplexityHotspot:
		effective := item.AdjustedCyclomatic
		if effective == 0 {
			effective = item.Cyclomatic
		}
		return math.Max(float64(effective-10), 0) + math.Max(float64(item.Cognitive-15), 0)*1.5
	case classify.KindDeadCode:
		return float64(item.Cyclomatic+item.Cognitive) * visibilityFactor(item.Visibility)
	case classify.KindTestComplexityHotspot:
		return (math.Max(float64(item.Cyclomatic-10), 0) + math.Max(float64(item.Cognitive-15), 0)*1.5) / 2.0
	case classify.KindRisk:
		return item.RiskScore
	default:
		return 0
	}
}

func visibilityFactor(v classify.Visibility) float64 {
	switch v {
	case classify.VisibilityPublic:
		return 1.0
	case classify.VisibilityPackage:
		return 0.6
	default:
		return 0.3
	}
}

// Score applies the criticality multiplier and context dampening to a
// classified item, producing its final score and severity tier (INV-8).
// A matched Allow or Skip action drops the item (Dropped=true).
func Score(item classify.DebtItem, critFactor float64, action context.Action) Scored {
	base := BaseScore(item)

	if action == context.ActionAllow {
		return Scored{Item: item, BaseScore: base, Dropped: true, DampeningReason: "allowed by context rule"}
	}
	if action == context.ActionSkip {
		return Scored{Item: item, BaseScore: base, Dropped: true, DampeningReason: "skipped by context rule"}
	}

	scored := base * critFactor
	reason := ""

	switch {
	case action == context.ActionWarn:
		scored *= 0.6
		reason = "warned by context rule"
	case action >= context.ReduceSeverity(0) && action.ReduceSeverityAmount() > 0:
		n := action.ReduceSeverityAmount()
		factor := 1.0 - float64(n)*0.2
		if factor < 0 {
			factor = 0
		}
		scored *= factor
		reason = "severity reduced by context rule"
	}

	return Scored{
		Item:            item,
		BaseScore:       base,
		Criticality:     critFactor,
		FinalScore:      scored,
		Severity:        severityFor(scored),
		DampeningReason: reason,
	}
}

func severityFor(score float64) Severity {
	switch {
	case score > 10:
		return SeverityCritical
	case score > 5:
		return SeverityHigh
	case score > 2:
		return SeverityModerate
	default:
		return SeverityLow
	}
}

// Rank sorts scored items descending by final score, with the INV-4 tie
// break: (1) severity tier, (2) ascending file path, (3) ascending line
// number. Items with Dropped=true are excluded from the output.
func Rank(items []Scored) []Scored {
	kept := make([]Scored, 0, len(items))
	for _, it := range items {
		if !it.Dropped {
			kept = append(kept, it)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Item.FuncID.File != b.Item.FuncID.File {
			return a.Item.FuncID.File < b.Item.FuncID.File
		}
		return a.Item.FuncID.StartLine < b.Item.FuncID.StartLine
	})

	return kept
}
