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

// Package scoring turns a classified DebtItem into a ranked, severity-
// tiered score: a base score per debt kind, multiplied by a criticality
// factor derived from the function's position in the call graph, then
// dampened by the context rule engine.
package scoring

import (
	"fmt"
	"math"

	"github.com/iepathos/debtmap-sub009/pkg/callgraph"
	"github.com/iepathos/debtmap-sub009/pkg/extract"
	"github.com/iepathos/debtmap-sub009/pkg/graphmetrics"
)

// GitSignal carries optional version-control history for a function,
// used as the fifth criticality factor when available.
type GitSignal struct {
	ChangeCount int
	BugCount    int
}

// Criticality computes the entry-distance/fan-in/hot-path/fan-out/
// git-signal multiplier for a function, grounded verbatim on the
// teacher analyzer's formula and capped at 2.0 overall.
func Criticality(g *callgraph.CallGraph, id extract.FunctionId, git *GitSignal) float64 {
	distance := graphmetrics.EntryDistance(g, id)
	factor := entryDistanceFactor(distance)

	callers := len(g.GetCallers(id))
	if callers > 0 {
		fanIn := 1.0 + math.Log(float64(callers))*0.2
		if fanIn > 1.8 {
			fanIn = 1.8
		}
		factor *= fanIn
	}

	m := graphmetrics.Compute(g, id)
	if m.IsHub() || m.IsBridge() {
		factor *= 1.5
	}

	callees := len(g.GetCallees(id))
	if callees > 5 {
		fanOut := 1.0 + float64(callees)/10.0
		if fanOut > 1.3 {
			fanOut = 1.3
		}
		factor *= fanOut
	}

	if git != nil {
		if git.ChangeCount > 10 {
			churn := 1.0 + float64(git.ChangeCount)/50.0
			if churn > 1.4 {
				churn = 1.4
			}
			factor *= churn
		}
		if git.BugCount > 5 {
			bugFactor := 1.0 + float64(git.BugCount)/20.0
			if bugFactor > 1.5 {
				bugFactor = 1.5
			}
			factor *= bugFactor
		}
	}

	if factor > 2.0 {
		factor = 2.0
	}
	return factor
}

// entryDistanceFactor maps an entry-point hop distance to its base
// criticality weight: closer to an entry point is more critical, decaying
// exponentially. A distance of -1 (unreachable from any known entry
// point) gets the weakest weight, the same as a very large distance.
func entryDistanceFactor(distance int) float64 {
	if distance < 0 {
		distance = 50
	}
	return 2.0 / (1.0 + float64(distance)*0.3)
}

// Explain renders the same factor computation as ExplainCriticality does
// in the original analyzer: a short human-readable breakdown of which
// factors contributed, for inclusion in verbose CLI output.
func Explain(g *callgraph.CallGraph, id extract.FunctionId, git *GitSignal) []string {
	var lines []string
	distance := graphmetrics.EntryDistance(g, id)
	if distance >= 0 {
		lines = append(lines, fmt.Sprintf("entry distance %d (factor %.2f)", distance, entryDistanceFactor(distance)))
	} else {
		lines = append(lines, "unreachable from any known entry point")
	}

	callers := len(g.GetCallers(id))
	if callers > 0 {
		lines = append(lines, fmt.Sprintf("%d callers (fan-in boost)", callers))
	}

	m := graphmetrics.Compute(g, id)
	if m.IsHub() {
		lines = append(lines, "hub function (indegree >= 10)")
	}
	if m.IsBridge() {
		lines = append(lines, "bridge function (high betweenness)")
	}

	callees := len(g.GetCallees(id))
	if callees > 5 {
		lines = append(lines, fmt.Sprintf("%d callees (fan-out boost)", callees))
	}

	if git != nil {
		if git.ChangeCount > 10 {
			lines = append(lines, fmt.Sprintf("%d historical changes (churn boost)", git.ChangeCount))
		}
		if git.BugCount > 5 {
			lines = append(lines, fmt.Sprintf("%d associated bug fixes (bug-history boost)", git.BugCount))
		}
	}
	return lines
}
