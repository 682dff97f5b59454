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

// Package purity implements two-phase purity propagation: P1 assigns
// each function its intrinsic, extractor-computed purity; P2 propagates
// purity across the call graph in topological order, with cycle-aware
// handling and confidence that decays geometrically with call depth.
package purity

import (
	"math"

	"github.com/iepathos/debtmap-sub009/pkg/callgraph"
	"github.com/iepathos/debtmap-sub009/pkg/extract"
)

// Result is the outcome of propagation for a single function.
type Result struct {
	IsPure     bool
	Confidence float64
	Level      extract.PurityLevel
	Reason     string
}

// Propagator runs two-phase purity propagation over a call graph.
type Propagator struct {
	graph   *callgraph.CallGraph
	results map[extract.FunctionId]Result
}

// NewPropagator builds a Propagator bound to a call graph.
func NewPropagator(g *callgraph.CallGraph) *Propagator {
	return &Propagator{graph: g, results: make(map[extract.FunctionId]Result)}
}

// Propagate runs P1 then P2 over functions and returns the final
// per-function results, also available afterward via Result.
func (p *Propagator) Propagate(functions []extract.FunctionMetrics) map[extract.FunctionId]Result {
	p.phase1Intrinsic(functions)

	order, cycles := topoOrder(p.graph)
	for _, id := range order {
		p.propagateOne(id, make(map[extract.FunctionId]bool))
	}
	for _, cycle := range cycles {
		p.resolveCycle(cycle)
	}

	return p.results
}

// phase1Intrinsic seeds each function's result from the extractor's own
// purity determination, defaulting to impure at low confidence when the
// extractor recorded nothing.
func (p *Propagator) phase1Intrinsic(functions []extract.FunctionMetrics) {
	for _, fn := range functions {
		if fn.PurityConfidence > 0 {
			p.results[fn.ID] = Result{
				IsPure:     fn.IsPure,
				Confidence: fn.PurityConfidence,
				Level:      purityLevelFor(fn.IsPure, false),
				Reason:     fn.PurityReason,
			}
			continue
		}
		p.results[fn.ID] = Result{
			IsPure:     false,
			Confidence: 0.3,
			Level:      extract.PurityImpure,
			Reason:     "no intrinsic purity evidence",
		}
	}
}

// propagateOne computes id's P2 result from its callees' already-settled
// results, walking depth-first. visiting guards against infinite
// recursion on any cycle topoOrder failed to fully linearize.
func (p *Propagator) propagateOne(id extract.FunctionId, visiting map[extract.FunctionId]bool) Result {
	if r, ok := p.results[id]; ok && r.Level != extract.PurityUnknown && !isIntrinsicOnly(r) {
		return r
	}
	if visiting[id] {
		// Part of a cycle; leave for resolveCycle.
		return p.results[id]
	}
	visiting[id] = true
	defer delete(visiting, id)

	base := p.results[id]
	callees := p.graph.GetCallees(id)
	if len(callees) == 0 {
		return base
	}

	allPure := true
	aggConfidence := 1.0
	maxDepth := 0
	for _, callee := range callees {
		child := p.propagateOne(callee, visiting)
		if !child.IsPure {
			allPure = false
		}
		if child.Confidence < aggConfidence {
			aggConfidence = child.Confidence
		}
		maxDepth++
	}

	depthConfidence := math.Pow(0.9, float64(maxDepth))

	result := base
	if allPure {
		result.IsPure = true
		result.Level = extract.PurityPure
		result.Confidence = clamp(base.Confidence*depthConfidence*aggConfidence, 0.5, 1.0)
		result.Reason = "all callees pure"
	} else {
		result.IsPure = false
		result.Level = extract.PurityImpure
		result.Confidence = clamp(base.Confidence*aggConfidence, 0.3, 1.0)
		result.Reason = "has impure callee"
	}

	p.results[id] = result
	return result
}

// resolveCycle handles a strongly-connected component: if every member
// is intrinsically pure, the whole cycle is RecursivePure at a
// recursion-penalized confidence; otherwise every member is impure with
// the RecursiveWithSideEffects reason.
func (p *Propagator) resolveCycle(cycle []extract.FunctionId) {
	allIntrinsicallyPure := true
	for _, id := range cycle {
		if r, ok := p.results[id]; !ok || !r.IsPure {
			allIntrinsicallyPure = false
			break
		}
	}

	for _, id := range cycle {
		if allIntrinsicallyPure {
			p.results[id] = Result{
				IsPure:     true,
				Confidence: clamp(p.results[id].Confidence*0.7, 0.5, 1.0),
				Level:      extract.PurityRecursivePure,
				Reason:     "recursive, all members intrinsically pure",
			}
		} else {
			p.results[id] = Result{
				IsPure:     false,
				Confidence: 0.95,
				Level:      extract.PurityImpureRecursiveSideEffects,
				Reason:     "recursive with side effects",
			}
		}
	}
}

func isIntrinsicOnly(r Result) bool {
	return r.Reason == "" || r.Reason == "no intrinsic purity evidence"
}

func purityLevelFor(isPure, recursive bool) extract.PurityLevel {
	switch {
	case isPure && recursive:
		return extract.PurityRecursivePure
	case isPure:
		return extract.PurityPure
	default:
		return extract.PurityImpure
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// topoOrder returns a topological ordering of the graph's callees-first
// (so a function's callees are visited before it), plus any cycles found
// via Tarjan-style DFS, each returned as a strongly-connected component.
func topoOrder(g *callgraph.CallGraph) (order []extract.FunctionId, cycles [][]extract.FunctionId) {
	const (
		white = iota
		gray
		black
	)
	color := make(map[extract.FunctionId]int)
	var stack []extract.FunctionId
	onStack := make(map[extract.FunctionId]bool)

	var visit func(id extract.FunctionId)
	visit = func(id extract.FunctionId) {
		if color[id] != white {
			return
		}
		color[id] = gray
		stack = append(stack, id)
		onStack[id] = true

		cycleMembers := map[extract.FunctionId]bool{}
		for _, callee := range g.GetCallees(id) {
			if color[callee] == white {
				visit(callee)
			} else if onStack[callee] {
				cycleMembers[callee] = true
			}
		}

		if len(cycleMembers) > 0 {
			cycleMembers[id] = true
			var members []extract.FunctionId
			for m := range cycleMembers {
				members = append(members, m)
			}
			cycles = append(cycles, members)
		} else {
			order = append(order, id)
		}

		stack = stack[:len(stack)-1]
		onStack[id] = false
		color[id] = black
	}

	for _, id := range g.SortedNodes() {
		visit(id)
	}
	return order, cycles
}
