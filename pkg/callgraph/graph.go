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

// Package callgraph builds and queries the inter-procedural call graph:
// a node set plus an edge multiset, never a pointer graph, so that Merge
// is associative, commutative and idempotent (two independently built
// partial graphs for the same project always combine to the same result
// regardless of merge order).
package callgraph

import (
	"encoding/json"
	"sort"

	"github.com/iepathos/debtmap-sub009/pkg/extract"
)

// CallType classifies how one function invokes another.
type CallType int

const (
	CallDirect CallType = iota
	CallDelegate
	CallCallback
)

// FunctionCall is a single caller→callee edge.
type FunctionCall struct {
	Caller   extract.FunctionId
	Callee   extract.FunctionId
	CallType CallType
}

// FunctionNode is the per-function metadata stored in the graph.
type FunctionNode struct {
	ID            extract.FunctionId
	IsEntryPoint  bool
	IsTest        bool
	Cyclomatic    int
	Length        int
}

// CallGraph is the node set + edge multiset representation. Construction
// is additive and order independent: AddFunction/AddCall can be invoked
// in any order across any number of partial graphs, and Merge combines
// them without needing to know that order.
type CallGraph struct {
	nodes map[extract.FunctionId]FunctionNode
	// edges is the full edge multiset, keyed by nothing in particular;
	// duplicates are deliberately kept so Merge of overlapping call sets
	// stays accurate for frequency-sensitive callers.
	edges []FunctionCall

	// callers/callees are derived secondary indices, rebuilt lazily.
	callees map[extract.FunctionId][]extract.FunctionId
	callers map[extract.FunctionId][]extract.FunctionId
	dirty   bool
}

// New returns an empty CallGraph.
func New() *CallGraph {
	return &CallGraph{
		nodes:   make(map[extract.FunctionId]FunctionNode),
		callees: make(map[extract.FunctionId][]extract.FunctionId),
		callers: make(map[extract.FunctionId][]extract.FunctionId),
	}
}

// AddFunction registers a node. Calling it twice for the same ID is a
// no-op overwrite with the latest metadata, preserving idempotency.
func (g *CallGraph) AddFunction(id extract.FunctionId, isEntryPoint, isTest bool, cyclomatic, length int) {
	g.nodes[id] = FunctionNode{
		ID:           id,
		IsEntryPoint: isEntryPoint,
		IsTest:       isTest,
		Cyclomatic:   cyclomatic,
		Length:       length,
	}
}

// AddCall appends an edge and marks the secondary indices dirty.
func (g *CallGraph) AddCall(call FunctionCall) {
	g.edges = append(g.edges, call)
	g.dirty = true
}

// Nodes returns every registered function ID, not in any particular
// order; callers that need determinism should sort the result.
func (g *CallGraph) Nodes() []extract.FunctionId {
	ids := make([]extract.FunctionId, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	return ids
}

// Node returns the metadata for id and whether it is present.
func (g *CallGraph) Node(id extract.FunctionId) (FunctionNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edges returns the full edge multiset.
func (g *CallGraph) Edges() []FunctionCall {
	return g.edges
}

func (g *CallGraph) rebuildIndices() {
	if !g.dirty {
		return
	}
	g.callees = make(map[extract.FunctionId][]extract.FunctionId)
	g.callers = make(map[extract.FunctionId][]extract.FunctionId)
	seen := make(map[[2]extract.FunctionId]bool)
	for _, e := range g.edges {
		key := [2]extract.FunctionId{e.Caller, e.Callee}
		if seen[key] {
			continue
		}
		seen[key] = true
		g.callees[e.Caller] = append(g.callees[e.Caller], e.Callee)
		g.callers[e.Callee] = append(g.callers[e.Callee], e.Caller)
	}
	g.dirty = false
}

// graphWire is the JSON-visible shape of CallGraph, used so a graph can
// round-trip through a checkpoint without exposing nodes/edges as a
// public API surface.
type graphWire struct {
	Nodes []FunctionNode `json:"nodes"`
	Edges []FunctionCall `json:"edges"`
}

// MarshalJSON serializes the node set and edge multiset; the derived
// caller/callee indices are rebuilt on load rather than stored.
func (g *CallGraph) MarshalJSON() ([]byte, error) {
	nodes := make([]FunctionNode, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	return json.Marshal(graphWire{Nodes: nodes, Edges: g.edges})
}

// UnmarshalJSON rebuilds a CallGraph from its node set and edge
// multiset, leaving the derived indices dirty so the next query rebuilds
// them.
func (g *CallGraph) UnmarshalJSON(data []byte) error {
	var w graphWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	g.nodes = make(map[extract.FunctionId]FunctionNode, len(w.Nodes))
	for _, n := range w.Nodes {
		g.nodes[n.ID] = n
	}
	g.edges = w.Edges
	g.callees = make(map[extract.FunctionId][]extract.FunctionId)
	g.callers = make(map[extract.FunctionId][]extract.FunctionId)
	g.dirty = true
	return nil
}

// GetCallees returns the distinct functions id calls.
func (g *CallGraph) GetCallees(id extract.FunctionId) []extract.FunctionId {
	g.rebuildIndices()
	return g.callees[id]
}

// GetCallers returns the distinct functions that call id.
func (g *CallGraph) GetCallers(id extract.FunctionId) []extract.FunctionId {
	g.rebuildIndices()
	return g.callers[id]
}

// Merge combines other's nodes and edges into g. Merge is associative
// and commutative because node insertion is keyed overwrite and edge
// accumulation is an append to a multiset: merging A then B produces the
// same node set and the same edge multiset (up to order) as merging B
// then A, or merging both into a third graph in one call each.
func (g *CallGraph) Merge(other *CallGraph) {
	for id, n := range other.nodes {
		if existing, ok := g.nodes[id]; ok {
			// Prefer whichever record carries non-zero metrics; both
			// sides describe the same function so this is idempotent.
			if existing.Cyclomatic == 0 && n.Cyclomatic != 0 {
				g.nodes[id] = n
			}
			continue
		}
		g.nodes[id] = n
	}
	g.edges = append(g.edges, other.edges...)
	g.dirty = true
}

// SortedNodes returns Nodes() in deterministic (file, line, name) order,
// the tie-break used for stable ranking (spec INV-4).
func (g *CallGraph) SortedNodes() []extract.FunctionId {
	ids := g.Nodes()
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].File != ids[j].File {
			return ids[i].File < ids[j].File
		}
		if ids[i].StartLine != ids[j].StartLine {
			return ids[i].StartLine < ids[j].StartLine
		}
		return ids[i].Name < ids[j].Name
	})
	return ids
}
