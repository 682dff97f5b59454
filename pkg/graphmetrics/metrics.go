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

// Package graphmetrics computes structural centrality measures over a
// call graph: fan-in/fan-out, entry-point distance and clustering (the
// Betweenness field of Metrics is not computed here), used by scoring to
// dampen or amplify a function's debt score according to its position in
// the call topology.
package graphmetrics

import (
	"github.com/iepathos/debtmap-sub009/pkg/callgraph"
	"github.com/iepathos/debtmap-sub009/pkg/extract"
)

// Metrics is the per-function structural snapshot computed against a
// single call graph.
type Metrics struct {
	Outdegree    int
	Indegree     int
	Depth        int // shortest distance from any entry point, -1 if unreachable
	Betweenness  float64
	Clustering   float64
}

// Empty returns a zero-value Metrics with Depth set to -1 (unreachable),
// the same default the original analyzer uses before BFS discovers a
// function.
func Empty() Metrics {
	return Metrics{Depth: -1}
}

// Compute returns the outdegree, indegree and clustering coefficient for
// id within g. Depth stays -1 and Betweenness 0; EntryDistance computes
// the depth separately.
func Compute(g *callgraph.CallGraph, id extract.FunctionId) Metrics {
	m := Empty()
	m.Outdegree = len(g.GetCallees(id))
	m.Indegree = len(g.GetCallers(id))
	m.Clustering = ComputeClusteringCoefficient(g, id)
	return m
}

// IsOrchestrator reports whether a function fans out broadly while
// having few callers of its own: outdegree>=5 and indegree<=3.
func (m Metrics) IsOrchestrator() bool {
	return m.Outdegree >= 5 && m.Indegree <= 3
}

// IsLeaf reports whether a function calls nothing else.
func (m Metrics) IsLeaf() bool {
	return m.Outdegree == 0
}

// IsHub reports whether a function is called from at least 10 distinct
// callers.
func (m Metrics) IsHub() bool {
	return m.Indegree >= 10
}

// IsBridge reports whether a function sits on more than half of all
// shortest paths through the graph.
func (m Metrics) IsBridge() bool {
	return m.Betweenness > 0.5
}

// IsUtilityCluster reports whether a function is both tightly clustered
// with its neighbors and has several callers, the signature of a small
// cohesive utility group.
func (m Metrics) IsUtilityCluster() bool {
	return m.Clustering > 0.6 && m.Indegree >= 3
}

// ComputeClusteringCoefficient measures how connected a function's
// callees are to one another: actual edges between callees divided by
// the N*(N-1) possible directed edges. Fewer than two callees yields 0,
// since clustering is undefined for a single neighbor.
func ComputeClusteringCoefficient(g *callgraph.CallGraph, id extract.FunctionId) float64 {
	neighbors := g.GetCallees(id)
	n := len(neighbors)
	if n < 2 {
		return 0.0
	}

	actual := 0
	for i := 0; i < n; i++ {
		iCallees := g.GetCallees(neighbors[i])
		iSet := make(map[extract.FunctionId]bool, len(iCallees))
		for _, c := range iCallees {
			iSet[c] = true
		}
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if iSet[neighbors[j]] {
				actual++
			}
		}
	}

	possible := n * (n - 1)
	if possible == 0 {
		return 0.0
	}
	return float64(actual) / float64(possible)
}

// ComputeBidirectionalClustering is the same measure restricted to
// mutual (two-way) calls between callees, a stronger coupling signal.
func ComputeBidirectionalClustering(g *callgraph.CallGraph, id extract.FunctionId) float64 {
	neighbors := g.GetCallees(id)
	n := len(neighbors)
	if n < 2 {
		return 0.0
	}

	bidirectional := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			iCallees := g.GetCallees(neighbors[i])
			jCallees := g.GetCallees(neighbors[j])
			if contains(iCallees, neighbors[j]) && contains(jCallees, neighbors[i]) {
				bidirectional++
			}
		}
	}

	possiblePairs := n * (n - 1) / 2
	if possiblePairs == 0 {
		return 0.0
	}
	return float64(bidirectional) / float64(possiblePairs)
}

func contains(ids []extract.FunctionId, target extract.FunctionId) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

// EntryDistance computes the shortest number of hops from any entry
// point to id via breadth-first search over the caller edges (i.e. how
// close id is to being reached from program start). Returns -1 if id is
// unreachable from any entry point.
func EntryDistance(g *callgraph.CallGraph, id extract.FunctionId) int {
	if node, ok := g.Node(id); ok && node.IsEntryPoint {
		return 0
	}

	visited := map[extract.FunctionId]bool{id: true}
	frontier := []extract.FunctionId{id}
	depth := 0
	for len(frontier) > 0 {
		depth++
		var next []extract.FunctionId
		for _, cur := range frontier {
			for _, caller := range g.GetCallers(cur) {
				if visited[caller] {
					continue
				}
				visited[caller] = true
				if node, ok := g.Node(caller); ok && node.IsEntryPoint {
					return depth
				}
				next = append(next, caller)
			}
		}
		frontier = next
		if depth > 10000 {
			break
		}
	}
	return -1
}
