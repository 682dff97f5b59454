// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package callgraph

import (
	"encoding/json"
	"testing"

	"github.com/iepathos/debtmap-sub009/pkg/extract"
)

func idFor(file, name string, line int) extract.FunctionId {
	return extract.NewFunctionID(file, name, line)
}

func TestCallGraph_AddFunctionIsIdempotent(t *testing.T) {
	g := New()
	id := idFor("a.go", "Foo", 1)
	g.AddFunction(id, false, false, 3, 10)
	g.AddFunction(id, false, false, 3, 10)

	if len(g.Nodes()) != 1 {
		t.Fatalf("expected 1 node after duplicate AddFunction, got %d", len(g.Nodes()))
	}
	n, ok := g.Node(id)
	if !ok || n.Cyclomatic != 3 {
		t.Fatalf("unexpected node: %+v ok=%v", n, ok)
	}
}

func TestCallGraph_AddCallAndQuery(t *testing.T) {
	g := New()
	caller := idFor("a.go", "Caller", 1)
	callee := idFor("a.go", "Callee", 10)
	g.AddFunction(caller, false, false, 1, 5)
	g.AddFunction(callee, false, false, 1, 5)
	g.AddCall(FunctionCall{Caller: caller, Callee: callee, CallType: CallDirect})

	callees := g.GetCallees(caller)
	if len(callees) != 1 || callees[0] != callee {
		t.Fatalf("GetCallees(caller) = %+v, want [%+v]", callees, callee)
	}
	callers := g.GetCallers(callee)
	if len(callers) != 1 || callers[0] != caller {
		t.Fatalf("GetCallers(callee) = %+v, want [%+v]", callers, caller)
	}
}

func TestCallGraph_GetCalleesDedupesRepeatedEdges(t *testing.T) {
	g := New()
	caller := idFor("a.go", "Caller", 1)
	callee := idFor("a.go", "Callee", 10)
	g.AddCall(FunctionCall{Caller: caller, Callee: callee})
	g.AddCall(FunctionCall{Caller: caller, Callee: callee})

	if got := g.GetCallees(caller); len(got) != 1 {
		t.Errorf("expected deduped callee list of length 1, got %d: %+v", len(got), got)
	}
	if got := len(g.Edges()); got != 2 {
		t.Errorf("expected Edges() to keep the full multiset (2), got %d", got)
	}
}

func TestCallGraph_Merge_IsCommutative(t *testing.T) {
	a1 := idFor("a.go", "A", 1)
	b1 := idFor("b.go", "B", 1)

	buildA := func() *CallGraph {
		g := New()
		g.AddFunction(a1, true, false, 2, 5)
		g.AddCall(FunctionCall{Caller: a1, Callee: b1})
		return g
	}
	buildB := func() *CallGraph {
		g := New()
		g.AddFunction(b1, false, false, 1, 3)
		return g
	}

	ab := buildA()
	ab.Merge(buildB())

	ba := buildB()
	ba.Merge(buildA())

	if len(ab.Nodes()) != len(ba.Nodes()) {
		t.Fatalf("merge order changed node count: %d vs %d", len(ab.Nodes()), len(ba.Nodes()))
	}
	if len(ab.Edges()) != len(ba.Edges()) {
		t.Fatalf("merge order changed edge count: %d vs %d", len(ab.Edges()), len(ba.Edges()))
	}
	nodeA, ok := ab.Node(a1)
	if !ok || !nodeA.IsEntryPoint {
		t.Errorf("expected merged node to preserve IsEntryPoint, got %+v ok=%v", nodeA, ok)
	}
}

func TestCallGraph_Merge_PrefersNonZeroMetrics(t *testing.T) {
	id := idFor("a.go", "Foo", 1)

	g1 := New()
	g1.AddFunction(id, false, false, 0, 0)

	g2 := New()
	g2.AddFunction(id, false, false, 5, 20)

	g1.Merge(g2)
	n, ok := g1.Node(id)
	if !ok || n.Cyclomatic != 5 {
		t.Errorf("expected merge to adopt non-zero metrics, got %+v", n)
	}
}

func TestCallGraph_SortedNodes_Deterministic(t *testing.T) {
	g := New()
	g.AddFunction(idFor("b.go", "Z", 5), false, false, 1, 1)
	g.AddFunction(idFor("a.go", "Y", 10), false, false, 1, 1)
	g.AddFunction(idFor("a.go", "X", 2), false, false, 1, 1)

	sorted := g.SortedNodes()
	if len(sorted) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(sorted))
	}
	if sorted[0].File != "a.go" || sorted[0].StartLine != 2 {
		t.Errorf("expected a.go:2 first, got %+v", sorted[0])
	}
	if sorted[1].File != "a.go" || sorted[1].StartLine != 10 {
		t.Errorf("expected a.go:10 second, got %+v", sorted[1])
	}
	if sorted[2].File != "b.go" {
		t.Errorf("expected b.go last, got %+v", sorted[2])
	}
}

func TestCallGraph_JSONRoundTrip(t *testing.T) {
	g := New()
	caller := idFor("a.go", "Caller", 1)
	callee := idFor("a.go", "Callee", 10)
	g.AddFunction(caller, true, false, 2, 5)
	g.AddFunction(callee, false, true, 1, 3)
	g.AddCall(FunctionCall{Caller: caller, Callee: callee, CallType: CallDelegate})

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	g2 := New()
	if err := json.Unmarshal(data, g2); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if len(g2.Nodes()) != 2 {
		t.Fatalf("expected 2 nodes after round-trip, got %d", len(g2.Nodes()))
	}
	callees := g2.GetCallees(caller)
	if len(callees) != 1 || callees[0] != callee {
		t.Errorf("expected round-tripped graph to preserve edges, got %+v", callees)
	}
	n, ok := g2.Node(caller)
	if !ok || !n.IsEntryPoint || n.Cyclomatic != 2 {
		t.Errorf("expected round-tripped node metadata preserved, got %+v ok=%v", n, ok)
	}
}

func TestIsEntryPoint(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"main", true},
		{"Main", true},
		{"handleRequest", true},
		{"RunServer", true},
		{"computeSum", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsEntryPoint(tt.name); got != tt.want {
			t.Errorf("IsEntryPoint(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
