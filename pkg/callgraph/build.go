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

package callgraph

import "github.com/iepathos/debtmap-sub009/pkg/extract"

// entryPointPrefixes are the name prefixes treated as implicit program
// entry points in the absence of any other evidence (main, handlers,
// long-running loops).
var entryPointPrefixes = []string{"main", "Main", "handle", "Handle", "run", "Run", "start", "Start", "process", "Process"}

// IsEntryPoint reports whether name matches one of the conventional
// entry-point prefixes.
func IsEntryPoint(name string) bool {
	for _, p := range entryPointPrefixes {
		if len(name) >= len(p) && name[:len(p)] == p {
			return true
		}
	}
	return false
}

// Build constructs a CallGraph from a set of extracted files plus a
// module tree / import map for call resolution. It is a pure function:
// nodes are added first (so every function exists in the graph even if
// it has no resolvable callers), then edges.
func Build(files []extract.ExtractedFileData, imports extract.ImportMap, moduleTree extract.ModuleTree) *CallGraph {
	g := New()
	index := NewFunctionIndex(files)

	for _, f := range files {
		for _, fn := range f.Functions {
			m := fn.Metrics
			g.AddFunction(m.ID, IsEntryPoint(m.Name), m.IsTest, m.Cyclomatic, m.Length)
		}
	}

	resolver := NewResolver(index, imports, moduleTree)
	for _, call := range resolver.ResolveAll(files) {
		g.AddCall(call)
	}

	return g
}
