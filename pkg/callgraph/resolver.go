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

import (
	"runtime"
	"strings"
	"sync"

	"github.com/iepathos/debtmap-sub009/pkg/extract"
)

// Resolver turns the raw callee names extraction recorded into resolved
// FunctionId edges, using four strategies in order of confidence. The
// first strategy that finds a match wins; later strategies never
// override an earlier hit.
type Resolver struct {
	index      *FunctionIndex
	imports    extract.ImportMap
	moduleTree extract.ModuleTree
}

// NewResolver builds a Resolver over a pre-built FunctionIndex plus the
// import map and module tree gathered during extraction.
func NewResolver(index *FunctionIndex, imports extract.ImportMap, moduleTree extract.ModuleTree) *Resolver {
	return &Resolver{index: index, imports: imports, moduleTree: moduleTree}
}

// unresolvedCall is a call site still waiting on resolution, tagged with
// its caller so the resolver can look up the caller's file-local import
// list.
type unresolvedCall struct {
	caller extract.FunctionId
	site   extract.CallSite
}

// ResolveAll resolves every call site recorded across files into call
// graph edges. Sequential below parallelThreshold items, parallel above
// it, mirroring the teacher's size-gated dispatch.
func (r *Resolver) ResolveAll(files []extract.ExtractedFileData) []FunctionCall {
	var calls []unresolvedCall
	for _, f := range files {
		for _, fn := range f.Functions {
			for _, site := range fn.CallSites {
				calls = append(calls, unresolvedCall{caller: fn.Metrics.ID, site: site})
			}
		}
	}

	const parallelThreshold = 1000
	if len(calls) < parallelThreshold {
		return r.resolveSequential(calls)
	}
	return r.resolveParallel(calls)
}

func (r *Resolver) resolveSequential(calls []unresolvedCall) []FunctionCall {
	out := make([]FunctionCall, 0, len(calls))
	for _, c := range calls {
		if callee, ct, ok := r.resolve(c); ok {
			out = append(out, FunctionCall{Caller: c.caller, Callee: callee, CallType: ct})
		}
	}
	return out
}

func (r *Resolver) resolveParallel(calls []unresolvedCall) []FunctionCall {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan unresolvedCall, len(calls))
	results := make(chan FunctionCall, len(calls))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				if callee, ct, ok := r.resolve(c); ok {
					results <- FunctionCall{Caller: c.caller, Callee: callee, CallType: ct}
				}
			}
		}()
	}

	for _, c := range calls {
		jobs <- c
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]FunctionCall, 0, len(calls))
	for fc := range results {
		out = append(out, fc)
	}
	return out
}

// resolve applies the four strategies in order: exact match, import
// based, module-tree/hierarchy search, then fuzzy suffix match.
func (r *Resolver) resolve(c unresolvedCall) (extract.FunctionId, CallType, bool) {
	ct := callTypeFor(c.site)

	if id, ok := r.resolveExact(c); ok {
		return id, ct, true
	}
	if id, ok := r.resolveImportBased(c); ok {
		return id, ct, true
	}
	if id, ok := r.resolveHierarchy(c); ok {
		return id, ct, true
	}
	if id, ok := r.resolveFuzzySuffix(c); ok {
		return id, ct, true
	}
	return extract.FunctionId{}, ct, false
}

func callTypeFor(site extract.CallSite) CallType {
	switch site.ExprCategory {
	case extract.ExprClosure:
		return CallCallback
	default:
		if site.IsMethodCall {
			return CallDelegate
		}
		return CallDirect
	}
}

// resolveExact matches a qualified name ("pkg.Foo" / "alias.Foo")
// directly against the index, and a same-file simple-name match when the
// call carries no qualifier hint at all.
func (r *Resolver) resolveExact(c unresolvedCall) (extract.FunctionId, bool) {
	if c.site.Hint == "" {
		candidates := r.index.BySimpleName(c.site.CalleeName)
		for _, cand := range candidates {
			if cand.File == c.caller.File {
				return cand, true
			}
		}
		if len(candidates) == 1 {
			return candidates[0], true
		}
		return extract.FunctionId{}, false
	}

	qualified := c.site.Hint + "." + c.site.CalleeName
	if id, ok := r.index.ByQualifiedName(qualified); ok {
		return id, true
	}
	return extract.FunctionId{}, false
}

// resolveImportBased resolves a qualified call ("alias.Foo") by mapping
// the caller's file-local import alias to the imported package, then
// searching that package's functions for Foo.
func (r *Resolver) resolveImportBased(c unresolvedCall) (extract.FunctionId, bool) {
	if c.site.Hint == "" {
		return extract.FunctionId{}, false
	}
	fileImports := r.imports[c.caller.File]
	for _, imp := range fileImports {
		alias := imp.Alias
		if alias == "" {
			alias = lastPathComponent(imp.Path)
		}
		if alias != c.site.Hint && !imp.Dot {
			continue
		}
		for _, cand := range r.index.ByPackage(lastPathComponent(imp.Path)) {
			if simpleName(cand.Name) == c.site.CalleeName {
				return cand, true
			}
		}
	}
	return extract.FunctionId{}, false
}

// resolveHierarchy searches the module tree for any package whose name
// or path contains the hint, then matches the callee name within it.
func (r *Resolver) resolveHierarchy(c unresolvedCall) (extract.FunctionId, bool) {
	for pkg, files := range r.moduleTree {
		if c.site.Hint != "" && !strings.Contains(pkg, c.site.Hint) {
			continue
		}
		for _, file := range files {
			for _, cand := range r.index.byFileAndName {
				if cand.File == file && simpleName(cand.Name) == c.site.CalleeName {
					return cand, true
				}
			}
		}
	}
	return extract.FunctionId{}, false
}

// resolveFuzzySuffix does a last-resort suffix match on qualified names,
// capped to avoid returning an ambiguous match when more than one
// candidate shares the suffix.
func (r *Resolver) resolveFuzzySuffix(c unresolvedCall) (extract.FunctionId, bool) {
	suffix := "." + c.site.CalleeName
	var matches []extract.FunctionId
	for qualified, id := range r.index.byQualifiedName {
		if strings.HasSuffix(qualified, suffix) || qualified == c.site.CalleeName {
			matches = append(matches, id)
		}
	}
	if len(matches) == 1 {
		return matches[0], true
	}
	return extract.FunctionId{}, false
}

func lastPathComponent(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
