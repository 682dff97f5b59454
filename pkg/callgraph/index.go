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
	"strings"

	"github.com/iepathos/debtmap-sub009/pkg/extract"
)

// FunctionIndex gives O(1) lookup of a function by its simple name, its
// fully-qualified name, or its "file:name" form, built once from the set
// of extracted files and reused across every call-site resolution.
type FunctionIndex struct {
	bySimpleName    map[string][]extract.FunctionId
	byQualifiedName map[string]extract.FunctionId
	byFileAndName   map[string]extract.FunctionId
	byPackage       map[string][]extract.FunctionId
}

// NewFunctionIndex builds an index from every function across files.
func NewFunctionIndex(files []extract.ExtractedFileData) *FunctionIndex {
	idx := &FunctionIndex{
		bySimpleName:    make(map[string][]extract.FunctionId),
		byQualifiedName: make(map[string]extract.FunctionId),
		byFileAndName:   make(map[string]extract.FunctionId),
		byPackage:       make(map[string][]extract.FunctionId),
	}
	for _, f := range files {
		for _, fn := range f.Functions {
			id := fn.Metrics.ID
			simple := simpleName(fn.Metrics.Name)
			idx.bySimpleName[simple] = append(idx.bySimpleName[simple], id)
			idx.byQualifiedName[extract.BuildQualifiedName(fn.ModulePath, fn.Metrics.Name)] = id
			idx.byFileAndName[id.Qualified()] = id
			if f.PackageName != "" {
				idx.byPackage[f.PackageName] = append(idx.byPackage[f.PackageName], id)
			}
		}
	}
	return idx
}

// simpleName strips a receiver-type qualifier ("Server.Start" -> "Start").
func simpleName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// BySimpleName returns every function whose simple name matches.
func (idx *FunctionIndex) BySimpleName(name string) []extract.FunctionId {
	return idx.bySimpleName[name]
}

// ByQualifiedName looks up an exact modulePath::name match.
func (idx *FunctionIndex) ByQualifiedName(qualified string) (extract.FunctionId, bool) {
	id, ok := idx.byQualifiedName[qualified]
	return id, ok
}

// ByPackage returns every function declared in a given package/module.
func (idx *FunctionIndex) ByPackage(pkg string) []extract.FunctionId {
	return idx.byPackage[pkg]
}
