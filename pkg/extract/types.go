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

// Package extract defines the function-level data model produced by the
// extraction phase and consumed by every later phase of the pipeline.
package extract

// FunctionId identifies a single function or method uniquely within a
// project. Two functions with the same name in different files, or the
// same name at different line ranges in the same file, are distinct.
type FunctionId struct {
	File      string
	Name      string
	StartLine int
}

// Qualified returns the "file:name" form used for display and as the
// call-graph index's file-and-name key.
func (id FunctionId) Qualified() string {
	return id.File + ":" + id.Name
}

// PurityLevel is the confidence-qualified purity classification assigned
// during the purity-propagation phase.
type PurityLevel int

const (
	PurityUnknown PurityLevel = iota
	PurityPure
	PurityRecursivePure
	PurityImpure
	PurityImpureRecursiveSideEffects
)

func (p PurityLevel) String() string {
	switch p {
	case PurityPure:
		return "pure"
	case PurityRecursivePure:
		return "recursive_pure"
	case PurityImpure:
		return "impure"
	case PurityImpureRecursiveSideEffects:
		return "impure_recursive_side_effects"
	default:
		return "unknown"
	}
}

// Visibility mirrors the source language's access modifier, collapsed to
// a three-way lattice for cross-language comparison.
type Visibility int

const (
	VisibilityPrivate Visibility = iota
	VisibilityPackage
	VisibilityPublic
)

// CallSite is a single observed call expression inside a function body,
// captured before resolution assigns it a callee FunctionId.
type CallSite struct {
	CalleeName string
	Line       int
	// Hint carries parser-supplied context used by the resolver: an
	// import alias, a receiver type name, or empty for a bare call.
	Hint string
	// IsMethodCall is true when the call was written as `recv.Name(...)`.
	IsMethodCall bool
	// ExprCategory classifies the surrounding expression form (closure,
	// async, await, try, unsafe) for downstream trait/framework matching.
	ExprCategory ExprCategory
}

// ExprCategory classifies the syntactic form a call site appears in.
type ExprCategory int

const (
	ExprRegular ExprCategory = iota
	ExprClosure
	ExprAsync
	ExprAwait
	ExprTry
	ExprUnsafe
)

// FunctionMetrics holds every per-function measurement computed by
// extraction and enriched by later phases. Fields are additive across
// phases: extraction fills the first block, purity propagation fills
// Purity*, context detection fills the role/pattern fields.
type FunctionMetrics struct {
	ID         FunctionId
	File       string
	Name       string
	StartLine  int
	EndLine    int
	Visibility Visibility

	Cyclomatic int
	Cognitive  int
	Nesting    int
	Length     int

	IsTest        bool
	InTestModule  bool
	IsTraitMethod bool

	// AdjustedComplexity is the entropy-dampened complexity score used by
	// the classifier in place of the raw Cyclomatic count.
	AdjustedComplexity float64
	EntropyScore       float64

	IsPure          bool
	PurityConfidence float64
	PurityReason     string
	PurityLevel      PurityLevel

	CallDependencies int
	DetectedPatterns []string

	UpstreamCallers   []FunctionId
	DownstreamCallees []FunctionId

	ErrorSwallowingCount    int
	ErrorSwallowingPatterns []string

	Role FunctionRole
}

// FunctionRole is the context-detection classification of a function's
// purpose, used both to dampen scoring and to pick a risk-score floor.
type FunctionRole int

const (
	RoleUnknown FunctionRole = iota
	RolePureLogic
	RoleIOWrapper
	RoleOrchestrator
	RoleEntryPoint
	RoleTest
)

// ExtractedFunctionData is the raw, pre-resolution output of a single
// function's extraction: its metrics plus the call sites found in its
// body, still referring to callees by name rather than FunctionId.
type ExtractedFunctionData struct {
	Metrics   FunctionMetrics
	CallSites []CallSite
	// ModulePath is the dotted module/impl-type path the function was
	// declared under (e.g. "pkg/foo::Bar" for a Rust impl method, or the
	// declared Go package name for a Go function).
	ModulePath string
}

// Import is a single import/use declaration observed while parsing a
// file, used by the call-graph resolver's import-based strategy.
type Import struct {
	Path  string
	Alias string
	// Dot is true for a dot-import (Go) or glob `use foo::*` (Rust),
	// which makes every symbol in Path visible unqualified.
	Dot bool
}

// ExtractedFileData is everything extraction produced for one source
// file: its language, its functions, and its imports.
type ExtractedFileData struct {
	Path      string
	Language  Language
	Functions []ExtractedFunctionData
	Imports   []Import
	// PackageName is the declared package/module name of the file, used
	// to build the ModuleTree.
	PackageName string
}

// Language identifies the source language an extractor parsed.
type Language int

const (
	LangUnknown Language = iota
	LangGo
	LangRust
	LangPython
	LangJavaScript
	LangTypeScript
)

// ImportMap indexes every file's imports by file path, used by the
// import-based call resolution strategy.
type ImportMap map[string][]Import

// ModuleTree indexes package/module names to the file paths that
// declare them, used by the hierarchy-search resolution strategy.
type ModuleTree map[string][]string

// FrameworkMatch records a framework-pattern hit against a function,
// produced by the framework-detection phase.
type FrameworkMatch struct {
	Pattern    string
	Confidence float64
}
