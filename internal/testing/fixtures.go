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

// Package testing provides fixture builders shared across the debtmap test
// suites.
//
// Building a realistic pipeline.State by hand in every test is tedious and
// error-prone, so this package exposes small builder functions for the
// function-level and file-level data model (extract.FunctionMetrics,
// extract.ExtractedFileData) with sane defaults that callers override only
// the fields relevant to the case under test.
package testing

import (
	"github.com/iepathos/debtmap-sub009/pkg/extract"
)

// FunctionOpt mutates a FunctionMetrics built by NewFunction.
type FunctionOpt func(*extract.FunctionMetrics)

// NewFunction builds a FunctionMetrics with reasonable defaults: a single
// line body, cyclomatic complexity 1, non-test, package-visible. Pass
// FunctionOpts to override specific fields.
func NewFunction(file, name string, startLine int, opts ...FunctionOpt) extract.FunctionMetrics {
	fn := extract.FunctionMetrics{
		ID:                 extract.FunctionId{File: file, Name: name, StartLine: startLine},
		File:               file,
		Name:               name,
		StartLine:          startLine,
		EndLine:            startLine + 1,
		Visibility:         extract.VisibilityPackage,
		Cyclomatic:         1,
		Cognitive:          1,
		Nesting:            0,
		Length:             1,
		AdjustedComplexity: 1,
	}
	for _, o := range opts {
		o(&fn)
	}
	return fn
}

// WithComplexity sets both cyclomatic and adjusted complexity to the same
// value, which is sufficient for classifier tests that don't exercise
// entropy dampening directly.
func WithComplexity(cyclomatic int) FunctionOpt {
	return func(fn *extract.FunctionMetrics) {
		fn.Cyclomatic = cyclomatic
		fn.AdjustedComplexity = float64(cyclomatic)
	}
}

// WithCognitive sets cognitive complexity.
func WithCognitive(cognitive int) FunctionOpt {
	return func(fn *extract.FunctionMetrics) { fn.Cognitive = cognitive }
}

// WithTest marks the function as a test function.
func WithTest() FunctionOpt {
	return func(fn *extract.FunctionMetrics) { fn.IsTest = true; fn.Role = extract.RoleTest }
}

// WithVisibility overrides the default package visibility.
func WithVisibility(v extract.Visibility) FunctionOpt {
	return func(fn *extract.FunctionMetrics) { fn.Visibility = v }
}

// WithRole sets the context-detection role directly, bypassing the
// context-detection phase for tests that only care about its effect.
func WithRole(role extract.FunctionRole) FunctionOpt {
	return func(fn *extract.FunctionMetrics) { fn.Role = role }
}

// WithPurity marks the function pure with the given confidence.
func WithPurity(confidence float64) FunctionOpt {
	return func(fn *extract.FunctionMetrics) {
		fn.IsPure = true
		fn.PurityLevel = extract.PurityPure
		fn.PurityConfidence = confidence
	}
}

// CallSiteOpt mutates a CallSite built by NewCallSite.
type CallSiteOpt func(*extract.CallSite)

// NewCallSite builds a bare, unresolved call site to calleeName at line.
func NewCallSite(calleeName string, line int, opts ...CallSiteOpt) extract.CallSite {
	cs := extract.CallSite{CalleeName: calleeName, Line: line}
	for _, o := range opts {
		o(&cs)
	}
	return cs
}

// AsMethodCall marks the call site as a method call with the given
// receiver-type hint.
func AsMethodCall(hint string) CallSiteOpt {
	return func(cs *extract.CallSite) { cs.IsMethodCall = true; cs.Hint = hint }
}

// NewFile builds an ExtractedFileData for path in the given language,
// wrapping each provided function as an ExtractedFunctionData with no call
// sites. Use WithCalls on the returned value to attach call sites to a
// specific function.
func NewFile(path string, lang extract.Language, functions ...extract.FunctionMetrics) extract.ExtractedFileData {
	fns := make([]extract.ExtractedFunctionData, 0, len(functions))
	for _, fn := range functions {
		fns = append(fns, extract.ExtractedFunctionData{Metrics: fn, ModulePath: path})
	}
	return extract.ExtractedFileData{Path: path, Language: lang, Functions: fns}
}

// WithCalls returns a copy of file with callSites attached to the
// functionIndex'th function (in declaration order).
func WithCalls(file extract.ExtractedFileData, functionIndex int, callSites ...extract.CallSite) extract.ExtractedFileData {
	file.Functions[functionIndex].CallSites = append(file.Functions[functionIndex].CallSites, callSites...)
	return file
}
