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

// Package context classifies a function's file type and role so that
// scoring can dampen or suppress findings that make sense in context
// (a long match statement in a config loader is not a complexity
// hotspot the way the same shape would be in business logic).
package context

import (
	"strings"

	"github.com/iepathos/debtmap-sub009/pkg/extract"
)

// FileType is a coarse classification of what a source file is for.
type FileType int

const (
	FileTypeSource FileType = iota
	FileTypeTest
	FileTypeConfig
	FileTypeGenerated
	FileTypeExample
	FileTypeBenchmark
	FileTypeBuildScript
	FileTypeDocumentation
)

// FunctionRole is the context-detection verdict for what a function's
// name says about its purpose. It is deliberately separate from
// extract.FunctionRole, which drives the classifier's risk-fallback
// path: this role set exists to key the context rule engine, not to
// score risk.
type FunctionRole int

const (
	RoleUnknown FunctionRole = iota
	RoleMain
	RoleConfigLoader
	RoleTestFunction
	RoleInitialization
	RoleHandler
	RoleUtility
)

// FunctionContext is the context-detection verdict for a single
// function: its file type, inferred role, and whether it looks like a
// config loader (a common source of acceptable high branching).
type FunctionContext struct {
	FileType     FileType
	Role         FunctionRole
	IsConfigLoad bool
}

// Detector classifies files and functions. State is scoped to one file
// at a time via NewDetector(fileType); call AnalyzeFunction once per
// function found in that file.
type Detector struct {
	fileType FileType
	cache    map[string]FunctionContext
}

// NewDetector creates a Detector for a file already classified as
// fileType.
func NewDetector(fileType FileType) *Detector {
	return &Detector{fileType: fileType, cache: make(map[string]FunctionContext)}
}

// ClassifyFile infers a FileType from a path, looking at conventional
// suffixes and directory names before falling back to FileTypeSource.
func ClassifyFile(path string) FileType {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, "_test.go"), strings.HasSuffix(lower, "_test.py"),
		strings.Contains(lower, ".test."), strings.Contains(lower, ".spec."):
		return FileTypeTest
	case strings.Contains(lower, "/testdata/"), strings.Contains(lower, "/fixtures/"):
		return FileTypeTest
	case strings.Contains(lower, "/examples/"), strings.Contains(lower, "/example/"):
		return FileTypeExample
	case strings.HasSuffix(lower, ".pb.go"), strings.Contains(lower, "/generated/"),
		strings.Contains(lower, "_generated."), strings.Contains(lower, ".gen."):
		return FileTypeGenerated
	case strings.HasSuffix(lower, "build.rs"):
		return FileTypeBuildScript
	case strings.HasSuffix(lower, ".md"), strings.HasSuffix(lower, ".rst"):
		return FileTypeDocumentation
	case strings.Contains(lower, "/config/"), strings.HasSuffix(lower, "config.go"),
		strings.HasSuffix(lower, "config.py"), strings.HasSuffix(lower, "config.rs"),
		strings.HasSuffix(lower, ".toml"), strings.HasSuffix(lower, ".yaml"),
		strings.HasSuffix(lower, ".yml"), strings.HasSuffix(lower, ".json"),
		strings.HasSuffix(lower, ".ini"), strings.HasSuffix(lower, ".cfg"):
		return FileTypeConfig
	case strings.Contains(lower, "benchmark"), strings.HasPrefix(lastComponent(lower), "bench_"):
		return FileTypeBenchmark
	default:
		return FileTypeSource
	}
}

// AnalyzeFunction classifies a single function's role from its metrics
// and name, using the detector's file type as context.
func (d *Detector) AnalyzeFunction(fn extract.FunctionMetrics) FunctionContext {
	role := classifyRole(fn, d.fileType)
	fc := FunctionContext{
		FileType:     d.fileType,
		Role:         role,
		IsConfigLoad: role == RoleConfigLoader || d.fileType == FileTypeConfig,
	}
	d.cache[fn.Name] = fc
	return fc
}

// GetContext returns a previously computed context for funcName, if any.
func (d *Detector) GetContext(funcName string) (FunctionContext, bool) {
	fc, ok := d.cache[funcName]
	return fc, ok
}

// classifyRole derives a function's role from its name, checking in
// order: test, main entry point, config loader, initialization,
// handler, utility, falling back to unknown.
func classifyRole(fn extract.FunctionMetrics, fileType FileType) FunctionRole {
	if fn.IsTest || fileType == FileTypeTest {
		return RoleTestFunction
	}
	name := fn.Name
	switch {
	case isMainName(name):
		return RoleMain
	case isConfigLoaderName(name):
		return RoleConfigLoader
	case isInitializationName(name):
		return RoleInitialization
	case isHandlerName(name):
		return RoleHandler
	case isUtilityName(name):
		return RoleUtility
	default:
		return RoleUnknown
	}
}

func isMainName(name string) bool {
	lower := strings.ToLower(name)
	return lower == "main" || name == "__main__"
}

// normalizeName strips underscores so a single substring/prefix table
// can match both snake_case (Rust, Python) and CamelCase (Go,
// JavaScript) function names.
func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "")
}

func isConfigLoaderName(name string) bool {
	norm := normalizeName(name)
	switch norm {
	case "configure", "setupconfiguration":
		return true
	}
	for _, p := range []string{"loadconfig", "readconfig", "parseconfig", "initconfig"} {
		if strings.Contains(norm, p) {
			return true
		}
	}
	return false
}

func isInitializationName(name string) bool {
	norm := normalizeName(name)
	switch norm {
	case "init", "setup", "initialize":
		return true
	}
	for _, p := range []string{"init", "setup", "initialize"} {
		if strings.HasPrefix(norm, p) {
			return true
		}
	}
	return false
}

func isHandlerName(name string) bool {
	norm := normalizeName(name)
	for _, p := range []string{"handle", "process"} {
		if strings.HasPrefix(norm, p) {
			return true
		}
	}
	if strings.Contains(norm, "handler") || strings.HasPrefix(norm, "on") && norm != "on" {
		return true
	}
	return false
}

func isUtilityName(name string) bool {
	norm := normalizeName(name)
	for _, p := range []string{"helper", "util"} {
		if strings.HasPrefix(norm, p) || strings.HasSuffix(norm, p) {
			return true
		}
	}
	return false
}

func lastComponent(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}
