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

// Package framework detects functions whose invocation is managed by a
// framework or runtime rather than by a visible call site: test
// harnesses, the program entry point, FFI exports, web handlers
// registered by route table, visitor-trait methods and serialization
// hooks. PatternMacroCallback has a confidence weight, but no detector
// path records a match of that type. Detected functions feed the
// framework_exclusions set the dead-code classifier consults so they are
// never misreported as unreachable.
package framework

import "github.com/iepathos/debtmap-sub009/pkg/extract"

// PatternType enumerates the recognized framework-managed invocation
// shapes, each carrying its own confidence weight.
type PatternType int

const (
	PatternTestFunction PatternType = iota
	PatternMainFunction
	PatternFfiFunction
	PatternWebHandler
	PatternVisitTrait
	PatternSerializationFunction
	PatternMacroCallback
	PatternCustomPattern
)

// baseConfidence is the default confidence weight per pattern type,
// reused unless a loaded pattern file overrides it.
var baseConfidence = map[PatternType]float64{
	PatternTestFunction:          1.00,
	PatternMainFunction:          1.00,
	PatternFfiFunction:           1.00,
	PatternWebHandler:            0.90,
	PatternVisitTrait:            0.90,
	PatternSerializationFunction: 0.80,
	PatternMacroCallback:         0.70,
	PatternCustomPattern:         0.60,
}

// Match records one detected pattern against a function.
type Match struct {
	Pattern    PatternType
	Confidence float64
}

// Detector accumulates pattern matches across files and exposes the
// framework_exclusions set: functions whose apparent dead code is
// actually framework-managed and should never be flagged.
type Detector struct {
	patterns map[extract.FunctionId][]Match
	config   *PatternConfig
}

// NewDetector builds a Detector using the built-in confidence table.
func NewDetector() *Detector {
	return &Detector{patterns: make(map[extract.FunctionId][]Match)}
}

// WithConfig attaches a loaded PatternConfig (see patterns.go), whose
// per-language name/file/code patterns augment the built-in heuristics.
func (d *Detector) WithConfig(cfg *PatternConfig) *Detector {
	d.config = cfg
	return d
}

// Analyze classifies every function in a file against the built-in
// heuristics and, if configured, the loaded pattern file for the file's
// language.
func (d *Detector) Analyze(file extract.ExtractedFileData) {
	for _, fn := range file.Functions {
		m := fn.Metrics
		if m.IsTest {
			d.record(m.ID, PatternTestFunction, baseConfidence[PatternTestFunction])
		}
		if isMainFunction(m.Name) {
			d.record(m.ID, PatternMainFunction, baseConfidence[PatternMainFunction])
		}
		if isFfiExport(m.Name) {
			d.record(m.ID, PatternFfiFunction, baseConfidence[PatternFfiFunction])
		}
		if isWebHandlerName(m.Name) {
			d.record(m.ID, PatternWebHandler, baseConfidence[PatternWebHandler])
		}
		if isSerializationName(m.Name) {
			d.record(m.ID, PatternSerializationFunction, baseConfidence[PatternSerializationFunction])
		}

		if d.config != nil {
			if rule, ok := d.config.Match(file.Language, m.Name, file.Path); ok {
				d.record(m.ID, PatternCustomPattern, rule.Confidence)
			}
		}
	}
}

func (d *Detector) record(id extract.FunctionId, p PatternType, confidence float64) {
	d.patterns[id] = append(d.patterns[id], Match{Pattern: p, Confidence: confidence})
}

// AddVisitTraitFunction records a visitor-trait implementation (seeded
// by pkg/traits) as a VisitTrait pattern match at confidence 1.0: the
// visitor-dispatch machinery is assumed fully reliable once a type is
// known to implement the trait.
func (d *Detector) AddVisitTraitFunction(id extract.FunctionId) {
	d.record(id, PatternVisitTrait, 1.0)
}

// MightBeFrameworkManaged reports whether any pattern matched id at all.
func (d *Detector) MightBeFrameworkManaged(id extract.FunctionId) bool {
	return len(d.patterns[id]) > 0
}

// Patterns returns the matches recorded against id.
func (d *Detector) Patterns(id extract.FunctionId) []Match {
	return d.patterns[id]
}

// Exclusions returns the framework_exclusions set: every function whose
// strongest pattern match clears the exclusion threshold for its kind
// (built-in patterns at confidence>0.7, custom patterns at
// confidence>0.8), matching the two-tier gate of the original analyzer.
func (d *Detector) Exclusions() map[extract.FunctionId]bool {
	out := make(map[extract.FunctionId]bool)
	for id, matches := range d.patterns {
		for _, m := range matches {
			if m.Pattern == PatternCustomPattern {
				if m.Confidence > 0.8 {
					out[id] = true
				}
				continue
			}
			if m.Confidence > 0.7 {
				out[id] = true
			}
		}
	}
	return out
}

func isMainFunction(name string) bool {
	return name == "main" || name == "Main"
}

func isFfiExport(name string) bool {
	// cgo/FFI exports are conventionally annotated in source; as a name
	// heuristic we treat the common "C" bridging prefixes as exported.
	return len(name) > 0 && (hasPrefix(name, "Cgo") || hasPrefix(name, "FFI"))
}

func isWebHandlerName(name string) bool {
	return hasSuffix(name, "Handler") || hasPrefix(name, "handle") || hasPrefix(name, "Handle")
}

func isSerializationName(name string) bool {
	switch name {
	case "MarshalJSON", "UnmarshalJSON", "MarshalYAML", "UnmarshalYAML", "MarshalText", "UnmarshalText":
		return true
	default:
		return hasPrefix(name, "Marshal") || hasPrefix(name, "Unmarshal")
	}
}

func hasPrefix(s, p string) bool {
	return len(s) >= len(p) && s[:len(p)] == p
}

func hasSuffix(s, suf string) bool {
	return len(s) >= len(suf) && s[len(s)-len(suf):] == suf
}
