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

package extract

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

// SimplifiedExtractor is a line-oriented, regex-based extractor used when
// no tree-sitter grammar is wired for a language, or when
// ExtractorModeSimplified is requested explicitly. It trades precision
// for zero additional dependencies: function boundaries are inferred from
// indentation (Python) or brace balance (JS/TS), and call sites are found
// with a single permissive "name(" pattern.
type SimplifiedExtractor struct {
	lang        Language
	defRe       *regexp.Regexp
	callRe      *regexp.Regexp
	testNameRe  *regexp.Regexp
}

// NewSimplifiedExtractor builds the fallback extractor for lang. Callers
// normally register one per language via Registry.RegisterSimplified.
func NewSimplifiedExtractor(lang Language) *SimplifiedExtractor {
	s := &SimplifiedExtractor{lang: lang}
	switch lang {
	case LangPython:
		s.defRe = regexp.MustCompile(`^(\s*)def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
		s.testNameRe = regexp.MustCompile(`^test_`)
	default: // JS/TS
		s.defRe = regexp.MustCompile(`\bfunction\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*\(|\b([A-Za-z_$][A-Za-z0-9_$]*)\s*=\s*(?:async\s*)?\([^)]*\)\s*=>`)
		s.testNameRe = regexp.MustCompile(`^(test|it|describe)_`)
	}
	s.callRe = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_.]*)\s*\(`)
	return s
}

// Language reports the language this fallback handles.
func (s *SimplifiedExtractor) Language() Language { return s.lang }

// ExtractFile scans source line by line. Python functions are bounded by
// a return to the defining indentation level; JS/TS functions are
// bounded by brace balance from the opening "{".
func (s *SimplifiedExtractor) ExtractFile(path string, source []byte) (ExtractedFileData, error) {
	lines := splitLines(source)
	var funcs []ExtractedFunctionData

	if s.lang == LangPython {
		funcs = s.extractPython(path, lines)
	} else {
		funcs = s.extractBraced(path, lines)
	}

	return ExtractedFileData{
		Path:      path,
		Language:  s.lang,
		Functions: funcs,
	}, nil
}

func splitLines(source []byte) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(source))
	sc.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}

func (s *SimplifiedExtractor) extractPython(path string, lines []string) []ExtractedFunctionData {
	var out []ExtractedFunctionData
	for i := 0; i < len(lines); i++ {
		m := s.defRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		indent := len(m[1])
		name := m[2]
		start := i + 1
		end := start
		for j := i + 1; j < len(lines); j++ {
			trimmed := strings.TrimRight(lines[j], " \t")
			if trimmed == "" {
				continue
			}
			lineIndent := len(lines[j]) - len(strings.TrimLeft(lines[j], " \t"))
			if lineIndent <= indent {
				break
			}
			end = j + 1
		}
		out = append(out, s.buildFunction(path, name, start, end, lines, s.testNameRe.MatchString(name)))
	}
	return out
}

func (s *SimplifiedExtractor) extractBraced(path string, lines []string) []ExtractedFunctionData {
	var out []ExtractedFunctionData
	for i := 0; i < len(lines); i++ {
		matches := s.defRe.FindStringSubmatch(lines[i])
		if matches == nil {
			continue
		}
		name := matches[1]
		if name == "" {
			name = matches[2]
		}
		start := i + 1
		depth := strings.Count(lines[i], "{") - strings.Count(lines[i], "}")
		end := start
		for j := i + 1; depth > 0 && j < len(lines); j++ {
			depth += strings.Count(lines[j], "{") - strings.Count(lines[j], "}")
			end = j + 1
		}
		out = append(out, s.buildFunction(path, name, start, end, lines, s.testNameRe.MatchString(name)))
	}
	return out
}

func (s *SimplifiedExtractor) buildFunction(path, name string, start, end int, lines []string, isTest bool) ExtractedFunctionData {
	body := strings.Join(lines[clampIdx(start-1, len(lines)):clampIdx(end, len(lines))], "\n")

	cyclomatic := 1
	for _, kw := range []string{"if ", "elif ", "else if", "for ", "while ", "case ", "catch ", "except ", "&&", "||", " and ", " or "} {
		cyclomatic += strings.Count(body, kw)
	}

	var sites []CallSite
	seen := map[string]bool{}
	for _, m := range s.callRe.FindAllStringSubmatch(body, -1) {
		callee := m[1]
		if callee == name || isControlKeyword(callee) {
			continue
		}
		key := callee
		if !seen[key] {
			seen[key] = true
			dotIdx := strings.LastIndex(callee, ".")
			hint := ""
			calleeName := callee
			isMethod := false
			if dotIdx >= 0 {
				hint = callee[:dotIdx]
				calleeName = callee[dotIdx+1:]
				isMethod = true
			}
			sites = append(sites, CallSite{CalleeName: calleeName, Line: start, Hint: hint, IsMethodCall: isMethod})
		}
	}

	id := NewFunctionID(path, name, start)
	metrics := FunctionMetrics{
		ID:         id,
		File:       path,
		Name:       name,
		StartLine:  start,
		EndLine:    end,
		Cyclomatic: cyclomatic,
		Length:     end - start + 1,
		IsTest:     isTest,
		Visibility: simplifiedVisibility(name),
	}
	return ExtractedFunctionData{Metrics: metrics, CallSites: sites}
}

func simplifiedVisibility(name string) Visibility {
	if strings.HasPrefix(name, "_") {
		return VisibilityPrivate
	}
	return VisibilityPublic
}

func isControlKeyword(s string) bool {
	switch s {
	case "if", "for", "while", "switch", "catch", "return", "function", "def", "elif", "else":
		return true
	default:
		return false
	}
}

func clampIdx(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}
