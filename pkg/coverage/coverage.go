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

// Package coverage loads and queries line-coverage data (from an LCOV
// file) mapped onto extracted functions. Loading is
// optional: the pipeline's coverage phase can be skipped entirely, in
// which case every Map lookup simply reports "no data".
package coverage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/iepathos/debtmap-sub009/pkg/callgraph"
	"github.com/iepathos/debtmap-sub009/pkg/extract"
)

// FileCoverage is the set of covered line numbers for one file.
type FileCoverage struct {
	Covered map[int]bool
	Total   int
	Hit     int
}

// Map holds direct line coverage per function plus a cache of
// transitive (call-graph-propagated) coverage once computed.
type Map struct {
	fileLines  map[string]FileCoverage
	direct     map[extract.FunctionId]float64
	transitive map[extract.FunctionId]float64
}

// NewMap returns an empty coverage Map.
func NewMap() *Map {
	return &Map{
		fileLines: make(map[string]FileCoverage),
		direct:    make(map[extract.FunctionId]float64),
	}
}

// LoadLCOV parses a standard LCOV file (DA:<line>,<hits> records grouped
// under SF:<path> / end_of_record) into a Map's per-file line coverage.
func LoadLCOV(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("coverage: open %s: %w", path, err)
	}
	defer f.Close()

	m := NewMap()
	var currentFile string
	var current FileCoverage

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "SF:"):
			currentFile = strings.TrimPrefix(line, "SF:")
			current = FileCoverage{Covered: make(map[int]bool)}
		case strings.HasPrefix(line, "DA:"):
			parts := strings.Split(strings.TrimPrefix(line, "DA:"), ",")
			if len(parts) != 2 {
				continue
			}
			lineNo, err1 := strconv.Atoi(parts[0])
			hits, err2 := strconv.Atoi(parts[1])
			if err1 != nil || err2 != nil {
				continue
			}
			current.Total++
			if hits > 0 {
				current.Hit++
				current.Covered[lineNo] = true
			}
		case line == "end_of_record":
			if currentFile != "" {
				m.fileLines[currentFile] = current
			}
			currentFile = ""
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("coverage: scan %s: %w", path, err)
	}
	return m, nil
}

// BindFunctions computes each function's direct coverage ratio as the
// fraction of its [StartLine, EndLine] range present in the loaded
// file's covered-line set.
func (m *Map) BindFunctions(functions []extract.FunctionMetrics) {
	for _, fn := range functions {
		fc, ok := m.fileLines[fn.File]
		if !ok || fn.EndLine < fn.StartLine {
			continue
		}
		total := fn.EndLine - fn.StartLine + 1
		if total <= 0 {
			continue
		}
		covered := 0
		for line := fn.StartLine; line <= fn.EndLine; line++ {
			if fc.Covered[line] {
				covered++
			}
		}
		m.direct[fn.ID] = float64(covered) / float64(total)
	}
}

// mapWire is the JSON-visible shape of Map, used so loaded coverage
// survives a checkpoint round-trip without exposing the FunctionId-keyed
// maps (an invalid JSON map key type) as public API.
type mapWire struct {
	Direct []directEntry `json:"direct"`
}

type directEntry struct {
	ID    extract.FunctionId `json:"id"`
	Ratio float64            `json:"ratio"`
}

// MarshalJSON serializes the bound direct-coverage ratios. fileLines and
// the transitive cache are not persisted: fileLines is only needed
// during BindFunctions, and transitive is recomputed lazily from Direct.
func (m *Map) MarshalJSON() ([]byte, error) {
	entries := make([]directEntry, 0, len(m.direct))
	for id, ratio := range m.direct {
		entries = append(entries, directEntry{ID: id, Ratio: ratio})
	}
	return json.Marshal(mapWire{Direct: entries})
}

// UnmarshalJSON restores the direct-coverage ratios saved by MarshalJSON.
func (m *Map) UnmarshalJSON(data []byte) error {
	var w mapWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	m.fileLines = make(map[string]FileCoverage)
	m.direct = make(map[extract.FunctionId]float64, len(w.Direct))
	for _, e := range w.Direct {
		m.direct[e.ID] = e.Ratio
	}
	m.transitive = nil
	return nil
}

// Direct returns the direct (own-body) coverage ratio for id, if known.
func (m *Map) Direct(id extract.FunctionId) (float64, bool) {
	v, ok := m.direct[id]
	return v, ok
}

// Transitive returns the coverage of id's reachable callee subgraph,
// computed lazily and cached: the average of id's own direct coverage
// and its callees' transitive coverage, which lets an untested
// orchestrator inherit credit for the well-tested functions it calls.
func (m *Map) Transitive(g *callgraph.CallGraph, id extract.FunctionId) float64 {
	if m.transitive == nil {
		m.transitive = make(map[extract.FunctionId]float64)
	}
	return m.transitiveRec(g, id, make(map[extract.FunctionId]bool))
}

func (m *Map) transitiveRec(g *callgraph.CallGraph, id extract.FunctionId, visiting map[extract.FunctionId]bool) float64 {
	if v, ok := m.transitive[id]; ok {
		return v
	}
	if visiting[id] {
		return 0 // break cycles conservatively
	}
	visiting[id] = true
	defer delete(visiting, id)

	own, _ := m.Direct(id)
	callees := g.GetCallees(id)
	if len(callees) == 0 {
		m.transitive[id] = own
		return own
	}

	sum := own
	for _, c := range callees {
		sum += m.transitiveRec(g, c, visiting)
	}
	result := sum / float64(len(callees)+1)
	m.transitive[id] = result
	return result
}
