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

// Package report renders a pipeline run's ranked debt items as text,
// JSON, or markdown, the three formats pkg/config.OutputConfig names.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/iepathos/debtmap-sub009/internal/output"
	"github.com/iepathos/debtmap-sub009/internal/ui"
	"github.com/iepathos/debtmap-sub009/pkg/scoring"
)

// Format selects the rendering used by Write.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Item is the flattened, display-ready shape of one ranked debt item.
// It exists separately from scoring.Scored so JSON output has stable,
// documented field names independent of the internal scoring struct.
type Item struct {
	Function   string  `json:"function"`
	File       string  `json:"file"`
	Line       int     `json:"line"`
	Kind       string  `json:"kind"`
	Severity   string  `json:"severity"`
	Score      float64 `json:"score"`
	Coverage   float64 `json:"coverage,omitempty"`
	Cyclomatic int     `json:"cyclomatic,omitempty"`
	Dampening  string  `json:"dampening_reason,omitempty"`
}

// Report is the top-level JSON document produced by Write with
// FormatJSON: the ranked items plus a small aggregate summary.
type Report struct {
	Items   []Item  `json:"items"`
	Total   int     `json:"total"`
	MaxScore float64 `json:"max_score"`
}

// FromScored converts ranked scoring.Scored items (already sorted and
// filtered by pkg/scoring.Rank) into display-ready Items, dropping any
// item the scorer marked Dropped.
func FromScored(scored []scoring.Scored) []Item {
	items := make([]Item, 0, len(scored))
	for _, s := range scored {
		if s.Dropped {
			continue
		}
		items = append(items, Item{
			Function:   s.Item.FuncID.Name,
			File:       s.Item.FuncID.File,
			Line:       s.Item.FuncID.StartLine,
			Kind:       s.Item.Kind.String(),
			Severity:   s.Severity.String(),
			Score:      s.FinalScore,
			Coverage:   s.Item.Coverage,
			Cyclomatic: s.Item.Cyclomatic,
			Dampening:  s.DampeningReason,
		})
	}
	return items
}

// Write renders items in the requested format to w. topN limits how
// many items are shown (0 means unlimited); minScore filters out items
// below that final score before topN is applied.
func Write(w io.Writer, format Format, items []Item, topN int, minScore float64) error {
	filtered := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Score >= minScore {
			filtered = append(filtered, it)
		}
	}
	if topN > 0 && len(filtered) > topN {
		filtered = filtered[:topN]
	}

	switch format {
	case FormatJSON:
		rep := Report{Items: filtered, Total: len(filtered)}
		for _, it := range filtered {
			if it.Score > rep.MaxScore {
				rep.MaxScore = it.Score
			}
		}
		return output.JSONTo(w, rep)
	case FormatMarkdown:
		return writeMarkdown(w, filtered)
	default:
		return writeText(w, filtered)
	}
}

func writeText(w io.Writer, items []Item) error {
	if len(items) == 0 {
		fmt.Fprintln(w, "No debt items found.")
		return nil
	}
	fmt.Fprintln(w, ui.Label("Debt Items")+fmt.Sprintf(" (%d)", len(items)))
	for i, it := range items {
		label := severityLabel(it.Severity)
		fmt.Fprintf(w, "%3d. %s %s:%d %s  %s  score=%.1f\n",
			i+1, label, it.File, it.Line, it.Function, it.Kind, it.Score)
		if it.Dampening != "" {
			fmt.Fprintf(w, "     %s\n", ui.DimText("dampened: "+it.Dampening))
		}
	}
	return nil
}

func severityLabel(sev string) string {
	switch sev {
	case "Critical":
		return ui.Red.Sprint("[CRITICAL]")
	case "High":
		return ui.Yellow.Sprint("[HIGH]")
	case "Moderate":
		return ui.Cyan.Sprint("[MODERATE]")
	default:
		return ui.Dim.Sprint("[LOW]")
	}
}

func writeMarkdown(w io.Writer, items []Item) error {
	fmt.Fprintln(w, "# Debt Report")
	fmt.Fprintln(w)
	if len(items) == 0 {
		fmt.Fprintln(w, "No debt items found.")
		return nil
	}
	fmt.Fprintln(w, "| # | Severity | Location | Function | Kind | Score |")
	fmt.Fprintln(w, "|---|----------|----------|----------|------|-------|")
	for i, it := range items {
		fmt.Fprintf(w, "| %d | %s | %s:%d | %s | %s | %.1f |\n",
			i+1, it.Severity, it.File, it.Line, it.Function, it.Kind, it.Score)
	}
	return nil
}

// ParseFormat maps a --format flag value to a Format, defaulting to
// FormatText for an empty or unrecognized value.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "markdown", "md":
		return FormatMarkdown
	default:
		return FormatText
	}
}
