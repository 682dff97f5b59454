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

package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/iepathos/debtmap-sub009/internal/errors"
	"github.com/iepathos/debtmap-sub009/internal/ui"
	"github.com/iepathos/debtmap-sub009/pkg/config"
	"github.com/iepathos/debtmap-sub009/pkg/extract"
	"github.com/iepathos/debtmap-sub009/pkg/framework"
	"github.com/iepathos/debtmap-sub009/pkg/pipeline"
	"github.com/iepathos/debtmap-sub009/pkg/report"
	"github.com/iepathos/debtmap-sub009/pkg/snapshot"
)

// runAnalyze executes the 'analyze' CLI command: discover source files
// under a root, run the nine-phase pipeline over them, and print the
// ranked debt report.
//
// Flags:
//
//	--coverage        Path to an LCOV coverage file (default: from config)
//	--format          Output format: text, json, markdown (default: from config)
//	--top             Limit the report to the top N items (default: from config)
//	--min-score       Drop items scoring below this threshold (default: from config)
//	--min-complexity  Drop items with cyclomatic complexity below this value
//	--no-context      Disable context-aware scoring dampening
//	--patterns        Directory of framework pattern TOML files
//	--checkpoint-dir  Directory to persist a JSON checkpoint of the final state
//	--json            Shorthand for --format json
//	--no-color        Disable colored output
//	-q, --quiet       Suppress progress output
func runAnalyze(args []string) {
	fset := flag.NewFlagSet("analyze", flag.ExitOnError)
	coverageFile := fset.String("coverage", "", "Path to an LCOV coverage file")
	formatFlag := fset.String("format", "", "Output format: text, json, markdown")
	topN := fset.Int("top", -1, "Limit the report to the top N items")
	minScore := fset.Float64("min-score", -1, "Drop items scoring below this threshold")
	minComplexity := fset.Int("min-complexity", 0, "Drop items with cyclomatic complexity below this value")
	noContext := fset.Bool("no-context", false, "Disable context-aware scoring dampening")
	patternsDir := fset.String("patterns", "", "Directory of framework pattern TOML files")
	checkpointDir := fset.String("checkpoint-dir", "", "Directory to persist a JSON checkpoint of the final state")
	asJSON := fset.Bool("json", false, "Shorthand for --format json")
	noColor := fset.Bool("no-color", false, "Disable colored output")
	quiet := fset.BoolP("quiet", "q", false, "Suppress progress output")

	fset.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: debtmap analyze [path] [options]

Analyzes the source tree rooted at path (default: current directory)
and prints a ranked technical-debt report. Configuration defaults come
from .debtmap/project.yaml if present.

Options:
`)
		fset.PrintDefaults()
	}

	if err := fset.Parse(args); err != nil {
		os.Exit(1)
	}

	root := "."
	if rest := fset.Args(); len(rest) > 0 {
		root = rest[0]
	}

	globals := GlobalFlags{JSON: *asJSON, Quiet: *quiet, NoColor: *noColor}
	initColors(globals.NoColor)

	logLevel := slog.LevelWarn
	if !globals.Quiet {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cwd, err := os.Getwd()
	if err != nil {
		errors.FatalError(errors.NewIOError(
			"Cannot determine current directory",
			err.Error(),
			"Check the process's working directory permissions",
			err,
		), globals.JSON)
	}

	cfg, err := config.Load(cwd, filepath.Base(cwd))
	if err != nil {
		errors.FatalError(errors.NewConfigError(
			"Cannot load project configuration",
			err.Error(),
			"Check .debtmap/project.yaml for syntax errors, or remove it to use defaults",
			err,
		), globals.JSON)
	}
	applyOverrides(cfg, *coverageFile, *formatFlag, *topN, *minScore, *noContext, *asJSON)

	progressCfg := NewProgressConfig(globals)
	spinner := NewSpinner(progressCfg, "Discovering source files")
	sources, err := discoverSources(root, cfg)
	if spinner != nil {
		_ = spinner.Finish()
	}
	if err != nil {
		errors.FatalError(errors.NewIOError(
			"Cannot read source tree",
			err.Error(),
			fmt.Sprintf("Check that %s exists and is readable", root),
			err,
		), globals.JSON)
	}
	if len(sources) == 0 {
		errors.FatalError(errors.NewExtractionError(
			"No source files found",
			fmt.Sprintf("no files under %s matched the configured languages", root),
			"Check --languages in .debtmap/project.yaml matches the files under the analysis root",
			nil,
		), globals.JSON)
	}

	registry := buildRegistry(cfg)

	var patternCfg *framework.PatternConfig
	dir := *patternsDir
	if dir == "" && len(cfg.Framework.PatternDirs) > 0 {
		dir = cfg.Framework.PatternDirs[0]
	}
	if dir != "" {
		if pc, err := framework.LoadPatternConfig(dir); err != nil {
			logger.Warn("framework.patterns.load_failed", "dir", dir, "err", err)
		} else {
			patternCfg = pc
		}
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if patternCfg != nil {
		opts = append(opts, pipeline.WithPatternConfig(patternCfg))
	}
	p := pipeline.New(registry, opts...)

	in := pipeline.Input{
		Sources: sources,
		Config: pipeline.Config{
			CoverageFile:     cfg.Coverage.File,
			EnableContext:    cfg.Context.Enabled,
			DeadCodeFeatures: cfg.Analysis.LanguageFeatures.DetectDeadCode,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()
	state, err := p.Run(ctx, in)
	if err != nil {
		errors.FatalError(errors.NewExtractionError(
			"Analysis failed",
			err.Error(),
			"Check the source tree is parseable and --languages matches its contents",
			err,
		), globals.JSON)
	}
	logger.Info("analyze.complete",
		"files", len(sources),
		"items", len(state.Results.ScoredItems),
		"duration", time.Since(start).String(),
	)

	if checkpointDir != nil && *checkpointDir != "" {
		store := snapshot.NewStore(*checkpointDir, filepath.Base(cwd))
		if err := store.Save(state); err != nil {
			logger.Warn("checkpoint.save_failed", "err", err)
		}
	}

	items := report.FromScored(state.Results.ScoredItems)
	if *minComplexity > 0 {
		items = filterByComplexity(items, *minComplexity)
	}

	if err := report.Write(os.Stdout, report.ParseFormat(cfg.Output.Format), items, cfg.Output.TopN, cfg.Output.MinScore); err != nil {
		errors.FatalError(errors.NewIOError(
			"Cannot write report",
			err.Error(),
			"Check that stdout is writable",
			err,
		), globals.JSON)
	}

	if !globals.Quiet {
		ui.Success(fmt.Sprintf("Analyzed %d files, %d debt items ranked", len(sources), len(items)))
	}
}

func applyOverrides(cfg *config.Config, coverage, format string, topN int, minScore float64, noContext, asJSON bool) {
	if coverage != "" {
		cfg.Coverage.File = coverage
	}
	if format != "" {
		cfg.Output.Format = format
	}
	if asJSON {
		cfg.Output.Format = "json"
	}
	if topN >= 0 {
		cfg.Output.TopN = topN
	}
	if minScore >= 0 {
		cfg.Output.MinScore = minScore
	}
	if noContext {
		cfg.Context.Enabled = false
	}
}

func filterByComplexity(items []report.Item, minComplexity int) []report.Item {
	out := items[:0]
	for _, it := range items {
		if it.Cyclomatic >= minComplexity {
			out = append(out, it)
		}
	}
	return out
}

// buildRegistry wires a tree-sitter backed Go extractor and
// regex-based simplified extractors for every other configured
// language, mirroring ingestion.ParserModeAuto's selection rule: use
// the precise parser where one exists, fall back everywhere else.
func buildRegistry(cfg *config.Config) *extract.Registry {
	mode := extract.ExtractorModeAuto
	switch strings.ToLower(cfg.Analysis.ExtractorMode) {
	case "treesitter":
		mode = extract.ExtractorModeTreeSitter
	case "simplified":
		mode = extract.ExtractorModeSimplified
	}

	registry := extract.NewRegistry(mode)
	registry.RegisterTreeSitter(extract.LangGo, extract.NewGoExtractor())
	registry.RegisterSimplified(extract.LangGo, extract.NewSimplifiedExtractor(extract.LangGo))
	registry.RegisterSimplified(extract.LangRust, extract.NewSimplifiedExtractor(extract.LangRust))
	registry.RegisterSimplified(extract.LangPython, extract.NewSimplifiedExtractor(extract.LangPython))
	registry.RegisterSimplified(extract.LangJavaScript, extract.NewSimplifiedExtractor(extract.LangJavaScript))
	registry.RegisterSimplified(extract.LangTypeScript, extract.NewSimplifiedExtractor(extract.LangTypeScript))
	if cfg.Analysis.MaxFileSize > 0 {
		registry.SetMaxCodeTextSize(cfg.Analysis.MaxFileSize)
	}
	return registry
}

// discoverSources walks root and reads every file whose language is
// both supported and enabled in cfg.Analysis.Languages, skipping paths
// that match cfg.Analysis.Exclude. File discovery and ignore-file
// parsing are collaborators, not core engineering, so this is
// intentionally a plain filepath.WalkDir plus a glob-exclude list.
func discoverSources(root string, cfg *config.Config) (map[string][]byte, error) {
	enabled := make(map[extract.Language]bool, len(cfg.Analysis.Languages))
	for _, l := range cfg.Analysis.Languages {
		enabled[languageFromConfigName(l)] = true
	}

	sources := make(map[string][]byte)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if isExcluded(path, cfg.Analysis.Exclude) {
				return filepath.SkipDir
			}
			return nil
		}
		if isExcluded(path, cfg.Analysis.Exclude) {
			return nil
		}
		lang := extract.LanguageFromExt(filepath.Ext(path))
		if lang == extract.LangUnknown || !enabled[lang] {
			return nil
		}
		if cfg.Analysis.MaxFileSize > 0 {
			if info, statErr := d.Info(); statErr == nil && info.Size() > int64(cfg.Analysis.MaxFileSize) {
				return nil
			}
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		sources[path] = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sources, nil
}

func isExcluded(path string, excludes []string) bool {
	for _, pattern := range excludes {
		if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
			return true
		}
		if strings.Contains(path, string(os.PathSeparator)+pattern+string(os.PathSeparator)) ||
			strings.HasPrefix(path, pattern+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

func languageFromConfigName(name string) extract.Language {
	switch strings.ToLower(name) {
	case "go":
		return extract.LangGo
	case "rust":
		return extract.LangRust
	case "python":
		return extract.LangPython
	case "javascript":
		return extract.LangJavaScript
	case "typescript":
		return extract.LangTypeScript
	default:
		return extract.LangUnknown
	}
}
