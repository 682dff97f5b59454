// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iepathos/debtmap-sub009/pkg/config"
	"github.com/iepathos/debtmap-sub009/pkg/extract"
	"github.com/iepathos/debtmap-sub009/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOverrides(t *testing.T) {
	cfg := config.DefaultConfig("demo")
	applyOverrides(cfg, "cov.lcov", "json", 5, 10, true, false)

	assert.Equal(t, "cov.lcov", cfg.Coverage.File)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 5, cfg.Output.TopN)
	assert.Equal(t, 10.0, cfg.Output.MinScore)
	assert.False(t, cfg.Context.Enabled)
}

func TestApplyOverrides_JSONShorthandWins(t *testing.T) {
	cfg := config.DefaultConfig("demo")
	applyOverrides(cfg, "", "text", -1, -1, false, true)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestApplyOverrides_NegativeLeavesDefaults(t *testing.T) {
	cfg := config.DefaultConfig("demo")
	originalTop := cfg.Output.TopN
	applyOverrides(cfg, "", "", -1, -1, false, false)
	assert.Equal(t, originalTop, cfg.Output.TopN)
}

func TestFilterByComplexity(t *testing.T) {
	items := []report.Item{
		{Function: "Low", Cyclomatic: 2},
		{Function: "High", Cyclomatic: 20},
	}
	out := filterByComplexity(items, 10)
	require.Len(t, out, 1)
	assert.Equal(t, "High", out[0].Function)
}

func TestLanguageFromConfigName(t *testing.T) {
	assert.Equal(t, extract.LangGo, languageFromConfigName("go"))
	assert.Equal(t, extract.LangRust, languageFromConfigName("Rust"))
	assert.Equal(t, extract.LangUnknown, languageFromConfigName("cobol"))
}

func TestIsExcluded(t *testing.T) {
	excludes := []string{"vendor", "*.pb.go"}
	assert.True(t, isExcluded(filepath.Join("vendor", "foo.go"), excludes))
	assert.True(t, isExcluded("generated.pb.go", excludes))
	assert.False(t, isExcluded("main.go", excludes))
}

func TestDiscoverSources(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "vendor"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vendor", "skip.go"), []byte("package vendor\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("# hi\n"), 0644))

	cfg := config.DefaultConfig("demo")
	cfg.Analysis.Exclude = []string{"vendor"}

	sources, err := discoverSources(dir, cfg)
	require.NoError(t, err)

	assert.Contains(t, sources, filepath.Join(dir, "main.go"))
	assert.NotContains(t, sources, filepath.Join(dir, "vendor", "skip.go"))
	assert.NotContains(t, sources, filepath.Join(dir, "readme.md"))
}
