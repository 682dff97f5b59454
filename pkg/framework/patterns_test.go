// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package framework

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iepathos/debtmap-sub009/pkg/extract"
)

func TestLoadPatternConfig_ParsesRulesPerLanguage(t *testing.T) {
	dir := t.TempDir()
	toml := `language = "python"

[[rules]]
name_pattern = "^celery_task_.*"
confidence = 0.85
description = "celery task entrypoint"
`
	if err := os.WriteFile(filepath.Join(dir, "python.toml"), []byte(toml), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadPatternConfig(dir)
	if err != nil {
		t.Fatalf("LoadPatternConfig: %v", err)
	}

	rule, ok := cfg.Match(extract.LangPython, "celery_task_send_email", "tasks.py")
	if !ok {
		t.Fatal("expected celery_task_send_email to match the loaded rule")
	}
	if rule.Confidence != 0.85 {
		t.Errorf("Confidence = %v, want 0.85", rule.Confidence)
	}
}

func TestLoadPatternConfig_FilePatternRestrictsMatch(t *testing.T) {
	dir := t.TempDir()
	toml := `language = "go"

[[rules]]
name_pattern = "^Generated.*"
file_pattern = "_gen\\.go$"
`
	if err := os.WriteFile(filepath.Join(dir, "go.toml"), []byte(toml), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadPatternConfig(dir)
	if err != nil {
		t.Fatalf("LoadPatternConfig: %v", err)
	}

	if _, ok := cfg.Match(extract.LangGo, "GeneratedStub", "handwritten.go"); ok {
		t.Error("expected file_pattern mismatch to prevent a match")
	}
	if _, ok := cfg.Match(extract.LangGo, "GeneratedStub", "widget_gen.go"); !ok {
		t.Error("expected matching file_pattern and name_pattern to match")
	}
}

func TestLoadPatternConfig_DefaultConfidenceWhenUnset(t *testing.T) {
	dir := t.TempDir()
	toml := `language = "rust"

[[rules]]
name_pattern = "^macro_.*"
`
	if err := os.WriteFile(filepath.Join(dir, "rust.toml"), []byte(toml), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadPatternConfig(dir)
	if err != nil {
		t.Fatalf("LoadPatternConfig: %v", err)
	}
	rule, ok := cfg.Match(extract.LangRust, "macro_generated", "lib.rs")
	if !ok {
		t.Fatal("expected match")
	}
	if rule.Confidence != baseConfidence[PatternCustomPattern] {
		t.Errorf("Confidence = %v, want default %v", rule.Confidence, baseConfidence[PatternCustomPattern])
	}
}

func TestLoadPatternConfig_IgnoresNonTomlFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# notes"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadPatternConfig(dir)
	if err != nil {
		t.Fatalf("LoadPatternConfig: %v", err)
	}
	if len(cfg.byLanguage) != 0 {
		t.Errorf("expected no rules loaded, got %+v", cfg.byLanguage)
	}
}

func TestLoadPatternConfig_MissingDirErrors(t *testing.T) {
	_, err := LoadPatternConfig(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestLoadPatternConfig_InvalidRegexErrors(t *testing.T) {
	dir := t.TempDir()
	toml := `language = "go"

[[rules]]
name_pattern = "(unterminated"
`
	if err := os.WriteFile(filepath.Join(dir, "bad.toml"), []byte(toml), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadPatternConfig(dir); err == nil {
		t.Error("expected an error for an invalid regex pattern")
	}
}
