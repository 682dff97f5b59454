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

// Package config loads and saves the .debtmap/project.yaml configuration
// a repository can carry to customize analysis without CLI flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the full project configuration, loaded from
// .debtmap/project.yaml and overridable by CLI flags.
type Config struct {
	ProjectID string `yaml:"project_id"`

	Analysis  AnalysisConfig  `yaml:"analysis"`
	Coverage  CoverageConfig  `yaml:"coverage"`
	Context   ContextConfig   `yaml:"context"`
	Framework FrameworkConfig `yaml:"framework"`
	Output    OutputConfig    `yaml:"output"`
}

// AnalysisConfig controls what the pipeline scans and how hard it looks.
type AnalysisConfig struct {
	Languages       []string        `yaml:"languages"`
	Include         []string        `yaml:"include"`
	Exclude         []string        `yaml:"exclude"`
	MaxFileSize     int             `yaml:"max_file_size_bytes"`
	ExtractorMode   string          `yaml:"extractor_mode"` // auto, tree-sitter, simplified
	LanguageFeatures LanguageFeatures `yaml:"language_features"`
}

// LanguageFeatures gates analysis behaviors that only make sense for
// some languages. DetectDeadCode is keyed by language name (as it
// appears in AnalysisConfig.Languages) and defaults to true for a
// language absent from the map.
type LanguageFeatures struct {
	DetectDeadCode map[string]bool `yaml:"detect_dead_code"`
}

// CoverageConfig points the coverage phase at an LCOV file.
type CoverageConfig struct {
	File string `yaml:"file"`
}

// ContextConfig toggles context-aware dampening.
type ContextConfig struct {
	Enabled    bool     `yaml:"enabled"`
	RulesFiles []string `yaml:"rules_files"`
}

// FrameworkConfig points the framework detector at custom TOML pattern
// files, in addition to its built-in pattern table.
type FrameworkConfig struct {
	PatternDirs []string `yaml:"pattern_dirs"`
}

// OutputConfig controls report formatting.
type OutputConfig struct {
	Format   string `yaml:"format"` // text, json, markdown
	TopN     int    `yaml:"top_n"`
	MinScore float64 `yaml:"min_score"`
}

// ConfigDir is the directory name a project's configuration lives under,
// relative to the repository root.
const ConfigDir = ".debtmap"

// ConfigPath returns the default configuration file path for a project
// rooted at dir.
func ConfigPath(dir string) string {
	return filepath.Join(dir, ConfigDir, "project.yaml")
}

// DefaultConfig returns the configuration a fresh project starts with.
func DefaultConfig(projectID string) *Config {
	return &Config{
		ProjectID: projectID,
		Analysis: AnalysisConfig{
			Languages:     []string{"go", "rust", "python", "javascript", "typescript"},
			Exclude:       []string{"vendor/**", "node_modules/**", ".git/**"},
			MaxFileSize:   1 << 20,
			ExtractorMode: "auto",
			LanguageFeatures: LanguageFeatures{
				DetectDeadCode: map[string]bool{
					"go": true, "rust": true, "python": true,
					"javascript": true, "typescript": true,
				},
			},
		},
		Context: ContextConfig{
			Enabled: true,
		},
		Output: OutputConfig{
			Format: "text",
			TopN:   20,
		},
	}
}

// Load reads and parses a project's configuration file. A missing file
// is not an error: callers get DefaultConfig(projectID) back instead.
func Load(dir, projectID string) (*Config, error) {
	path := ConfigPath(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(projectID), nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := DefaultConfig(projectID)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to dir's configuration file, creating the .debtmap
// directory if needed.
func Save(dir string, cfg *Config) error {
	path := ConfigPath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
