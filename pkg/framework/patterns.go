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

package framework

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/iepathos/debtmap-sub009/pkg/extract"
)

// PatternRule is one user-supplied custom framework pattern, matched
// against a function's name and/or declaring file.
type PatternRule struct {
	FilePattern string  `toml:"file_pattern"`
	NamePattern string  `toml:"name_pattern"`
	Description string  `toml:"description"`
	Confidence  float64 `toml:"confidence"`

	nameRe *regexp.Regexp
	fileRe *regexp.Regexp
}

// languagePatterns is one TOML file's worth of rules for a language.
type languagePatterns struct {
	Language string        `toml:"language"`
	Rules    []PatternRule `toml:"rules"`
}

// PatternConfig is the full set of loaded per-language pattern files,
// keyed by extract.Language.
type PatternConfig struct {
	byLanguage map[extract.Language][]PatternRule
}

// LoadPatternConfig loads every "*.toml" file in dir as a per-language
// pattern file. Each file's "language" field (go/rust/python/javascript/
// typescript) selects which extract.Language its rules apply to.
func LoadPatternConfig(dir string) (*PatternConfig, error) {
	cfg := &PatternConfig{byLanguage: make(map[extract.Language][]PatternRule)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("framework: read pattern dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("framework: read pattern file %s: %w", path, err)
		}

		var lp languagePatterns
		if err := toml.Unmarshal(data, &lp); err != nil {
			return nil, fmt.Errorf("framework: parse pattern file %s: %w", path, err)
		}

		lang := languageFromString(lp.Language)
		for i := range lp.Rules {
			if err := lp.Rules[i].compile(); err != nil {
				return nil, fmt.Errorf("framework: compile pattern in %s: %w", path, err)
			}
		}
		cfg.byLanguage[lang] = append(cfg.byLanguage[lang], lp.Rules...)
	}

	return cfg, nil
}

func (r *PatternRule) compile() error {
	if r.NamePattern != "" {
		re, err := regexp.Compile(r.NamePattern)
		if err != nil {
			return err
		}
		r.nameRe = re
	}
	if r.FilePattern != "" {
		re, err := regexp.Compile(r.FilePattern)
		if err != nil {
			return err
		}
		r.fileRe = re
	}
	if r.Confidence == 0 {
		r.Confidence = baseConfidence[PatternCustomPattern]
	}
	return nil
}

func languageFromString(s string) extract.Language {
	switch strings.ToLower(s) {
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

// Match returns the first custom rule matching a name (and, if set, the
// file path) for the given language.
func (c *PatternConfig) Match(lang extract.Language, name, path string) (PatternRule, bool) {
	for _, rule := range c.byLanguage[lang] {
		if rule.nameRe != nil && !rule.nameRe.MatchString(name) {
			continue
		}
		if rule.fileRe != nil && !rule.fileRe.MatchString(path) {
			continue
		}
		return rule, true
	}
	return PatternRule{}, false
}
