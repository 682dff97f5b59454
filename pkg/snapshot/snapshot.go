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

// Package snapshot persists a pipeline run's State to disk so an
// interrupted analysis can resume from its last completed phase instead
// of starting over from extraction.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iepathos/debtmap-sub009/pkg/pipeline"
)

// Store manages checkpoint persistence for one analysis target,
// identified by a stable key (usually a hash of the repository root).
type Store struct {
	dir string
	key string
}

// NewStore returns a Store that reads and writes checkpoints under dir,
// namespaced by key.
func NewStore(dir, key string) *Store {
	return &Store{dir: dir, key: key}
}

func (s *Store) path() string {
	if s.dir != "" {
		return filepath.Join(s.dir, fmt.Sprintf("debtmap-checkpoint-%s.json", s.key))
	}
	return fmt.Sprintf("debtmap-checkpoint-%s.json", s.key)
}

// Load reads a checkpoint from disk. It returns (State{}, false, nil)
// when no checkpoint file exists yet, which is not an error.
func (s *Store) Load() (pipeline.State, bool, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return pipeline.State{}, false, nil
		}
		return pipeline.State{}, false, fmt.Errorf("snapshot: read checkpoint: %w", err)
	}

	var st pipeline.State
	if err := json.Unmarshal(data, &st); err != nil {
		return pipeline.State{}, false, fmt.Errorf("snapshot: parse checkpoint: %w", err)
	}

	if !pipeline.IsValidCheckpoint(st) {
		return pipeline.State{}, false, fmt.Errorf("snapshot: checkpoint at phase %v is missing fields its phase requires", st.Phase)
	}

	return st, true, nil
}

// Save writes state to disk atomically (temp file + rename), so a crash
// mid-write never leaves a corrupt checkpoint behind. Only checkpoints
// that pass IsValidCheckpoint are written; Save returns an error rather
// than persist a state a later Load would reject.
func (s *Store) Save(st pipeline.State) error {
	if !pipeline.IsValidCheckpoint(st) {
		return fmt.Errorf("snapshot: refusing to save invalid checkpoint at phase %v", st.Phase)
	}

	path := s.path()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("snapshot: create checkpoint dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: marshal checkpoint: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("snapshot: write checkpoint temp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("snapshot: rename checkpoint: %w", err)
	}

	return nil
}

// Clear removes a checkpoint file, used once a run reaches
// pipeline.PhaseComplete and its checkpoint is no longer needed.
func (s *Store) Clear() error {
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("snapshot: remove checkpoint: %w", err)
	}
	return nil
}
