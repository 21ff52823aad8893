// GameChanger
// Copyright (c) 2026 The GameChanger Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of GameChanger.
//
// GameChanger is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GameChanger is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GameChanger.  If not, see <http://www.gnu.org/licenses/>.

package games

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

type cacheFile struct {
	Games []Game `json:"games"`
}

// Store persists the flat game list between sessions so monitoring can
// begin without forcing a full rescan at startup.
type Store struct {
	fs   afero.Fs
	path string
}

func NewStore(fsys afero.Fs, path string) *Store {
	return &Store{fs: fsys, path: path}
}

// Load reads the cached game list. A missing cache is not an error and
// yields an empty list.
func (s *Store) Load() ([]Game, error) {
	exists, err := afero.Exists(s.fs, s.path)
	if err != nil || !exists {
		return nil, nil
	}

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, fmt.Errorf("error reading games cache: %w", err)
	}

	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing games cache: %w", err)
	}
	return f.Games, nil
}

// Save writes the game list, replacing any previous cache.
func (s *Store) Save(list []Game) error {
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("error creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(&cacheFile{Games: list}, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling games cache: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o600); err != nil {
		return fmt.Errorf("error writing games cache: %w", err)
	}
	return nil
}
