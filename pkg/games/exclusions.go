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
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// permanentExclusions are applications the scanners must never surface,
// regardless of the user's exclusion list. Known false positives: tools
// and redistributables that ship alongside games and look like titles.
var permanentExclusions = []string{
	"Wallpaper Engine",
	"Riot Client",
	"EasyAntiCheat",
	"BattlEye",
	"Microsoft Visual C++ Redistributable",
	"DirectX",
	"Steamworks Common Redistributables",
	"Proton Experimental",
}

type exclusionsFile struct {
	Excluded []string `json:"excluded"`
}

// Exclusions is the set of game names the user asked to never see again,
// plus the permanent exclusion table. Scanners only read it through
// IsExcluded; mutation happens via explicit Exclude/Restore actions.
type Exclusions struct {
	fs       afero.Fs
	path     string
	excluded map[string]struct{}
	mu       sync.RWMutex
}

// LoadExclusions reads the persisted exclusion list. A missing or
// unreadable file yields an empty set, not an error.
func LoadExclusions(fsys afero.Fs, path string) *Exclusions {
	e := &Exclusions{
		fs:       fsys,
		path:     path,
		excluded: make(map[string]struct{}),
	}
	if err := e.Reload(); err != nil {
		log.Debug().Err(err).Msg("no exclusion list loaded, starting empty")
	}
	return e
}

// Reload re-reads the exclusion list from disk, replacing the in-memory
// set. Used at startup and when the file changes externally.
func (e *Exclusions) Reload() error {
	data, err := afero.ReadFile(e.fs, e.path)
	if err != nil {
		return fmt.Errorf("error reading exclusions: %w", err)
	}

	var f exclusionsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("error parsing exclusions: %w", err)
	}

	excluded := make(map[string]struct{}, len(f.Excluded))
	for _, name := range f.Excluded {
		excluded[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}

	e.mu.Lock()
	e.excluded = excluded
	e.mu.Unlock()
	return nil
}

func (e *Exclusions) save() error {
	e.mu.RLock()
	f := exclusionsFile{Excluded: make([]string, 0, len(e.excluded))}
	for name := range e.excluded {
		f.Excluded = append(f.Excluded, name)
	}
	e.mu.RUnlock()
	sort.Strings(f.Excluded)

	data, err := json.MarshalIndent(&f, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling exclusions: %w", err)
	}
	if err := afero.WriteFile(e.fs, e.path, data, 0o600); err != nil {
		return fmt.Errorf("error writing exclusions: %w", err)
	}
	return nil
}

// IsExcluded reports whether name is excluded, checking both the user
// set and the permanent table case-insensitively.
func (e *Exclusions) IsExcluded(name string) bool {
	for _, p := range permanentExclusions {
		if strings.EqualFold(p, name) {
			return true
		}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.excluded[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Exclude adds name to the user exclusion set and persists it.
func (e *Exclusions) Exclude(name string) {
	e.mu.Lock()
	e.excluded[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	e.mu.Unlock()

	if err := e.save(); err != nil {
		log.Warn().Err(err).Str("game", name).Msg("failed to persist exclusion")
	}
}

// Restore removes name from the user exclusion set. Returns false when
// the name was not excluded. Permanent exclusions cannot be restored.
func (e *Exclusions) Restore(name string) bool {
	key := strings.ToLower(strings.TrimSpace(name))

	e.mu.Lock()
	_, ok := e.excluded[key]
	if ok {
		delete(e.excluded, key)
	}
	e.mu.Unlock()

	if !ok {
		return false
	}
	if err := e.save(); err != nil {
		log.Warn().Err(err).Str("game", name).Msg("failed to persist exclusion removal")
	}
	return true
}

// List returns the user-excluded names, sorted, for display.
func (e *Exclusions) List() []string {
	e.mu.RLock()
	names := make([]string, 0, len(e.excluded))
	for name := range e.excluded {
		names = append(names, name)
	}
	e.mu.RUnlock()
	sort.Strings(names)
	return names
}
