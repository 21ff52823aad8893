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

// Package monitor maps live processes to known games and drives the
// category-change action on launch and close transitions.
package monitor

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/GameChangerProject/gamechanger-core/pkg/games"
	"github.com/GameChangerProject/gamechanger-core/pkg/scanner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// siblingSkipPatterns filters installer/uninstaller/launcher noise when
// expanding a game's executable directory into the index.
var siblingSkipPatterns = []string{
	"unins", "install", "setup", "launcher", "crash", "report",
}

// overrideSearchDepth bounds the index expansion search for titles with
// an override rule. Deeper than the resolver's default because the live
// install may nest the shipping binary further than anticipated.
const overrideSearchDepth = 5

// Index maps normalized executable paths to the owning game's name.
// Always derived from a game list snapshot, never persisted.
type Index map[string]string

// Lookup returns the game name owning the executable path.
func (ix Index) Lookup(exePath string) (string, bool) {
	name, ok := ix[NormalizePath(exePath)]
	return name, ok
}

// register adds a path unless another game already claimed it. First
// registration wins; game-list order settles overlapping installs.
func (ix Index) register(path, gameName string) {
	key := NormalizePath(path)
	if _, taken := ix[key]; !taken {
		ix[key] = gameName
	}
}

// NormalizePath canonicalizes an executable path for index lookups:
// cleaned, forward slashes, lowercase. Backslashes are replaced
// unconditionally since process paths come from Windows regardless of
// the build platform.
func NormalizePath(p string) string {
	return strings.ToLower(path.Clean(strings.ReplaceAll(p, `\`, "/")))
}

// BuildIndex derives the process lookup table from a game list. Games
// without an on-disk executable are skipped (discovered but
// unmonitorable). Each entry is expanded beyond the resolved executable
// to tolerate multi-exe titles:
//
//   - titles with an override rule register every executable in the
//     install tree satisfying the rule's predicate, since the running
//     process may not be the exact binary picked at scan time;
//   - other titles register their executable's directory siblings,
//     minus installer/launcher noise;
//   - Xbox titles additionally register every executable directly in
//     their content folder.
func BuildIndex(fsys afero.Fs, list []games.Game, overrides scanner.Overrides) Index {
	ix := make(Index)
	for i := range list {
		game := &list[i]
		if game.ExePath == "" {
			continue
		}
		if exists, err := afero.Exists(fsys, game.ExePath); err != nil || !exists {
			log.Debug().Str("game", game.Name).Str("exe", game.ExePath).
				Msg("resolved executable missing, game not monitorable")
			continue
		}

		ix.register(game.ExePath, game.Name)

		if rule, ok := overrides.Match(game.Name, filepath.Base(game.InstallPath)); ok {
			registerOverrideMatches(fsys, ix, game, &rule)
		} else {
			registerSiblings(fsys, ix, game)
		}

		if game.Platform == games.PlatformXbox {
			registerDirExes(fsys, ix, game.InstallPath, game.Name)
		}
	}
	log.Debug().Int("entries", len(ix)).Msg("executable index built")
	return ix
}

func registerOverrideMatches(fsys afero.Fs, ix Index, game *games.Game, rule *scanner.OverrideRule) {
	root := game.InstallPath
	if root == "" {
		return
	}
	_ = afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil //nolint:nilerr
		}
		if info.IsDir() {
			if strings.Count(filepath.ToSlash(rel), "/") >= overrideSearchDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if isExeName(info.Name()) && rule.Allows(info.Name()) {
			ix.register(path, game.Name)
		}
		return nil
	})
}

func registerSiblings(fsys afero.Fs, ix Index, game *games.Game) {
	dir := filepath.Dir(game.ExePath)
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !isExeName(entry.Name()) {
			continue
		}
		if containsAny(strings.ToLower(entry.Name()), siblingSkipPatterns) {
			continue
		}
		ix.register(filepath.Join(dir, entry.Name()), game.Name)
	}
}

func registerDirExes(fsys afero.Fs, ix Index, dir, gameName string) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() && isExeName(entry.Name()) {
			ix.register(filepath.Join(dir, entry.Name()), gameName)
		}
	}
}

func isExeName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".exe")
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
