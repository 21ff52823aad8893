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

package scanner

import (
	"context"
	"path/filepath"

	"github.com/GameChangerProject/gamechanger-core/pkg/games"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const gogRegistryKey = `SOFTWARE\WOW6432Node\GOG.com\Games`

// GOGScanner enumerates GOG Galaxy's registry entries. GOG publishes
// the relative executable name per title, so no resolver heuristics are
// involved.
type GOGScanner struct {
	fs   afero.Fs
	reg  Registry
	excl ExclusionChecker
}

func NewGOGScanner(fsys afero.Fs, reg Registry, excl ExclusionChecker) *GOGScanner {
	return &GOGScanner{fs: fsys, reg: reg, excl: excl}
}

func (*GOGScanner) Platform() games.Platform {
	return games.PlatformGOG
}

func (g *GOGScanner) Scan(ctx context.Context) []games.Game {
	subkeys, err := g.reg.LocalMachineSubkeys(gogRegistryKey)
	if err != nil {
		log.Debug().Err(err).Msg("gog not installed, skipping")
		return nil
	}

	var results []games.Game
	for _, subkey := range subkeys {
		if ctx.Err() != nil {
			return results
		}

		key := gogRegistryKey + `\` + subkey
		name, nameErr := g.reg.LocalMachineValue(key, "gameName")
		path, pathErr := g.reg.LocalMachineValue(key, "path")
		exe, exeErr := g.reg.LocalMachineValue(key, "exe")
		if nameErr != nil || pathErr != nil || exeErr != nil {
			log.Debug().Str("subkey", subkey).Msg("incomplete gog registry entry, skipping")
			continue
		}
		if g.excl.IsExcluded(name) || games.ContainsName(results, name) {
			continue
		}

		installPath := filepath.FromSlash(path)
		if exists, dirErr := afero.DirExists(g.fs, installPath); dirErr != nil || !exists {
			continue
		}

		exePath := filepath.Join(installPath, filepath.FromSlash(exe))
		if exists, statErr := afero.Exists(g.fs, exePath); statErr != nil || !exists {
			exePath = ""
		}

		results = append(results, games.Game{
			Name:        name,
			InstallPath: installPath,
			Platform:    games.PlatformGOG,
			ExePath:     exePath,
		})
	}
	return results
}
