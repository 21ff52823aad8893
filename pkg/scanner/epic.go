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
	"encoding/json"
	"path/filepath"

	"github.com/GameChangerProject/gamechanger-core/pkg/games"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

//nolint:tagliatelle // JSON tags must match Epic's manifest format (PascalCase)
type epicManifest struct {
	DisplayName     string `json:"DisplayName"`
	InstallLocation string `json:"InstallLocation"`
}

// EpicScanner reads the Epic Games Launcher's per-title manifests. Each
// manifest carries a display name and absolute install location, so no
// library indirection is needed.
type EpicScanner struct {
	fs       afero.Fs
	resolver *Resolver
	excl     ExclusionChecker
	// manifestsDir is the launcher's ProgramData manifests folder.
	manifestsDir string
}

func NewEpicScanner(fsys afero.Fs, resolver *Resolver, excl ExclusionChecker, programData string) *EpicScanner {
	return &EpicScanner{
		fs:           fsys,
		resolver:     resolver,
		excl:         excl,
		manifestsDir: filepath.Join(programData, "Epic", "EpicGamesLauncher", "Data", "Manifests"),
	}
}

func (*EpicScanner) Platform() games.Platform {
	return games.PlatformEpic
}

func (e *EpicScanner) Scan(ctx context.Context) []games.Game {
	manifests, err := afero.Glob(e.fs, filepath.Join(e.manifestsDir, "*.item"))
	if err != nil || len(manifests) == 0 {
		return nil
	}

	var results []games.Game
	for _, path := range manifests {
		if ctx.Err() != nil {
			return results
		}

		data, readErr := afero.ReadFile(e.fs, path)
		if readErr != nil {
			log.Debug().Err(readErr).Str("manifest", path).Msg("failed to read epic manifest")
			continue
		}

		var m epicManifest
		if jsonErr := json.Unmarshal(data, &m); jsonErr != nil {
			log.Warn().Err(jsonErr).Str("manifest", path).Msg("failed to parse epic manifest")
			continue
		}
		if m.DisplayName == "" || m.InstallLocation == "" {
			continue
		}
		if e.excl.IsExcluded(m.DisplayName) || games.ContainsName(results, m.DisplayName) {
			continue
		}

		installPath := filepath.FromSlash(m.InstallLocation)
		if exists, dirErr := afero.DirExists(e.fs, installPath); dirErr != nil || !exists {
			continue
		}

		exe := e.resolver.Resolve(installPath, filepath.Base(installPath), m.DisplayName)
		results = append(results, games.Game{
			Name:        m.DisplayName,
			InstallPath: installPath,
			Platform:    games.PlatformEpic,
			ExePath:     exe,
		})
	}
	return results
}
