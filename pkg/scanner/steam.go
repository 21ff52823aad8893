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
	"github.com/andygrunwald/vdf"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const steamRegistryKey = `Software\Valve\Steam`

// SteamScanner discovers games through Steam's library descriptor and
// per-title app manifests.
type SteamScanner struct {
	fs       afero.Fs
	reg      Registry
	resolver *Resolver
	excl     ExclusionChecker
}

func NewSteamScanner(fsys afero.Fs, reg Registry, resolver *Resolver, excl ExclusionChecker) *SteamScanner {
	return &SteamScanner{fs: fsys, reg: reg, resolver: resolver, excl: excl}
}

func (*SteamScanner) Platform() games.Platform {
	return games.PlatformSteam
}

func (s *SteamScanner) Scan(ctx context.Context) []games.Game {
	steamPath, err := s.reg.CurrentUserValue(steamRegistryKey, "SteamPath")
	if err != nil {
		log.Debug().Err(err).Msg("steam not installed, skipping")
		return nil
	}

	mainSteamApps := filepath.Join(filepath.FromSlash(steamPath), "steamapps")
	libraries := []string{mainSteamApps}
	for _, extra := range s.libraryFolders(mainSteamApps) {
		if extra != mainSteamApps {
			libraries = append(libraries, extra)
		}
	}

	var results []games.Game
	for _, steamApps := range libraries {
		if ctx.Err() != nil {
			return results
		}
		results = s.scanLibrary(steamApps, results)
	}
	return results
}

// libraryFolders parses steamapps/libraryfolders.vdf for additional
// library roots. Steam's descriptor is key/value VDF text, one numbered
// block per library.
func (s *SteamScanner) libraryFolders(mainSteamApps string) []string {
	path := filepath.Join(mainSteamApps, "libraryfolders.vdf")
	f, err := s.fs.Open(path)
	if err != nil {
		log.Debug().Err(err).Msg("no libraryfolders.vdf")
		return nil
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing libraryfolders.vdf")
		}
	}()

	m, err := vdf.NewParser(f).Parse()
	if err != nil {
		log.Warn().Err(err).Msg("failed to parse libraryfolders.vdf")
		return nil
	}

	lfs, ok := m["libraryfolders"].(map[string]any)
	if !ok {
		return nil
	}

	var folders []string
	for _, v := range lfs {
		lib, ok := v.(map[string]any)
		if !ok {
			continue
		}
		libraryPath, ok := lib["path"].(string)
		if !ok {
			continue
		}
		folders = append(folders, filepath.Join(filepath.FromSlash(libraryPath), "steamapps"))
	}
	return folders
}

func (s *SteamScanner) scanLibrary(steamApps string, results []games.Game) []games.Game {
	manifests, err := afero.Glob(s.fs, filepath.Join(steamApps, "appmanifest_*.acf"))
	if err != nil {
		log.Debug().Err(err).Str("library", steamApps).Msg("error listing app manifests")
		return results
	}

	for _, manifest := range manifests {
		name, installDir, ok := s.readAppManifest(manifest)
		if !ok || s.excl.IsExcluded(name) {
			continue
		}
		if games.ContainsName(results, name) {
			continue
		}

		installPath := filepath.Join(steamApps, "common", installDir)
		if exists, dirErr := afero.DirExists(s.fs, installPath); dirErr != nil || !exists {
			continue
		}

		exe := s.resolver.Resolve(installPath, installDir, name)
		results = append(results, games.Game{
			Name:        name,
			InstallPath: installPath,
			Platform:    games.PlatformSteam,
			ExePath:     exe,
		})
	}
	return results
}

func (s *SteamScanner) readAppManifest(path string) (name, installDir string, ok bool) {
	f, err := s.fs.Open(path)
	if err != nil {
		log.Debug().Err(err).Str("manifest", path).Msg("failed to open app manifest")
		return "", "", false
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing app manifest")
		}
	}()

	m, err := vdf.NewParser(f).Parse()
	if err != nil {
		log.Warn().Err(err).Str("manifest", path).Msg("failed to parse app manifest")
		return "", "", false
	}

	appState, ok := m["AppState"].(map[string]any)
	if !ok {
		return "", "", false
	}
	name, _ = appState["name"].(string)
	installDir, _ = appState["installdir"].(string)
	if name == "" || installDir == "" {
		return "", "", false
	}
	return name, installDir, true
}
