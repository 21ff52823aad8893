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
	"strings"

	"github.com/GameChangerProject/gamechanger-core/pkg/games"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// riotProductNames maps Riot product IDs to their display names. IDs
// not listed fall back to the folder name.
var riotProductNames = map[string]string{
	"valorant":          "VALORANT",
	"league_of_legends": "League of Legends",
	"lor":               "Legends of Runeterra",
	"bacon":             "Legends of Runeterra",
}

type riotInstallSettings struct {
	ProductInstallFullPath string `json:"product_install_full_path"`
	ProductInstallRoot     string `json:"product_install_root"`
}

// RiotScanner enumerates the Riot client's per-product metadata folders
// in ProgramData. Each product's install descriptor yields the install
// location; the executable comes from the resolver (Riot titles are the
// classic launcher/shipping split).
type RiotScanner struct {
	fs          afero.Fs
	resolver    *Resolver
	excl        ExclusionChecker
	metadataDir string
}

func NewRiotScanner(fsys afero.Fs, resolver *Resolver, excl ExclusionChecker, programData string) *RiotScanner {
	return &RiotScanner{
		fs:          fsys,
		resolver:    resolver,
		excl:        excl,
		metadataDir: filepath.Join(programData, "Riot Games", "Metadata"),
	}
}

func (*RiotScanner) Platform() games.Platform {
	return games.PlatformRiot
}

func (r *RiotScanner) Scan(ctx context.Context) []games.Game {
	entries, err := afero.ReadDir(r.fs, r.metadataDir)
	if err != nil {
		return nil
	}

	var results []games.Game
	for _, entry := range entries {
		if ctx.Err() != nil {
			return results
		}
		if !entry.IsDir() {
			continue
		}

		productID := entry.Name()
		installPath := r.readInstallPath(filepath.Join(r.metadataDir, productID))
		if installPath == "" {
			continue
		}
		if exists, dirErr := afero.DirExists(r.fs, installPath); dirErr != nil || !exists {
			continue
		}

		name := riotDisplayName(productID)
		if r.excl.IsExcluded(name) || games.ContainsName(results, name) {
			continue
		}

		exe := r.resolver.Resolve(installPath, filepath.Base(installPath), name)
		results = append(results, games.Game{
			Name:        name,
			InstallPath: installPath,
			Platform:    games.PlatformRiot,
			ExePath:     exe,
		})
	}
	return results
}

// readInstallPath finds the product's install descriptor and returns
// its declared install location.
func (r *RiotScanner) readInstallPath(productDir string) string {
	descriptors, err := afero.Glob(r.fs, filepath.Join(productDir, "*.json"))
	if err != nil {
		return ""
	}

	for _, path := range descriptors {
		data, readErr := afero.ReadFile(r.fs, path)
		if readErr != nil {
			log.Debug().Err(readErr).Str("descriptor", path).Msg("failed to read riot descriptor")
			continue
		}

		var settings riotInstallSettings
		if jsonErr := json.Unmarshal(data, &settings); jsonErr != nil {
			continue
		}
		if settings.ProductInstallFullPath != "" {
			return filepath.FromSlash(settings.ProductInstallFullPath)
		}
		if settings.ProductInstallRoot != "" {
			return filepath.FromSlash(settings.ProductInstallRoot)
		}
	}
	return ""
}

func riotDisplayName(productID string) string {
	id := strings.ToLower(productID)
	// Product folders carry a patchline suffix, e.g. "valorant.live".
	if i := strings.IndexByte(id, '.'); i >= 0 {
		id = id[:i]
	}
	if name, ok := riotProductNames[id]; ok {
		return name
	}
	return strings.Title(strings.ReplaceAll(id, "_", " ")) //nolint:staticcheck // product IDs are plain ASCII
}
