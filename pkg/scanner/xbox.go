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
	"sort"

	"github.com/GameChangerProject/gamechanger-core/pkg/games"
	"github.com/spf13/afero"
)

// xboxFolderConventions are the directory layouts the Xbox app uses for
// game installs, relative to a drive root.
var xboxFolderConventions = []string{
	"xbox",
	"Xbox",
	filepath.Join("Games", "xbox"),
	filepath.Join("Games", "Xbox"),
}

// XboxScanner treats each subfolder of a drive's Xbox games directory
// as a title; a title counts as installed when its Content folder holds
// at least one executable. The Content folder (not the title folder) is
// recorded as the install path so the index can expand it directly.
type XboxScanner struct {
	fs     afero.Fs
	drives DriveLister
	excl   ExclusionChecker
}

func NewXboxScanner(fsys afero.Fs, drives DriveLister, excl ExclusionChecker) *XboxScanner {
	return &XboxScanner{fs: fsys, drives: drives, excl: excl}
}

func (*XboxScanner) Platform() games.Platform {
	return games.PlatformXbox
}

func (x *XboxScanner) Scan(ctx context.Context) []games.Game {
	var results []games.Game
	for _, drive := range x.drives.Drives() {
		if ctx.Err() != nil {
			return results
		}
		for _, convention := range xboxFolderConventions {
			results = x.scanGamesDir(filepath.Join(drive, convention), results)
		}
	}
	return results
}

func (x *XboxScanner) scanGamesDir(gamesDir string, results []games.Game) []games.Game {
	entries, err := afero.ReadDir(x.fs, gamesDir)
	if err != nil {
		return results
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if x.excl.IsExcluded(name) || games.ContainsName(results, name) {
			continue
		}

		contentDir := filepath.Join(gamesDir, name, "Content")
		if ok, _ := afero.DirExists(x.fs, contentDir); !ok {
			contentDir = filepath.Join(gamesDir, name, "content")
			if ok, _ := afero.DirExists(x.fs, contentDir); !ok {
				continue
			}
		}

		exes := contentExes(x.fs, contentDir)
		if len(exes) == 0 {
			continue
		}

		results = append(results, games.Game{
			Name:        name,
			InstallPath: contentDir,
			Platform:    games.PlatformXbox,
			ExePath:     exes[0],
		})
	}
	return results
}

// contentExes lists executables directly inside dir, sorted by name.
func contentExes(fsys afero.Fs, dir string) []string {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil
	}
	var exes []string
	for _, entry := range entries {
		if !entry.IsDir() && isExe(entry.Name()) {
			exes = append(exes, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(exes)
	return exes
}
