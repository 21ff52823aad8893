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
	"os"
	"path/filepath"
	"strings"

	"github.com/GameChangerProject/gamechanger-core/pkg/games"
	"github.com/spf13/afero"
)

// standaloneTitle is a game distributed outside the big launchers
// (typically via the NetEase launcher) that we find by folder name.
type standaloneTitle struct {
	name     string
	platform games.Platform
	// folders are the install directory names to match, with known
	// alternate spellings. The resolver's override table supplies the
	// title's shipping-executable rule via the display name.
	folders []string
}

var standaloneTitles = []standaloneTitle{
	{
		name:     "Marvel Rivals",
		platform: games.PlatformNetEase,
		folders:  []string{"Marvel Rivals", "MarvelRivals", "Marvel_Rivals"},
	},
}

// skipDirNames are top-level directories never worth descending into on
// a full-drive walk.
var skipDirNames = map[string]struct{}{
	"windows":                   {},
	"programdata":               {},
	"$recycle.bin":              {},
	"system volume information": {},
	"recovery":                  {},
	"perflogs":                  {},
	"appdata":                   {},
}

// genericWalkDepth bounds the drive walk. Standalone launchers nest
// installs at most a couple of levels below the drive root.
const genericWalkDepth = 3

// GenericScanner finds known standalone titles by walking every drive
// for a matching install folder, then resolving the shipping executable
// through the title's override rule.
type GenericScanner struct {
	fs       afero.Fs
	drives   DriveLister
	resolver *Resolver
	excl     ExclusionChecker
}

func NewGenericScanner(fsys afero.Fs, drives DriveLister, resolver *Resolver, excl ExclusionChecker) *GenericScanner {
	return &GenericScanner{fs: fsys, drives: drives, resolver: resolver, excl: excl}
}

func (*GenericScanner) Platform() games.Platform {
	return games.PlatformNetEase
}

func (g *GenericScanner) Scan(ctx context.Context) []games.Game {
	var results []games.Game
	for _, drive := range g.drives.Drives() {
		if ctx.Err() != nil {
			return results
		}
		results = g.scanDrive(drive, results)
	}
	return results
}

func (g *GenericScanner) scanDrive(drive string, results []games.Game) []games.Game {
	_ = afero.Walk(g.fs, drive, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr // inaccessible entries are skipped
		}
		if !info.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(drive, path)
		if relErr != nil {
			return nil //nolint:nilerr
		}
		if rel == "." {
			return nil
		}
		depth := strings.Count(filepath.ToSlash(rel), "/")
		if _, skip := skipDirNames[strings.ToLower(info.Name())]; skip {
			return filepath.SkipDir
		}
		if depth >= genericWalkDepth {
			return filepath.SkipDir
		}

		for i := range standaloneTitles {
			title := &standaloneTitles[i]
			if !folderMatches(info.Name(), title.folders) {
				continue
			}
			if g.excl.IsExcluded(title.name) || games.ContainsName(results, title.name) {
				return filepath.SkipDir
			}
			exe := g.resolver.Resolve(path, info.Name(), title.name)
			if exe == "" {
				return filepath.SkipDir
			}
			results = append(results, games.Game{
				Name:        title.name,
				InstallPath: path,
				Platform:    title.platform,
				ExePath:     exe,
			})
			return filepath.SkipDir
		}
		return nil
	})
	return results
}
