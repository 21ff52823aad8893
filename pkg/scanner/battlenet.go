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
	"strings"

	"github.com/GameChangerProject/gamechanger-core/pkg/games"
	"github.com/spf13/afero"
)

// blizzardTitle describes one known Battle.net game: the folder names
// it installs under (including alternate spellings) and the literal
// executable that confirms the install. Battle.net keeps no manifest,
// so the table is the only discovery mechanism.
type blizzardTitle struct {
	name    string
	folders []string
	exe     string
}

var blizzardTitles = []blizzardTitle{
	{name: "Overwatch", folders: []string{"Overwatch", "Overwatch 2"}, exe: "Overwatch.exe"},
	{name: "World of Warcraft", folders: []string{"World of Warcraft"}, exe: "Wow.exe"},
	{name: "Diablo III", folders: []string{"Diablo III"}, exe: "Diablo III64.exe"},
	{name: "Diablo IV", folders: []string{"Diablo IV"}, exe: "Diablo IV.exe"},
	{name: "Hearthstone", folders: []string{"Hearthstone"}, exe: "Hearthstone.exe"},
	{name: "StarCraft II", folders: []string{"StarCraft II"}, exe: "SC2_x64.exe"},
	{name: "Warcraft III", folders: []string{"Warcraft III"}, exe: "Warcraft III.exe"},
	{name: "Heroes of the Storm", folders: []string{"Heroes of the Storm"}, exe: "HeroesOfTheStorm_x64.exe"},
}

// blizzardSearchDepth bounds the fallback walk when the expected exe is
// not directly inside the install folder.
const blizzardSearchDepth = 3

// BattleNetScanner walks every drive's top-level directories matching
// them against the known Battle.net title table.
type BattleNetScanner struct {
	fs     afero.Fs
	drives DriveLister
	excl   ExclusionChecker
}

func NewBattleNetScanner(fsys afero.Fs, drives DriveLister, excl ExclusionChecker) *BattleNetScanner {
	return &BattleNetScanner{fs: fsys, drives: drives, excl: excl}
}

func (*BattleNetScanner) Platform() games.Platform {
	return games.PlatformBattleNet
}

func (b *BattleNetScanner) Scan(ctx context.Context) []games.Game {
	var results []games.Game
	for _, drive := range b.drives.Drives() {
		if ctx.Err() != nil {
			return results
		}

		entries, err := afero.ReadDir(b.fs, drive)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			results = b.matchFolder(filepath.Join(drive, entry.Name()), entry.Name(), results)
		}
	}
	return results
}

func (b *BattleNetScanner) matchFolder(dir, folderName string, results []games.Game) []games.Game {
	for i := range blizzardTitles {
		title := &blizzardTitles[i]
		if !folderMatches(folderName, title.folders) {
			continue
		}
		if b.excl.IsExcluded(title.name) || games.ContainsName(results, title.name) {
			return results
		}

		exe := b.findExe(dir, title.exe)
		if exe == "" {
			return results
		}
		return append(results, games.Game{
			Name:        title.name,
			InstallPath: dir,
			Platform:    games.PlatformBattleNet,
			ExePath:     exe,
		})
	}
	return results
}

func (b *BattleNetScanner) findExe(dir, exeName string) string {
	direct := filepath.Join(dir, exeName)
	if info, err := b.fs.Stat(direct); err == nil && !info.IsDir() {
		return direct
	}

	matches := findFilesNamed(b.fs, dir, exeName, blizzardSearchDepth)
	if len(matches) == 0 {
		return ""
	}
	return matches[0]
}

func folderMatches(folderName string, variants []string) bool {
	for _, v := range variants {
		if strings.EqualFold(folderName, v) {
			return true
		}
	}
	return false
}
