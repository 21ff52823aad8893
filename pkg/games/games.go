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

// Package games holds the game library model shared by the scanners and
// the process monitor.
package games

import "strings"

// Platform tags which distribution source a game was discovered through.
type Platform string

const (
	PlatformSteam     Platform = "Steam"
	PlatformEpic      Platform = "Epic"
	PlatformGOG       Platform = "GOG"
	PlatformRiot      Platform = "Riot"
	PlatformBattleNet Platform = "BattleNet"
	PlatformXbox      Platform = "Xbox"
	// PlatformOther marks manually added games. The aggregator uses the
	// tag to carry them across rescans.
	PlatformOther Platform = "Other"
	// PlatformNetEase tags standalone titles installed through the
	// NetEase launcher, found by the generic drive scanner.
	PlatformNetEase Platform = "NetEase"
)

// Game is one discovered or manually added installed title. Name is the
// identity key across scans; comparisons are case-insensitive.
type Game struct {
	Name        string   `json:"name"`
	InstallPath string   `json:"path"`
	Platform    Platform `json:"platform"`
	// ExePath is the best-guess path to the binary that means "the game
	// is running". Empty means no executable was found: the game is
	// browsable but not monitorable.
	ExePath string `json:"exe_path,omitempty"`
}

// NamesEqual reports whether two game names refer to the same title.
func NamesEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ContainsName reports whether list holds a game with the given name.
func ContainsName(list []Game, name string) bool {
	for i := range list {
		if NamesEqual(list[i].Name, name) {
			return true
		}
	}
	return false
}
