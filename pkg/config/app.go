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

package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	AppName    = "gamechanger"
	AppVersion = "2.1.0"

	CfgFile        = "config.toml"
	LogFile        = "core.log"
	GamesCacheFile = "games_cache.json"
	ExclusionsFile = "excluded_games.json"
)

// DataDir returns the directory where GameChanger keeps its config,
// game cache and logs. Created on demand by the callers that write to it.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}
