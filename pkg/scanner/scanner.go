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

// Package scanner discovers installed games across distribution
// platforms and resolves the executable that represents each one.
package scanner

import (
	"context"

	"github.com/GameChangerProject/gamechanger-core/pkg/games"
)

// Scanner discovers installed games for one distribution platform.
// Implementations never fail the aggregate scan: an absent platform
// yields an empty list, per-entry problems are logged and skipped.
type Scanner interface {
	Platform() games.Platform
	Scan(ctx context.Context) []games.Game
}

// ExclusionChecker is the read-only view scanners get of the exclusion
// set. Writes happen elsewhere.
type ExclusionChecker interface {
	IsExcluded(name string) bool
}

// Registry is the subset of the Windows registry the scanners need.
// Non-Windows builds and tests supply fakes.
type Registry interface {
	// CurrentUserValue reads a string value under HKEY_CURRENT_USER.
	CurrentUserValue(key, name string) (string, error)
	// LocalMachineSubkeys lists subkey names under HKEY_LOCAL_MACHINE.
	LocalMachineSubkeys(key string) ([]string, error)
	// LocalMachineValue reads a string value from a subkey of
	// HKEY_LOCAL_MACHINE.
	LocalMachineValue(key, name string) (string, error)
}

// DriveLister enumerates roots to search for game installs.
type DriveLister interface {
	Drives() []string
}
