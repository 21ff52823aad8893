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
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GameChangerProject/gamechanger-core/pkg/games"
)

const marvelShipping = "MarvelGame/Marvel/Binaries/Win64/Marvel-Win64-Shipping.exe"

func TestGenericScanFindsMarvelRivals(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeTestFile(t, fs, "D:/Games/Marvel Rivals/"+marvelShipping, "x")
	writeTestFile(t, fs, "D:/Games/Marvel Rivals/MarvelRivals_Launcher.exe", "x")

	s := NewGenericScanner(fs, StaticDrives{"C:/", "D:/"},
		NewResolver(fs, nil, 3), allowAll())
	found := s.Scan(context.Background())

	require.Len(t, found, 1)
	assert.Equal(t, "Marvel Rivals", found[0].Name)
	assert.Equal(t, games.PlatformNetEase, found[0].Platform)
	assert.Equal(t, "D:/Games/Marvel Rivals/"+marvelShipping, found[0].ExePath)
}

func TestGenericScanAlternateFolderSpelling(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeTestFile(t, fs, "C:/MarvelRivals/"+marvelShipping, "x")

	s := NewGenericScanner(fs, StaticDrives{"C:/"},
		NewResolver(fs, nil, 3), allowAll())
	found := s.Scan(context.Background())

	require.Len(t, found, 1)
	assert.Equal(t, "Marvel Rivals", found[0].Name)
}

func TestGenericScanLauncherOnlyInstallIgnored(t *testing.T) {
	t.Parallel()

	// Shipping binary missing: the folder matches but resolution fails,
	// so the title is not reported at all.
	fs := afero.NewMemMapFs()
	writeTestFile(t, fs, "C:/Marvel Rivals/MarvelRivals_Launcher.exe", "x")

	s := NewGenericScanner(fs, StaticDrives{"C:/"},
		NewResolver(fs, nil, 3), allowAll())
	assert.Empty(t, s.Scan(context.Background()))
}

func TestGenericScanSkipsSystemDirs(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeTestFile(t, fs, "C:/Windows/Marvel Rivals/"+marvelShipping, "x")

	s := NewGenericScanner(fs, StaticDrives{"C:/"},
		NewResolver(fs, nil, 3), allowAll())
	assert.Empty(t, s.Scan(context.Background()))
}

func TestGenericScanExcluded(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeTestFile(t, fs, "C:/Marvel Rivals/"+marvelShipping, "x")

	s := NewGenericScanner(fs, StaticDrives{"C:/"},
		NewResolver(fs, nil, 3), excludeNames("Marvel Rivals"))
	assert.Empty(t, s.Scan(context.Background()))
}
