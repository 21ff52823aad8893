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

const epicProgramData = "C:/ProgramData"

const epicManifestsDir = epicProgramData + "/Epic/EpicGamesLauncher/Data/Manifests"

func TestEpicScan(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeTestFile(t, fs, epicManifestsDir+"/abc.item",
		`{"DisplayName": "Hades", "InstallLocation": "C:/Epic/Hades"}`)
	writeTestFile(t, fs, epicManifestsDir+"/def.item",
		`{"DisplayName": "Uninstalled", "InstallLocation": "C:/Epic/Gone"}`)
	writeTestFile(t, fs, epicManifestsDir+"/broken.item", "{")
	writeTestFile(t, fs, "C:/Epic/Hades/Hades.exe", "x")

	s := NewEpicScanner(fs, NewResolver(fs, nil, 3), allowAll(), epicProgramData)
	found := s.Scan(context.Background())

	require.Len(t, found, 1)
	assert.Equal(t, "Hades", found[0].Name)
	assert.Equal(t, games.PlatformEpic, found[0].Platform)
	assert.Equal(t, "C:/Epic/Hades/Hades.exe", found[0].ExePath)
}

func TestEpicScanExclusionAndDedup(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeTestFile(t, fs, epicManifestsDir+"/a.item",
		`{"DisplayName": "Hades", "InstallLocation": "C:/Epic/Hades"}`)
	writeTestFile(t, fs, epicManifestsDir+"/b.item",
		`{"DisplayName": "Hades", "InstallLocation": "C:/Epic/Hades"}`)
	writeTestFile(t, fs, epicManifestsDir+"/c.item",
		`{"DisplayName": "Skipped", "InstallLocation": "C:/Epic/Skipped"}`)
	writeTestFile(t, fs, "C:/Epic/Hades/Hades.exe", "x")
	writeTestFile(t, fs, "C:/Epic/Skipped/Skipped.exe", "x")

	s := NewEpicScanner(fs, NewResolver(fs, nil, 3), excludeNames("Skipped"), epicProgramData)
	found := s.Scan(context.Background())

	require.Len(t, found, 1)
	assert.Equal(t, "Hades", found[0].Name)
}

func TestEpicScanNoManifests(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	s := NewEpicScanner(fs, NewResolver(fs, nil, 3), allowAll(), epicProgramData)
	assert.Empty(t, s.Scan(context.Background()))
}
