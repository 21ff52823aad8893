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

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GameChangerProject/gamechanger-core/pkg/config"
	"github.com/GameChangerProject/gamechanger-core/pkg/games"
	"github.com/GameChangerProject/gamechanger-core/pkg/monitor"
	"github.com/GameChangerProject/gamechanger-core/pkg/scanner"
)

type stubRegistry struct {
	steamPath string
}

func (s *stubRegistry) CurrentUserValue(key, name string) (string, error) {
	if s.steamPath != "" && name == "SteamPath" {
		return s.steamPath, nil
	}
	return "", errors.New("value not found")
}

func (*stubRegistry) LocalMachineSubkeys(string) ([]string, error) {
	return nil, errors.New("key not found")
}

func (*stubRegistry) LocalMachineValue(string, string) (string, error) {
	return "", errors.New("value not found")
}

type stubLister struct{}

func (stubLister) List() ([]monitor.ProcessInfo, error) { return nil, nil }

func writeSteamFixture(t *testing.T, fs afero.Fs) {
	t.Helper()
	manifest := `"AppState"
{
	"appid"		"1145360"
	"name"		"Hades"
	"installdir"		"Hades"
}
`
	require.NoError(t, afero.WriteFile(fs,
		"C:/Steam/steamapps/appmanifest_1145360.acf", []byte(manifest), 0o644))
	require.NoError(t, afero.WriteFile(fs,
		"C:/Steam/steamapps/common/Hades/Hades.exe", []byte("x"), 0o644))
}

func newTestService(t *testing.T, fs afero.Fs) *Service {
	t.Helper()
	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	svc, err := New(Options{
		Config:   cfg,
		DataDir:  "/data",
		Fs:       fs,
		Registry: &stubRegistry{steamPath: "C:/Steam"},
		Drives:   scanner.StaticDrives{},
		Lister:   stubLister{},
		Clock:    clockwork.NewFakeClock(),
	})
	require.NoError(t, err)
	return svc
}

func TestRescanPopulatesLibraryAndCache(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeSteamFixture(t, fs)
	svc := newTestService(t, fs)
	defer svc.Stop()

	require.NoError(t, svc.Rescan(context.Background()))

	lib := svc.Library()
	require.Len(t, lib, 1)
	assert.Equal(t, "Hades", lib[0].Name)
	assert.Equal(t, games.PlatformSteam, lib[0].Platform)

	cached, err := games.NewStore(fs, "/data/"+config.GamesCacheFile).Load()
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "Hades", cached[0].Name)
}

func TestStartMonitorsCachedLibraryImmediately(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeSteamFixture(t, fs)
	require.NoError(t, games.NewStore(fs, "/data/"+config.GamesCacheFile).Save([]games.Game{
		{Name: "Hades", InstallPath: "C:/Steam/steamapps/common/Hades",
			Platform: games.PlatformSteam,
			ExePath:  "C:/Steam/steamapps/common/Hades/Hades.exe"},
	}))

	svc := newTestService(t, fs)
	defer svc.Stop()

	require.NoError(t, svc.Start(context.Background()))
	require.Len(t, svc.Library(), 1)

	// The background rescan lands eventually and keeps the library
	// intact.
	assert.Eventually(t, func() bool {
		lib := svc.Library()
		return len(lib) == 1 && lib[0].Name == "Hades"
	}, 2*time.Second, 10*time.Millisecond)

	require.Error(t, svc.Start(context.Background()), "double start must fail")
}

func TestExcludeRemovesGame(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeSteamFixture(t, fs)
	svc := newTestService(t, fs)
	defer svc.Stop()

	require.NoError(t, svc.Rescan(context.Background()))
	require.Len(t, svc.Library(), 1)

	require.NoError(t, svc.Exclude(context.Background(), "Hades"))
	assert.Empty(t, svc.Library())
	assert.Equal(t, []string{"hades"}, svc.Excluded())

	// Rescans keep honoring the exclusion.
	require.NoError(t, svc.Rescan(context.Background()))
	assert.Empty(t, svc.Library())
}

func TestRestoreBringsGameBack(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeSteamFixture(t, fs)
	svc := newTestService(t, fs)
	defer svc.Stop()

	require.NoError(t, svc.Rescan(context.Background()))
	require.NoError(t, svc.Exclude(context.Background(), "Hades"))

	ok, err := svc.Restore(context.Background(), "Hades")
	require.NoError(t, err)
	require.True(t, ok)

	lib := svc.Library()
	require.Len(t, lib, 1)
	assert.Equal(t, "Hades", lib[0].Name)

	ok, err = svc.Restore(context.Background(), "Never Excluded")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManualEntriesSurviveRescan(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeSteamFixture(t, fs)
	require.NoError(t, afero.WriteFile(fs, "C:/Custom/custom.exe", []byte("x"), 0o644))
	require.NoError(t, games.NewStore(fs, "/data/"+config.GamesCacheFile).Save([]games.Game{
		{Name: "My Custom Game", InstallPath: "C:/Custom",
			Platform: games.PlatformOther, ExePath: "C:/Custom/custom.exe"},
	}))

	svc := newTestService(t, fs)
	defer svc.Stop()

	require.NoError(t, svc.Start(context.Background()))
	assert.Eventually(t, func() bool {
		return len(svc.Library()) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, games.ContainsName(svc.Library(), "My Custom Game"))
	assert.True(t, games.ContainsName(svc.Library(), "Hades"))
}
