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
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/GameChangerProject/gamechanger-core/pkg/games"
)

var errRegValueMissing = errors.New("registry value not found")

// fakeRegistry serves canned registry reads for scanner tests.
type fakeRegistry struct {
	cuValues  map[string]map[string]string
	lmValues  map[string]map[string]string
	lmSubkeys map[string][]string
}

func (f *fakeRegistry) CurrentUserValue(key, name string) (string, error) {
	if vals, ok := f.cuValues[key]; ok {
		if v, ok := vals[name]; ok {
			return v, nil
		}
	}
	return "", errRegValueMissing
}

func (f *fakeRegistry) LocalMachineSubkeys(key string) ([]string, error) {
	if subs, ok := f.lmSubkeys[key]; ok {
		return subs, nil
	}
	return nil, errRegValueMissing
}

func (f *fakeRegistry) LocalMachineValue(key, name string) (string, error) {
	if vals, ok := f.lmValues[key]; ok {
		if v, ok := vals[name]; ok {
			return v, nil
		}
	}
	return "", errRegValueMissing
}

type exclusionFunc func(name string) bool

func (f exclusionFunc) IsExcluded(name string) bool { return f(name) }

func allowAll() exclusionFunc {
	return func(string) bool { return false }
}

func excludeNames(names ...string) exclusionFunc {
	return func(name string) bool {
		for _, n := range names {
			if strings.EqualFold(n, name) {
				return true
			}
		}
		return false
	}
}

func writeTestFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func gameNames(list []games.Game) []string {
	names := make([]string, 0, len(list))
	for _, g := range list {
		names = append(names, g.Name)
	}
	return names
}
