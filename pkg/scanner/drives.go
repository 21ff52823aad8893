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
	"github.com/spf13/afero"
)

// letterDrives probes every drive letter and returns the roots that
// exist, plus any configured extras.
type letterDrives struct {
	fs    afero.Fs
	extra []string
}

// NewDriveLister creates the default drive lister. extra roots are
// appended to whatever letters respond.
func NewDriveLister(fsys afero.Fs, extra []string) DriveLister {
	return &letterDrives{fs: fsys, extra: extra}
}

func (d *letterDrives) Drives() []string {
	var drives []string
	for letter := 'A'; letter <= 'Z'; letter++ {
		root := string(letter) + `:\`
		if ok, err := afero.DirExists(d.fs, root); err == nil && ok {
			drives = append(drives, root)
		}
	}
	for _, root := range d.extra {
		if ok, err := afero.DirExists(d.fs, root); err == nil && ok {
			drives = append(drives, root)
		}
	}
	return drives
}

// StaticDrives is a fixed drive list, used by tests and configs that
// pin scan roots explicitly.
type StaticDrives []string

func (s StaticDrives) Drives() []string {
	return s
}
