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

package monitor

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessInfo is one live process with a readable executable path.
type ProcessInfo struct {
	Exe string
	PID int32
}

// ProcessLister samples the OS process table. Processes whose
// executable path cannot be read are omitted, not errors.
type ProcessLister interface {
	List() ([]ProcessInfo, error)
}

type psutilLister struct{}

// NewProcessLister returns the live process table lister.
func NewProcessLister() ProcessLister {
	return psutilLister{}
}

func (psutilLister) List() ([]ProcessInfo, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("error listing processes: %w", err)
	}

	out := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		exe, exeErr := p.Exe()
		if exeErr != nil || exe == "" {
			// Process exited mid-enumeration or access denied.
			continue
		}
		out = append(out, ProcessInfo{PID: p.Pid, Exe: exe})
	}
	return out, nil
}
