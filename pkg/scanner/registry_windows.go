//go:build windows

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
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// WindowsRegistry reads the live Windows registry.
type WindowsRegistry struct{}

func NewWindowsRegistry() *WindowsRegistry {
	return &WindowsRegistry{}
}

func (*WindowsRegistry) CurrentUserValue(key, name string) (string, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, key, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("open HKCU %s: %w", key, err)
	}
	defer func() { _ = k.Close() }()

	val, _, err := k.GetStringValue(name)
	if err != nil {
		return "", fmt.Errorf("read HKCU %s\\%s: %w", key, name, err)
	}
	return val, nil
}

func (*WindowsRegistry) LocalMachineSubkeys(key string) ([]string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, key, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return nil, fmt.Errorf("open HKLM %s: %w", key, err)
	}
	defer func() { _ = k.Close() }()

	names, err := k.ReadSubKeyNames(-1)
	if err != nil {
		return nil, fmt.Errorf("enumerate HKLM %s: %w", key, err)
	}
	return names, nil
}

func (*WindowsRegistry) LocalMachineValue(key, name string) (string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, key, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("open HKLM %s: %w", key, err)
	}
	defer func() { _ = k.Close() }()

	val, _, err := k.GetStringValue(name)
	if err != nil {
		return "", fmt.Errorf("read HKLM %s\\%s: %w", key, name, err)
	}
	return val, nil
}
