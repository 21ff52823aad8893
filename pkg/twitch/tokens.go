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

package twitch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// FileTokenSource stores the OAuth token pair as JSON on disk. The
// file is created with owner-only permissions since it holds
// credentials.
type FileTokenSource struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

func NewFileTokenSource(fs afero.Fs, path string) *FileTokenSource {
	return &FileTokenSource{fs: fs, path: path}
}

type tokenFile struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Tokens reads the stored pair. A missing file yields empty tokens
// rather than an error so first runs work without setup.
func (s *FileTokenSource) Tokens() (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", nil
		}
		return "", "", fmt.Errorf("error reading token file: %w", err)
	}

	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return "", "", fmt.Errorf("error parsing token file: %w", err)
	}
	return tf.AccessToken, tf.RefreshToken, nil
}

func (s *FileTokenSource) Update(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("error creating token dir: %w", err)
	}
	data, err := json.MarshalIndent(tokenFile{
		AccessToken:  access,
		RefreshToken: refresh,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding tokens: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o600); err != nil {
		return fmt.Errorf("error writing token file: %w", err)
	}
	return nil
}
