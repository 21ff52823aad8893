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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

const SchemaVersion = 1

type Values struct {
	Monitor      Monitor `toml:"monitor,omitempty"`
	Twitch       Twitch  `toml:"twitch,omitempty"`
	Scanner      Scanner `toml:"scanner,omitempty"`
	ConfigSchema int     `toml:"config_schema"`
	DebugLogging bool    `toml:"debug_logging"`
}

type Monitor struct {
	// PollSeconds is the interval between process table samples.
	PollSeconds float64 `toml:"poll_seconds,omitempty"`
	// CloseDebounceSeconds is how long a game must stay gone from the
	// process table before it counts as closed. Observed installs use
	// anything from 5 to 30 seconds, so it is a setting rather than a
	// constant.
	CloseDebounceSeconds int `toml:"close_debounce_seconds,omitempty"`
}

type Twitch struct {
	Channel  string `toml:"channel,omitempty"`
	ClientID string `toml:"client_id,omitempty"`
	Enabled  bool   `toml:"enabled"`
}

type Scanner struct {
	// Overrides maps a lowercase title substring to a resolver override
	// rule, letting users special-case titles without a code change.
	Overrides map[string]Override `toml:"overrides,omitempty"`
	// ExtraDrives are drive roots scanned in addition to detected ones.
	ExtraDrives []string `toml:"extra_drives,omitempty,multiline"`
	// MaxDepth bounds recursive executable searches under install dirs.
	MaxDepth int `toml:"max_depth,omitempty"`
}

// Override is the user-configurable form of a resolver override rule.
type Override struct {
	RelPaths          []string `toml:"rel_paths,omitempty,multiline"`
	RequireSubstrings []string `toml:"require_substrings,omitempty"`
	ForbidSubstrings  []string `toml:"forbid_substrings,omitempty"`
	NoGenericFallback bool     `toml:"no_generic_fallback"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Monitor: Monitor{
		PollSeconds:          3.5,
		CloseDebounceSeconds: 30,
	},
	Scanner: Scanner{
		MaxDepth: 3,
	},
	Twitch: Twitch{
		ClientID: "ll2bpleltqt52whwzu4cidrthdgipj",
	},
}

type Instance struct {
	cfgPath string
	vals    Values
	mu      sync.RWMutex
}

//nolint:gocritic // defaults struct copied for immutability
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfg := Instance{
		cfgPath: filepath.Join(configDir, CfgFile),
		vals:    defaults,
	}

	if _, err := os.Stat(cfg.cfgPath); err == nil {
		if loadErr := cfg.Load(); loadErr != nil {
			return nil, fmt.Errorf("error loading config: %w", loadErr)
		}
	} else if errors.Is(err, fs.ErrNotExist) {
		log.Info().Msg("no config file found, writing defaults")
		if saveErr := cfg.Save(); saveErr != nil {
			return nil, fmt.Errorf("error saving default config: %w", saveErr)
		}
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	var newVals Values
	if err := toml.Unmarshal(data, &newVals); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}

	c.vals = newVals
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	if err := os.MkdirAll(filepath.Dir(c.cfgPath), 0o750); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("error marshalling config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

func (c *Instance) PollInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	secs := c.vals.Monitor.PollSeconds
	if secs <= 0 {
		secs = BaseDefaults.Monitor.PollSeconds
	}
	return time.Duration(secs * float64(time.Second))
}

func (c *Instance) CloseDebounce() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	secs := c.vals.Monitor.CloseDebounceSeconds
	if secs <= 0 {
		secs = BaseDefaults.Monitor.CloseDebounceSeconds
	}
	return time.Duration(secs) * time.Second
}

func (c *Instance) TwitchChannel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Twitch.Channel
}

func (c *Instance) TwitchClientID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Twitch.ClientID == "" {
		return BaseDefaults.Twitch.ClientID
	}
	return c.vals.Twitch.ClientID
}

func (c *Instance) TwitchEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Twitch.Enabled
}

func (c *Instance) SetTwitchEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Twitch.Enabled = enabled
}

func (c *Instance) ScannerMaxDepth() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Scanner.MaxDepth <= 0 {
		return BaseDefaults.Scanner.MaxDepth
	}
	return c.vals.Scanner.MaxDepth
}

func (c *Instance) ExtraDrives() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	drives := make([]string, len(c.vals.Scanner.ExtraDrives))
	copy(drives, c.vals.Scanner.ExtraDrives)
	return drives
}

func (c *Instance) ScannerOverrides() map[string]Override {
	c.mu.RLock()
	defer c.mu.RUnlock()
	overrides := make(map[string]Override, len(c.vals.Scanner.Overrides))
	for k, v := range c.vals.Scanner.Overrides {
		overrides[k] = v
	}
	return overrides
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}
