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

// Package service assembles the scanners, the executable index and the
// process monitor into one long-running unit, and keeps the monitor in
// sync with the game cache and exclusion list.
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/GameChangerProject/gamechanger-core/pkg/config"
	"github.com/GameChangerProject/gamechanger-core/pkg/games"
	"github.com/GameChangerProject/gamechanger-core/pkg/monitor"
	"github.com/GameChangerProject/gamechanger-core/pkg/scanner"
)

// nullRegistry answers every read with an error, so registry-backed
// scanners behave as "platform not installed" when no registry is
// available.
type nullRegistry struct{}

func (nullRegistry) CurrentUserValue(string, string) (string, error) {
	return "", errors.New("registry not available")
}

func (nullRegistry) LocalMachineSubkeys(string) ([]string, error) {
	return nil, errors.New("registry not available")
}

func (nullRegistry) LocalMachineValue(string, string) (string, error) {
	return "", errors.New("registry not available")
}

// Options carries the injectable pieces of a Service. Zero values get
// production defaults; tests swap in fakes.
type Options struct {
	Config  *config.Instance
	DataDir string

	Fs       afero.Fs
	Registry scanner.Registry
	Drives   scanner.DriveLister
	Lister   monitor.ProcessLister
	Clock    clockwork.Clock
	Action   monitor.Action
	Status   monitor.StatusFunc

	// ProgramData overrides the launcher metadata root, normally
	// C:/ProgramData.
	ProgramData string

	// WatchExclusions enables the filesystem watch that reloads the
	// exclusion list when it changes on disk.
	WatchExclusions bool
}

// Service owns the scan/index/monitor lifecycle.
type Service struct {
	cfg    *config.Instance
	fs     afero.Fs
	clock  clockwork.Clock
	action monitor.Action
	status monitor.StatusFunc

	exclusions *games.Exclusions
	store      *games.Store
	aggregator *scanner.Aggregator
	monitor    *monitor.Monitor
	watcher    *fsnotify.Watcher

	exclusionsPath string

	mu      sync.Mutex
	library []games.Game
	started bool
}

func New(opts Options) (*Service, error) {
	if opts.Config == nil {
		return nil, errors.New("config instance required")
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Lister == nil {
		opts.Lister = monitor.NewProcessLister()
	}
	if opts.Action == nil {
		opts.Action = func(string) bool { return true }
	}
	if opts.ProgramData == "" {
		opts.ProgramData = "C:/ProgramData"
	}
	if opts.Drives == nil {
		opts.Drives = scanner.NewDriveLister(opts.Fs, opts.Config.ExtraDrives())
	}
	if opts.Registry == nil {
		opts.Registry = nullRegistry{}
	}

	overrides := mergedOverrides(opts.Config)
	resolver := scanner.NewResolver(opts.Fs, overrides, opts.Config.ScannerMaxDepth())

	exclusionsPath := filepath.Join(opts.DataDir, config.ExclusionsFile)
	excl := games.LoadExclusions(opts.Fs, exclusionsPath)
	store := games.NewStore(opts.Fs, filepath.Join(opts.DataDir, config.GamesCacheFile))

	agg := scanner.NewAggregator(
		scanner.NewSteamScanner(opts.Fs, opts.Registry, resolver, excl),
		scanner.NewEpicScanner(opts.Fs, resolver, excl, opts.ProgramData),
		scanner.NewGOGScanner(opts.Fs, opts.Registry, excl),
		scanner.NewRiotScanner(opts.Fs, resolver, excl, opts.ProgramData),
		scanner.NewBattleNetScanner(opts.Fs, opts.Drives, excl),
		scanner.NewXboxScanner(opts.Fs, opts.Drives, excl),
		scanner.NewGenericScanner(opts.Fs, opts.Drives, resolver, excl),
	)

	svc := &Service{
		cfg:            opts.Config,
		fs:             opts.Fs,
		clock:          opts.Clock,
		action:         opts.Action,
		status:         opts.Status,
		exclusions:     excl,
		store:          store,
		aggregator:     agg,
		exclusionsPath: exclusionsPath,
	}
	svc.monitor = monitor.New(monitor.Options{
		Fs:            opts.Fs,
		Lister:        opts.Lister,
		Clock:         opts.Clock,
		Action:        opts.Action,
		Status:        opts.Status,
		Overrides:     overrides,
		PollInterval:  opts.Config.PollInterval(),
		CloseDebounce: opts.Config.CloseDebounce(),
	})

	if opts.WatchExclusions {
		if err := svc.watchExclusions(); err != nil {
			log.Warn().Err(err).Msg("exclusion watch unavailable")
		}
	}
	return svc, nil
}

// mergedOverrides layers user configuration over the built-in
// executable override table. User entries win on key collision.
func mergedOverrides(cfg *config.Instance) scanner.Overrides {
	merged := scanner.DefaultOverrides()
	for name, o := range cfg.ScannerOverrides() {
		merged[name] = scanner.OverrideRule{
			RelPaths:          o.RelPaths,
			RequireSubstrings: o.RequireSubstrings,
			ForbidSubstrings:  o.ForbidSubstrings,
			NoGenericFallback: o.NoGenericFallback,
		}
	}
	return merged
}

// Start loads the cached library, begins monitoring it immediately and
// kicks off a background rescan so the cache freshens without delaying
// startup.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("service already started")
	}
	s.started = true
	s.mu.Unlock()

	cached, err := s.store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("game cache unreadable, starting empty")
	}
	s.setLibrary(cached)

	if len(cached) > 0 {
		if err := s.monitor.Start(cached); err != nil {
			return fmt.Errorf("error starting monitor: %w", err)
		}
		log.Info().Int("games", len(cached)).Msg("monitoring cached library")
	}

	go func() {
		if err := s.Rescan(ctx); err != nil {
			log.Error().Err(err).Msg("initial library scan failed")
		}
	}()
	return nil
}

// Rescan walks every platform, persists the merged library and
// restarts the monitor on the fresh snapshot.
func (s *Service) Rescan(ctx context.Context) error {
	s.mu.Lock()
	prev := s.library
	s.mu.Unlock()

	found := s.aggregator.ScanAll(ctx, prev)
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.store.Save(found); err != nil {
		log.Warn().Err(err).Msg("failed to persist game cache")
	}
	s.setLibrary(found)
	log.Info().Int("games", len(found)).Msg("library scan complete")

	return s.restartMonitor(found)
}

func (s *Service) restartMonitor(list []games.Game) error {
	s.monitor.Stop()
	if len(list) == 0 {
		return nil
	}
	if err := s.monitor.Start(list); err != nil {
		return fmt.Errorf("error restarting monitor: %w", err)
	}
	return nil
}

// Exclude hides a game from monitoring and future scans, then rebuilds
// the monitor without it.
func (s *Service) Exclude(ctx context.Context, name string) error {
	s.exclusions.Exclude(name)

	s.mu.Lock()
	var kept []games.Game
	for _, g := range s.library {
		if !games.NamesEqual(g.Name, name) {
			kept = append(kept, g)
		}
	}
	s.library = kept
	s.mu.Unlock()

	if err := s.store.Save(kept); err != nil {
		log.Warn().Err(err).Msg("failed to persist game cache")
	}
	return s.restartMonitor(kept)
}

// Restore removes a user exclusion and rescans so the game reappears.
// Returns false if the name was not excluded.
func (s *Service) Restore(ctx context.Context, name string) (bool, error) {
	if !s.exclusions.Restore(name) {
		return false, nil
	}
	return true, s.Rescan(ctx)
}

// Excluded lists the user's current exclusions.
func (s *Service) Excluded() []string {
	return s.exclusions.List()
}

// Library returns the current game snapshot.
func (s *Service) Library() []games.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]games.Game, len(s.library))
	copy(out, s.library)
	return out
}

func (s *Service) setLibrary(list []games.Game) {
	s.mu.Lock()
	s.library = list
	s.mu.Unlock()
}

// watchExclusions reloads the exclusion file when an external editor
// rewrites it. The parent directory is watched because editors often
// replace the file rather than write in place.
func (s *Service) watchExclusions() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.exclusionsPath)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("error watching data dir: %w", err)
	}
	s.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != config.ExclusionsFile {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := s.exclusions.Reload(); err != nil {
					log.Warn().Err(err).Msg("failed to reload exclusions")
					continue
				}
				log.Info().Msg("exclusion list reloaded")
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("exclusion watch error")
			}
		}
	}()
	return nil
}

// Stop shuts down the monitor and the exclusion watch.
func (s *Service) Stop() {
	s.monitor.Stop()
	if s.watcher != nil {
		_ = s.watcher.Close()
		s.watcher = nil
	}
	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
}
