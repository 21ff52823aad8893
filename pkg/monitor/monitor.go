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
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GameChangerProject/gamechanger-core/pkg/games"
	"github.com/GameChangerProject/gamechanger-core/pkg/scanner"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// JustChatting is the sentinel category name sent when no tracked game
// is running anymore.
const JustChatting = "Just Chatting"

// Action changes the stream category. Called fire-and-forget from the
// polling loop; failures are reported, never retried within the same
// transition.
type Action func(gameName string) bool

// StatusKind classifies a status callback event.
type StatusKind int

const (
	StatusLaunch StatusKind = iota
	StatusClose
)

// StatusFunc receives a line per detected transition, for UI display.
// Must not block.
type StatusFunc func(message string, kind StatusKind)

// Options configures a Monitor.
type Options struct {
	Fs        afero.Fs
	Lister    ProcessLister
	Clock     clockwork.Clock
	Action    Action
	Status    StatusFunc
	Overrides scanner.Overrides
	// PollInterval is the process table sampling period.
	PollInterval time.Duration
	// CloseDebounce is how long a game must stay gone before its close
	// transition fires.
	CloseDebounce time.Duration
}

// Monitor polls the process table, tracks per-game running state and
// invokes the category-change action exactly once per transition.
//
// Per-game states: Idle -> Running (first tracked PID) -> PendingClose
// (all PIDs gone, debounce running) -> Idle (debounce elapsed, close
// fired) or back to Running (a process reappeared in time).
type Monitor struct {
	fs        afero.Fs
	lister    ProcessLister
	clock     clockwork.Clock
	action    Action
	status    StatusFunc
	overrides scanner.Overrides

	pollInterval  time.Duration
	closeDebounce time.Duration

	mu     sync.Mutex
	active bool
	stop   chan struct{}
	done   chan struct{}

	// Owned exclusively by the polling goroutine while active.
	index        Index
	trackedPIDs  map[int32]string
	pendingClose map[string]time.Time
}

func New(opts Options) *Monitor {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 3500 * time.Millisecond
	}
	if opts.CloseDebounce <= 0 {
		opts.CloseDebounce = 30 * time.Second
	}
	if opts.Status == nil {
		opts.Status = func(string, StatusKind) {}
	}
	if opts.Overrides == nil {
		opts.Overrides = scanner.DefaultOverrides()
	}
	return &Monitor{
		fs:            opts.Fs,
		lister:        opts.Lister,
		clock:         opts.Clock,
		action:        opts.Action,
		status:        opts.Status,
		overrides:     opts.Overrides,
		pollInterval:  opts.PollInterval,
		closeDebounce: opts.CloseDebounce,
	}
}

// Start builds the executable index from the game list snapshot and
// launches the polling loop. The snapshot is fixed for the monitor run:
// library changes take effect on the next Start.
func (m *Monitor) Start(list []games.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active {
		return errors.New("monitor already running")
	}

	m.index = BuildIndex(m.fs, list, m.overrides)
	m.trackedPIDs = make(map[int32]string)
	m.pendingClose = make(map[string]time.Time)
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	m.active = true

	go m.run(m.stop, m.done)

	log.Info().Int("indexed", len(m.index)).Msg("process monitor started")
	return nil
}

// Stop halts the polling loop and clears all per-run state. Observable
// within one poll interval. A later Start begins from a clean slate.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	stop, done := m.stop, m.done
	m.active = false
	m.mu.Unlock()

	close(stop)
	<-done

	m.mu.Lock()
	m.trackedPIDs = nil
	m.pendingClose = nil
	m.mu.Unlock()

	log.Info().Msg("process monitor stopped")
}

// Active reports whether the polling loop is running.
func (m *Monitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

func (m *Monitor) run(stop, done chan struct{}) {
	defer close(done)
	for {
		m.cycle()
		select {
		case <-stop:
			return
		case <-m.clock.After(m.pollInterval):
		}
	}
}

// cycle runs one poll: sample processes, detect launches, detect
// vanished processes, and expire the close debounce. Any per-process
// failure skips that process; a failed sample skips the whole cycle.
func (m *Monitor) cycle() {
	procs, err := m.lister.List()
	if err != nil {
		log.Warn().Err(err).Msg("process enumeration failed, skipping cycle")
		return
	}

	live := make(map[int32]struct{}, len(procs))
	seen := make(map[string]struct{})

	for _, p := range procs {
		live[p.PID] = struct{}{}

		name, ok := m.index.Lookup(p.Exe)
		if !ok {
			continue
		}
		seen[name] = struct{}{}
		delete(m.pendingClose, name)

		if _, tracked := m.trackedPIDs[p.PID]; tracked {
			continue
		}
		m.trackedPIDs[p.PID] = name
		if m.trackedCount(name) == 1 {
			// First process for this game: the launch transition.
			// Additional PIDs sharing the executable are tracked but
			// do not re-fire.
			m.fireAction(name)
			m.status(fmt.Sprintf("%s detected", name), StatusLaunch)
			log.Info().Str("game", name).Int32("pid", p.PID).Msg("game launched")
		}
	}

	for pid, name := range m.trackedPIDs {
		if _, stillLive := live[pid]; stillLive {
			continue
		}
		delete(m.trackedPIDs, pid)
		if m.trackedCount(name) > 0 {
			continue
		}
		if _, reseen := seen[name]; reseen {
			continue
		}
		if _, pending := m.pendingClose[name]; !pending {
			m.pendingClose[name] = m.clock.Now()
			log.Debug().Str("game", name).Msg("game process gone, debouncing close")
		}
	}

	now := m.clock.Now()
	for name, since := range m.pendingClose {
		if now.Sub(since) < m.closeDebounce {
			continue
		}
		delete(m.pendingClose, name)
		m.fireAction(JustChatting)
		m.status(fmt.Sprintf("%s closed", name), StatusClose)
		log.Info().Str("game", name).Msg("game closed")
	}
}

func (m *Monitor) trackedCount(name string) int {
	count := 0
	for _, tracked := range m.trackedPIDs {
		if tracked == name {
			count++
		}
	}
	return count
}

// fireAction dispatches the category change without blocking the loop:
// a slow or hanging external call must never stall the next sample.
func (m *Monitor) fireAction(name string) {
	if m.action == nil {
		return
	}
	go func() {
		if !m.action(name) {
			log.Warn().Str("target", name).Msg("category change failed")
		}
	}()
}
