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
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/GameChangerProject/gamechanger-core/pkg/games"
)

type fakeLister struct {
	mu    sync.Mutex
	procs []ProcessInfo
	err   error
}

func (f *fakeLister) List() ([]ProcessInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]ProcessInfo, len(f.procs))
	copy(out, f.procs)
	return out, nil
}

func (f *fakeLister) set(procs ...ProcessInfo) {
	f.mu.Lock()
	f.procs = procs
	f.mu.Unlock()
}

func (f *fakeLister) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// actionRecorder collects category changes from the monitor's
// dispatch goroutines.
type actionRecorder struct {
	ch chan string
}

func newActionRecorder() *actionRecorder {
	return &actionRecorder{ch: make(chan string, 16)}
}

func (a *actionRecorder) act(name string) bool {
	a.ch <- name
	return true
}

func (a *actionRecorder) next(t *testing.T) string {
	t.Helper()
	select {
	case name := <-a.ch:
		return name
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for category change")
		return ""
	}
}

func (a *actionRecorder) expectNone(t *testing.T) {
	t.Helper()
	select {
	case name := <-a.ch:
		t.Fatalf("unexpected category change: %s", name)
	case <-time.After(100 * time.Millisecond):
	}
}

func testLibraryFs(t *testing.T) (afero.Fs, []games.Game) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs,
		"C:/Games/Elden Ring/eldenring.exe", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs,
		"C:/Games/Hades/Hades.exe", []byte("x"), 0o644))
	list := []games.Game{
		{Name: "Elden Ring", InstallPath: "C:/Games/Elden Ring",
			Platform: games.PlatformSteam, ExePath: "C:/Games/Elden Ring/eldenring.exe"},
		{Name: "Hades", InstallPath: "C:/Games/Hades",
			Platform: games.PlatformEpic, ExePath: "C:/Games/Hades/Hades.exe"},
	}
	return fs, list
}

// advance moves the fake clock one poll interval and waits for the
// loop to come back to its timer, so the cycle it triggered has
// completed.
func advance(t *testing.T, clock *clockwork.FakeClock, d time.Duration) {
	t.Helper()
	clock.Advance(d)
	clock.BlockUntil(1)
}

func startMonitor(t *testing.T, fs afero.Fs, list []games.Game,
	lister *fakeLister, rec *actionRecorder,
) (*Monitor, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	m := New(Options{
		Fs:            fs,
		Lister:        lister,
		Clock:         clock,
		Action:        rec.act,
		PollInterval:  time.Second,
		CloseDebounce: 3 * time.Second,
	})
	require.NoError(t, m.Start(list))
	// First cycle runs on start; wait for the loop to reach its timer.
	clock.BlockUntil(1)
	return m, clock
}

func TestLaunchFiresOncePerGame(t *testing.T) {
	defer goleak.VerifyNone(t)

	fs, list := testLibraryFs(t)
	lister := &fakeLister{}
	rec := newActionRecorder()
	m, clock := startMonitor(t, fs, list, lister, rec)
	defer m.Stop()

	lister.set(ProcessInfo{Exe: "C:/Games/Elden Ring/eldenring.exe", PID: 100})
	advance(t, clock, time.Second)
	assert.Equal(t, "Elden Ring", rec.next(t))

	// A second process with the same executable does not re-fire.
	lister.set(
		ProcessInfo{Exe: "C:/Games/Elden Ring/eldenring.exe", PID: 100},
		ProcessInfo{Exe: "C:/Games/Elden Ring/eldenring.exe", PID: 101},
	)
	advance(t, clock, time.Second)
	rec.expectNone(t)

	// Neither do further polls with the same process set.
	advance(t, clock, time.Second)
	rec.expectNone(t)
}

func TestLookupIsCaseAndSlashInsensitive(t *testing.T) {
	defer goleak.VerifyNone(t)

	fs, list := testLibraryFs(t)
	lister := &fakeLister{}
	rec := newActionRecorder()
	m, clock := startMonitor(t, fs, list, lister, rec)
	defer m.Stop()

	lister.set(ProcessInfo{Exe: `C:\GAMES\ELDEN RING\ELDENRING.EXE`, PID: 42})
	advance(t, clock, time.Second)
	assert.Equal(t, "Elden Ring", rec.next(t))
}

func TestCloseDebounce(t *testing.T) {
	defer goleak.VerifyNone(t)

	fs, list := testLibraryFs(t)
	lister := &fakeLister{}
	rec := newActionRecorder()
	m, clock := startMonitor(t, fs, list, lister, rec)
	defer m.Stop()

	lister.set(ProcessInfo{Exe: "C:/Games/Hades/Hades.exe", PID: 7})
	advance(t, clock, time.Second)
	require.Equal(t, "Hades", rec.next(t))

	// Process gone: the close must wait out the debounce window.
	lister.set()
	advance(t, clock, time.Second)
	rec.expectNone(t)
	advance(t, clock, time.Second)
	advance(t, clock, time.Second)
	rec.expectNone(t)

	// Debounce elapsed on this cycle.
	advance(t, clock, time.Second)
	assert.Equal(t, JustChatting, rec.next(t))

	// Exactly once.
	advance(t, clock, time.Second)
	rec.expectNone(t)
}

func TestRelaunchWithinDebounceCancelsClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	fs, list := testLibraryFs(t)
	lister := &fakeLister{}
	rec := newActionRecorder()
	m, clock := startMonitor(t, fs, list, lister, rec)
	defer m.Stop()

	lister.set(ProcessInfo{Exe: "C:/Games/Hades/Hades.exe", PID: 7})
	advance(t, clock, time.Second)
	require.Equal(t, "Hades", rec.next(t))

	lister.set()
	advance(t, clock, time.Second)
	rec.expectNone(t)

	// Back before the debounce expires: treated as a fresh launch, no
	// close ever fires.
	lister.set(ProcessInfo{Exe: "C:/Games/Hades/Hades.exe", PID: 8})
	advance(t, clock, time.Second)
	assert.Equal(t, "Hades", rec.next(t))

	for i := 0; i < 5; i++ {
		advance(t, clock, time.Second)
	}
	rec.expectNone(t)
}

func TestTwoGamesTrackIndependently(t *testing.T) {
	defer goleak.VerifyNone(t)

	fs, list := testLibraryFs(t)
	lister := &fakeLister{}
	rec := newActionRecorder()
	m, clock := startMonitor(t, fs, list, lister, rec)
	defer m.Stop()

	lister.set(ProcessInfo{Exe: "C:/Games/Elden Ring/eldenring.exe", PID: 1})
	advance(t, clock, time.Second)
	require.Equal(t, "Elden Ring", rec.next(t))

	lister.set(
		ProcessInfo{Exe: "C:/Games/Elden Ring/eldenring.exe", PID: 1},
		ProcessInfo{Exe: "C:/Games/Hades/Hades.exe", PID: 2},
	)
	advance(t, clock, time.Second)
	assert.Equal(t, "Hades", rec.next(t))

	// Hades exits, Elden Ring stays. The close still debounces and
	// still flips to Just Chatting, matching per-game transitions.
	lister.set(ProcessInfo{Exe: "C:/Games/Elden Ring/eldenring.exe", PID: 1})
	for i := 0; i < 4; i++ {
		advance(t, clock, time.Second)
	}
	assert.Equal(t, JustChatting, rec.next(t))
}

func TestListerErrorSkipsCycle(t *testing.T) {
	defer goleak.VerifyNone(t)

	fs, list := testLibraryFs(t)
	lister := &fakeLister{}
	rec := newActionRecorder()
	m, clock := startMonitor(t, fs, list, lister, rec)
	defer m.Stop()

	lister.set(ProcessInfo{Exe: "C:/Games/Hades/Hades.exe", PID: 7})
	lister.fail(errors.New("access denied"))
	advance(t, clock, time.Second)
	rec.expectNone(t)

	// Recovery on the next sample.
	lister.fail(nil)
	advance(t, clock, time.Second)
	assert.Equal(t, "Hades", rec.next(t))
}

func TestStartTwiceErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	fs, list := testLibraryFs(t)
	lister := &fakeLister{}
	rec := newActionRecorder()
	m, _ := startMonitor(t, fs, list, lister, rec)
	defer m.Stop()

	require.Error(t, m.Start(list))
}

func TestStopClearsStateAndRestarts(t *testing.T) {
	defer goleak.VerifyNone(t)

	fs, list := testLibraryFs(t)
	lister := &fakeLister{}
	rec := newActionRecorder()
	m, clock := startMonitor(t, fs, list, lister, rec)

	lister.set(ProcessInfo{Exe: "C:/Games/Hades/Hades.exe", PID: 7})
	advance(t, clock, time.Second)
	require.Equal(t, "Hades", rec.next(t))

	m.Stop()
	assert.False(t, m.Active())

	// Restart from a clean slate: the same still-running process is a
	// fresh launch again.
	require.NoError(t, m.Start(list))
	clock.BlockUntil(1)
	defer m.Stop()

	assert.True(t, m.Active())
	assert.Equal(t, "Hades", rec.next(t))
}

func TestStatusCallbacks(t *testing.T) {
	defer goleak.VerifyNone(t)

	fs, list := testLibraryFs(t)
	lister := &fakeLister{}
	rec := newActionRecorder()

	var statusMu sync.Mutex
	var messages []string
	var kinds []StatusKind

	clock := clockwork.NewFakeClock()
	m := New(Options{
		Fs:     fs,
		Lister: lister,
		Clock:  clock,
		Action: rec.act,
		Status: func(msg string, kind StatusKind) {
			statusMu.Lock()
			messages = append(messages, msg)
			kinds = append(kinds, kind)
			statusMu.Unlock()
		},
		PollInterval:  time.Second,
		CloseDebounce: 2 * time.Second,
	})
	require.NoError(t, m.Start(list))
	clock.BlockUntil(1)
	defer m.Stop()

	lister.set(ProcessInfo{Exe: "C:/Games/Hades/Hades.exe", PID: 7})
	advance(t, clock, time.Second)
	require.Equal(t, "Hades", rec.next(t))

	lister.set()
	for i := 0; i < 3; i++ {
		advance(t, clock, time.Second)
	}
	require.Equal(t, JustChatting, rec.next(t))

	statusMu.Lock()
	defer statusMu.Unlock()
	require.Equal(t, []string{"Hades detected", "Hades closed"}, messages)
	require.Equal(t, []StatusKind{StatusLaunch, StatusClose}, kinds)
}
