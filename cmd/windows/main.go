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

//go:build windows

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/GameChangerProject/gamechanger-core/pkg/config"
	"github.com/GameChangerProject/gamechanger-core/pkg/monitor"
	"github.com/GameChangerProject/gamechanger-core/pkg/scanner"
	"github.com/GameChangerProject/gamechanger-core/pkg/service"
	"github.com/GameChangerProject/gamechanger-core/pkg/twitch"
)

func main() {
	scanOnly := flag.Bool("scan", false, "scan game libraries, print the result and exit")
	exclude := flag.String("exclude", "", "exclude a game by name and exit")
	restore := flag.String("restore", "", "remove a game's exclusion and exit")
	listExcluded := flag.Bool("excluded", false, "list excluded games and exit")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", config.AppName, config.AppVersion)
		os.Exit(0)
	}

	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error creating data dir: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(dataDir, config.BaseDefaults)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	err = config.InitLogging(dataDir, cfg.DebugLogging(),
		[]io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}})
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}

	svc, err := newService(cfg, dataDir)
	if err != nil {
		log.Error().Msgf("error creating service: %s", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch {
	case *exclude != "":
		if err := svc.Exclude(ctx, *exclude); err != nil {
			log.Error().Msgf("error excluding game: %s", err)
			os.Exit(1)
		}
		fmt.Printf("Excluded: %s\n", *exclude)
		return
	case *restore != "":
		ok, err := svc.Restore(ctx, *restore)
		if err != nil {
			log.Error().Msgf("error restoring game: %s", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Printf("Not excluded: %s\n", *restore)
			os.Exit(1)
		}
		fmt.Printf("Restored: %s\n", *restore)
		return
	case *listExcluded:
		for _, name := range svc.Excluded() {
			fmt.Println(name)
		}
		return
	case *scanOnly:
		if err := svc.Rescan(ctx); err != nil {
			log.Error().Msgf("error scanning libraries: %s", err)
			os.Exit(1)
		}
		for _, g := range svc.Library() {
			fmt.Printf("[%s] %s\n", g.Platform, g.Name)
		}
		svc.Stop()
		return
	}

	if err := svc.Start(ctx); err != nil {
		log.Error().Msgf("error starting service: %s", err)
		fmt.Println("Error starting service:", err)
		os.Exit(1)
	}

	fmt.Printf("%s v%s watching for game launches\n", config.AppName, config.AppVersion)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	cancel()
	svc.Stop()
}

func newService(cfg *config.Instance, dataDir string) (*service.Service, error) {
	var action monitor.Action
	if cfg.TwitchEnabled() {
		tokens := twitch.NewFileTokenSource(afero.NewOsFs(), filepath.Join(dataDir, "tokens.json"))
		client := twitch.NewClient(cfg.TwitchClientID(), tokens)
		action = client.ChangeCategory
	} else {
		action = func(name string) bool {
			log.Info().Str("category", name).Msg("twitch disabled, skipping category change")
			return true
		}
	}

	return service.New(service.Options{
		Config:          cfg,
		DataDir:         dataDir,
		Registry:        scanner.NewWindowsRegistry(),
		Action:          action,
		Status:          func(msg string, _ monitor.StatusKind) { fmt.Println(msg) },
		WatchExclusions: true,
	})
}
