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
	"context"

	"github.com/GameChangerProject/gamechanger-core/pkg/games"
	"github.com/rs/zerolog/log"
)

// Aggregator runs every platform scanner and merges the results into
// one consistent game list. Scanner order is fixed, which also fixes
// index attribution for pathological overlapping installs.
type Aggregator struct {
	scanners []Scanner
}

func NewAggregator(scanners ...Scanner) *Aggregator {
	return &Aggregator{scanners: scanners}
}

// ScanAll runs all scanners and returns the merged snapshot. Games in
// prev tagged as manually added survive the rescan unless a platform
// scanner discovered a title of the same name (platform data wins) or
// they were excluded in between.
func (a *Aggregator) ScanAll(ctx context.Context, prev []games.Game) []games.Game {
	var manual []games.Game
	for i := range prev {
		if prev[i].Platform == games.PlatformOther {
			manual = append(manual, prev[i])
		}
	}

	var merged []games.Game
	for _, s := range a.scanners {
		if ctx.Err() != nil {
			log.Info().Msg("scan cancelled")
			break
		}
		found := s.Scan(ctx)
		log.Debug().
			Str("platform", string(s.Platform())).
			Int("games", len(found)).
			Msg("platform scan complete")
		merged = append(merged, found...)
	}

	for i := range manual {
		if !games.ContainsName(merged, manual[i].Name) {
			merged = append(merged, manual[i])
		}
	}

	log.Info().Int("games", len(merged)).Msg("library scan complete")
	return merged
}
