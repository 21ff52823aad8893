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
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// skipPatterns excludes obvious non-game executables: installers,
// uninstallers, crash reporters and redistributable payloads.
var skipPatterns = []string{
	"unins", "install", "setup", "crash", "report",
	"redist", "dotnet", "directx", "vcredist", "unity", "unreal",
}

// OverrideRule special-cases a title whose real executable diverges from
// every generic heuristic: a shipping binary named after a product
// codename, or a launcher/client split where only the non-launcher
// binary counts as running.
type OverrideRule struct {
	// RelPaths are candidate paths relative to the install root, tried
	// in order.
	RelPaths []string
	// RequireSubstrings must all appear in a candidate filename
	// (case-insensitive) for it to be accepted.
	RequireSubstrings []string
	// ForbidSubstrings reject a candidate filename when any appears.
	ForbidSubstrings []string
	// NoGenericFallback stops the resolver falling through to generic
	// heuristics when the override yields nothing. Set for titles where
	// the generic scan would re-select a launcher.
	NoGenericFallback bool
}

// Allows reports whether an executable filename satisfies the rule.
func (r *OverrideRule) Allows(filename string) bool {
	name := strings.ToLower(filename)
	for _, req := range r.RequireSubstrings {
		if !strings.Contains(name, strings.ToLower(req)) {
			return false
		}
	}
	for _, forbid := range r.ForbidSubstrings {
		if strings.Contains(name, strings.ToLower(forbid)) {
			return false
		}
	}
	return true
}

// Overrides maps a lowercase title substring to its rule.
type Overrides map[string]OverrideRule

// Match returns the rule for the first name matching an override key.
func (o Overrides) Match(names ...string) (OverrideRule, bool) {
	for key, rule := range o {
		for _, name := range names {
			if name != "" && strings.Contains(strings.ToLower(name), key) {
				return rule, true
			}
		}
	}
	return OverrideRule{}, false
}

// DefaultOverrides returns the built-in per-title rules. Keys are
// lowercase substrings matched against the install folder and display
// names.
func DefaultOverrides() Overrides {
	return Overrides{
		// Shipping binary is named after the product codename, nested
		// several directories below the install root. The top-level
		// launcher must never be picked, even as a fallback.
		"marvel rivals": {
			RelPaths: []string{
				"MarvelGame/Marvel/Binaries/Win64/Marvel-Win64-Shipping.exe",
				"Marvel-Win64-Shipping.exe",
			},
			RequireSubstrings: []string{"shipping"},
			ForbidSubstrings:  []string{"launcher"},
			NoGenericFallback: true,
		},
		// VALORANT.exe at the root is a bootstrapper; the client lives
		// under live/ShooterGame.
		"valorant": {
			RelPaths: []string{
				"live/ShooterGame/Binaries/Win64/VALORANT-Win64-Shipping.exe",
				"ShooterGame/Binaries/Win64/VALORANT-Win64-Shipping.exe",
			},
			RequireSubstrings: []string{"shipping"},
			ForbidSubstrings:  []string{"launcher"},
			NoGenericFallback: true,
		},
		// LeagueClient.exe is the lobby; the game itself starts from
		// the Game folder.
		"league of legends": {
			RelPaths: []string{
				"Game/League of Legends.exe",
			},
			ForbidSubstrings: []string{"client", "launcher"},
		},
	}
}

// Resolver picks the most likely launching executable for a discovered
// game directory. Pure filesystem reads, no side effects.
type Resolver struct {
	fs        afero.Fs
	overrides Overrides
	maxDepth  int
}

// NewResolver creates a resolver over fs. maxDepth bounds the recursive
// search fallback; values below 1 get the default of 3.
func NewResolver(fsys afero.Fs, overrides Overrides, maxDepth int) *Resolver {
	if overrides == nil {
		overrides = DefaultOverrides()
	}
	if maxDepth < 1 {
		maxDepth = 3
	}
	return &Resolver{fs: fsys, overrides: overrides, maxDepth: maxDepth}
}

// Overrides exposes the active override table for index expansion.
func (r *Resolver) Overrides() Overrides {
	return r.overrides
}

// Resolve returns the path of the executable most likely to be "the
// game" under root, or empty when nothing plausible exists. installDir
// and displayName are the install-folder and display names; either may
// be empty.
func (r *Resolver) Resolve(root, installDir, displayName string) string {
	if ok, err := afero.DirExists(r.fs, root); err != nil || !ok {
		return ""
	}

	rule, hasRule := r.overrides.Match(installDir, displayName)
	if hasRule {
		if found := r.resolveOverride(root, &rule); found != "" {
			return found
		}
		if rule.NoGenericFallback {
			return ""
		}
	}

	if found := r.commonPatterns(root, installDir, displayName); found != "" {
		return found
	}
	if found := r.rootScan(root, installDir); found != "" {
		return found
	}
	return r.boundedSearch(root, installDir)
}

func (r *Resolver) resolveOverride(root string, rule *OverrideRule) string {
	for _, rel := range rule.RelPaths {
		candidate := filepath.Join(root, filepath.FromSlash(rel))
		if r.isFile(candidate) && rule.Allows(filepath.Base(candidate)) {
			return candidate
		}
	}

	// Relative paths missed: the install may be nested differently than
	// anticipated. Search for anything satisfying the rule's predicate.
	matches := r.findMatching(root, r.maxDepth+2, func(name string) bool {
		return isExe(name) && rule.Allows(name)
	})
	if len(matches) > 0 {
		return matches[0].path
	}
	return ""
}

func (r *Resolver) commonPatterns(root, installDir, displayName string) string {
	var rels []string
	for _, name := range []string{installDir, displayName} {
		if name == "" {
			continue
		}
		rels = append(rels,
			name+".exe",
			filepath.Join("bin", name+".exe"),
			filepath.Join("Binaries", "Win64", name+".exe"),
			filepath.Join("Binaries", "Win64", name+"-Win64-Shipping.exe"),
			name+"-Win64-Shipping.exe",
			filepath.Join("Game", name+".exe"),
			filepath.Join("Client", name+".exe"),
		)
	}
	for _, rel := range rels {
		candidate := filepath.Join(root, rel)
		if r.isFile(candidate) {
			return candidate
		}
	}
	return ""
}

func (r *Resolver) rootScan(root, installDir string) string {
	entries, err := afero.ReadDir(r.fs, root)
	if err != nil {
		return ""
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() || !isExe(entry.Name()) {
			continue
		}
		if matchesAny(stem(entry.Name()), skipPatterns) {
			continue
		}
		candidates = append(candidates, entry.Name())
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Strings(candidates)

	// Prefer executables named like the game over tools that survived
	// the denylist.
	lowerDir := strings.ToLower(installDir)
	for _, name := range candidates {
		s := strings.ToLower(stem(name))
		if strings.Contains(s, "game") || (lowerDir != "" && strings.Contains(s, lowerDir)) {
			return filepath.Join(root, name)
		}
	}
	return filepath.Join(root, candidates[0])
}

func (r *Resolver) boundedSearch(root, installDir string) string {
	matches := r.findMatching(root, r.maxDepth, func(name string) bool {
		return isExe(name) && !matchesAny(stem(name), skipPatterns)
	})
	if len(matches) == 0 {
		return ""
	}

	lowerDir := strings.ToLower(installDir)
	for _, m := range matches {
		s := strings.ToLower(stem(filepath.Base(m.path)))
		if strings.Contains(s, "game") || (lowerDir != "" && strings.Contains(s, lowerDir)) {
			return m.path
		}
	}
	return matches[0].path
}

type foundExe struct {
	path  string
	depth int
}

// findMatching walks the tree under root up to maxDepth directory levels
// and returns matching files ordered by depth, then path, so shallower
// candidates always win regardless of walk order.
func (r *Resolver) findMatching(root string, maxDepth int, match func(name string) bool) []foundExe {
	var found []foundExe
	_ = afero.Walk(r.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil //nolint:nilerr
		}
		depth := strings.Count(filepath.ToSlash(rel), "/")
		if info.IsDir() {
			if depth >= maxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if match(info.Name()) {
			found = append(found, foundExe{path: path, depth: depth})
		}
		return nil
	})

	sort.Slice(found, func(i, j int) bool {
		if found[i].depth != found[j].depth {
			return found[i].depth < found[j].depth
		}
		return found[i].path < found[j].path
	})
	return found
}

func (r *Resolver) isFile(path string) bool {
	info, err := r.fs.Stat(path)
	return err == nil && !info.IsDir()
}

func isExe(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".exe")
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func matchesAny(s string, patterns []string) bool {
	lower := strings.ToLower(s)
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
