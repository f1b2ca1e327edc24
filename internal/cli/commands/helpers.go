// Copyright 2026 Snapsweep Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"context"
	"fmt"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	log "github.com/sirupsen/logrus"

	"snapsweep/internal/common"
	"snapsweep/internal/journal"
	"snapsweep/internal/lookup"
	"snapsweep/internal/mounts"
	"snapsweep/internal/settings"
	"snapsweep/internal/util"
)

// rootFS is the filesystem every lookup reads through.
var rootFS billy.Filesystem = osfs.New("/")

// absPaths makes every argument absolute.
func absPaths(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, a := range args {
		p, err := filepath.Abs(a)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path %s: %w", a, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// buildIndex reads the mount table, falling back to `zfs list`.
func buildIndex(ctx context.Context, s *settings.Settings) *mounts.Index {
	return mounts.Build(ctx,
		mounts.MountTableLister{Path: mounts.DefaultMountTable},
		mounts.ZFSListLister{Command: s.ZFSCommand},
	)
}

// lookupOptions merges settings with per-command overrides.
func lookupOptions(s *settings.Settings, noLive, altReplicated bool) lookup.Options {
	return lookup.Options{
		Workers:       s.Workers,
		IncludeLive:   !(noLive || s.NoLive),
		AltReplicated: altReplicated || s.AltReplicated,
		SnapPoint:     s.SnapPoint,
		LocalDir:      s.LocalDir,
	}
}

// runLookup resolves args to absolute paths and looks up their versions.
func runLookup(ctx context.Context, args []string, opts lookup.Options) (*lookup.VersionsMap, *mounts.Index, error) {
	paths, err := absPaths(args)
	if err != nil {
		return nil, nil, err
	}
	idx := buildIndex(ctx, cfg)
	vm, err := lookup.NewService(rootFS, idx, opts).Lookup(ctx, paths)
	if err != nil {
		return nil, nil, err
	}
	return vm, idx, nil
}

// openJournal opens the journal when enabled. A journal that cannot be
// opened disables journaling for this run.
func openJournal(s *settings.Settings) *journal.Journal {
	if !s.JournalEnabled() {
		return nil
	}
	j, err := journal.Open(settings.JournalPath())
	if err != nil {
		log.WithError(err).Warn("journal unavailable, destroy run will not be recorded")
		return nil
	}
	return j
}

// resolveZFSCommand finds the configured zfs executable on PATH.
func resolveZFSCommand(name string) (string, error) {
	exe, err := util.LookupCommand(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, common.ErrZFSCommandNotFound)
	}
	return exe, nil
}
