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

package lookup

import (
	"context"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	log "github.com/sirupsen/logrus"

	"snapsweep/internal/common"
	"snapsweep/internal/mounts"
	"snapsweep/internal/util"
)

// Options controls a Service.
type Options struct {
	Workers       int    // pool size, 0 = NumCPU
	IncludeLive   bool   // report live copies alongside snapshot copies
	AltReplicated bool   // also search replicated datasets
	SnapPoint     string // fixed dataset mount; empty resolves per file
	LocalDir      string // root stripped from paths when SnapPoint is set
}

// Service looks up the versions of many files at once.
type Service struct {
	fs       billy.Filesystem
	resolver *mounts.Resolver
	alts     *mounts.AltFinder
	enum     *Enumerator
	opts     Options
}

// NewService returns a Service reading files through fs and resolving
// datasets against idx.
func NewService(fs billy.Filesystem, idx *mounts.Index, opts Options) *Service {
	localDir := ""
	if opts.SnapPoint != "" {
		localDir = opts.LocalDir
		if localDir == "" {
			localDir = opts.SnapPoint
		}
	}
	return &Service{
		fs:       fs,
		resolver: mounts.NewResolver(idx),
		alts:     mounts.NewAltFinder(idx),
		enum:     NewEnumerator(fs, opts.Workers, localDir),
		opts:     opts,
	}
}

// Resolver returns the dataset resolver the service uses.
func (s *Service) Resolver() *mounts.Resolver {
	return s.resolver
}

// Lookup resolves and enumerates every path in parallel. A failure for any
// path fails the batch. ErrNoVersionsFound is returned when no snapshot copy
// exists and no requested path exists live.
func (s *Service) Lookup(ctx context.Context, paths []string) (*VersionsMap, error) {
	keys, err := util.ParallelMap(ctx, s.opts.Workers, uniquePaths(paths), func(_ context.Context, p string) (PathRecord, error) {
		return Probe(s.fs, p), nil
	})
	if err != nil {
		return nil, err
	}

	versions, err := util.ParallelMap(ctx, s.opts.Workers, keys, s.versionsFor)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(keys))
	snapshotCount := 0
	for i, key := range keys {
		entries[i] = Entry{Key: key, Versions: versions[i]}
		snapshotCount += len(versions[i])
	}

	var live []PathRecord
	if s.opts.IncludeLive {
		live = keys
	}

	if snapshotCount == 0 && allPhantom(live) {
		return nil, common.ErrNoVersionsFound
	}
	return NewVersionsMap(entries, live), nil
}

func (s *Service) versionsFor(ctx context.Context, key PathRecord) ([]PathRecord, error) {
	proximate := s.opts.SnapPoint
	if proximate == "" {
		mp, err := s.resolver.Resolve(key.Path)
		if err != nil {
			return nil, err
		}
		proximate = mp
	}

	datasets := []string{proximate}
	if s.opts.AltReplicated {
		if md, err := s.alts.Find(proximate); err == nil {
			datasets = append(datasets, md.AltMounts...)
		} else {
			log.WithError(err).Debug("lookup: alternate replicated datasets disabled")
		}
	}

	return s.enum.EnumerateAcross(ctx, key.Path, proximate, datasets)
}

// uniquePaths cleans paths and drops repeats, keeping first occurrence order.
func uniquePaths(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = filepath.Clean(p)
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func allPhantom(records []PathRecord) bool {
	for _, r := range records {
		if !r.IsPhantom() {
			return false
		}
	}
	return true
}
