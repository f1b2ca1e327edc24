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

// Package snapnames turns snapshot-resident file paths back into ZFS
// snapshot identifiers.
package snapnames

import (
	"context"
	"fmt"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	log "github.com/sirupsen/logrus"

	"snapsweep/internal/common"
	"snapsweep/internal/lookup"
	"snapsweep/internal/mounts"
	"snapsweep/internal/util"
)

// Identifier names one snapshot of one dataset.
type Identifier struct {
	Source       string // dataset name
	Name         string // snapshot short name
	DatasetMount string // where the dataset is mounted
}

// String formats the identifier the way zfs(8) expects it: dataset@snapshot.
func (id Identifier) String() string {
	return id.Source + "@" + id.Name
}

// Filters narrow the identifiers reported for each file. They apply in
// field order.
type Filters struct {
	Names     []string // keep short names containing any of these; empty keeps all
	Exclude   []string // gitignore-style patterns matched against short names
	OmitCount int      // drop this many of the most recent snapshots
}

// Entry pairs a requested file with the snapshots holding its versions.
type Entry struct {
	Key   lookup.PathRecord
	Names []string
}

// SnapNameMap is the resolved identifiers of a batch, in key order.
type SnapNameMap struct {
	entries []Entry
}

// Entries returns the per-file identifiers.
func (m *SnapNameMap) Entries() []Entry {
	return m.entries
}

// Identifiers flattens the map in key order. A snapshot holding versions of
// several requested files is listed once, at its first occurrence.
func (m *SnapNameMap) Identifiers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range m.entries {
		for _, n := range e.Names {
			if seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// Paths returns the requested file paths in key order.
func (m *SnapNameMap) Paths() []string {
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Key.Path)
	}
	return out
}

// Resolver maps snapshot paths to identifiers using the mount index.
type Resolver struct {
	index   *mounts.Index
	workers int
}

// NewResolver returns a Resolver over idx.
func NewResolver(idx *mounts.Index, workers int) *Resolver {
	return &Resolver{index: idx, workers: workers}
}

// Deconstruct returns the snapshot identifier of a snapshot-resident path.
func (r *Resolver) Deconstruct(versionPath string) (Identifier, error) {
	mount, snap, _, ok := common.SplitSnapshotPath(versionPath)
	if !ok {
		return Identifier{}, fmt.Errorf("%s is not inside a snapshot directory", versionPath)
	}
	entry, ok := r.index.Lookup(mount)
	if !ok {
		return Identifier{}, fmt.Errorf("%s: %w", mount, common.ErrNoDatasetFound)
	}
	if entry.Kind != mounts.KindZFS {
		return Identifier{}, fmt.Errorf("%s (%s): %w", mount, entry.Kind, common.ErrNonZFSDataset)
	}
	return Identifier{Source: entry.Source, Name: snap, DatasetMount: mount}, nil
}

// Resolve computes the filtered identifiers for every entry of vm. Versions
// that cannot be attributed to a ZFS dataset are dropped with a warning.
// Files left without any identifier keep an empty entry and are warned about.
func (r *Resolver) Resolve(ctx context.Context, vm *lookup.VersionsMap, f Filters) (*SnapNameMap, error) {
	exclude := compileExclude(f.Exclude)

	entries, err := util.ParallelMap(ctx, r.workers, vm.Entries(), func(_ context.Context, le lookup.Entry) (Entry, error) {
		return Entry{Key: le.Key, Names: r.namesFor(le, f, exclude)}, nil
	})
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if len(e.Names) == 0 {
			log.Warnf("no snapshot names remain for %s after filtering", e.Key.Path)
		}
	}
	return &SnapNameMap{entries: entries}, nil
}

func (r *Resolver) namesFor(le lookup.Entry, f Filters, exclude *ignore.GitIgnore) []string {
	var ids []Identifier
	for _, v := range le.Versions {
		id, err := r.Deconstruct(v.Path)
		if err != nil {
			log.Warnf("skipping %s: %v", v.Path, err)
			continue
		}
		if !matchesAny(id.Name, f.Names) {
			continue
		}
		if exclude != nil && exclude.MatchesPath(id.Name) {
			continue
		}
		ids = append(ids, id)
	}

	ids = omitLast(ids, f.OmitCount)

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, id.String())
	}
	return names
}

func matchesAny(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

func compileExclude(patterns []string) *ignore.GitIgnore {
	if len(patterns) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(patterns...)
}

// omitLast drops the n most recent entries of an ascending list.
func omitLast[T any](items []T, n int) []T {
	if n <= 0 {
		return items
	}
	if n >= len(items) {
		return nil
	}
	return items[:len(items)-n]
}
