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

// Package mounts builds the process-lifetime table of dataset mounts and
// answers which dataset owns a path.
package mounts

import (
	"sort"
)

// FilesystemKind is the filesystem type backing a mount.
type FilesystemKind string

const (
	KindZFS   FilesystemKind = "zfs"
	KindBtrfs FilesystemKind = "btrfs"
	KindOther FilesystemKind = "other"
)

// parseKind maps a mount table fstype field to a FilesystemKind.
func parseKind(fstype string) FilesystemKind {
	switch fstype {
	case "zfs":
		return KindZFS
	case "btrfs":
		return KindBtrfs
	default:
		return KindOther
	}
}

// MountEntry describes one mounted dataset.
type MountEntry struct {
	MountPath string         // where the dataset is mounted
	Source    string         // dataset name, e.g. "rpool/ROOT/ubuntu"
	Kind      FilesystemKind // filesystem type
}

// Index is an immutable mount path -> MountEntry table. It is built once and
// shared read-only; the zero value is an empty index.
type Index struct {
	byPath map[string]MountEntry
	paths  []string // sorted mount paths, for stable iteration
}

// NewIndex builds an index from entries. Later entries replace earlier ones
// with the same mount path.
func NewIndex(entries []MountEntry) *Index {
	idx := &Index{byPath: make(map[string]MountEntry, len(entries))}
	for _, e := range entries {
		if e.MountPath == "" {
			continue
		}
		idx.byPath[e.MountPath] = e
	}
	idx.paths = make([]string, 0, len(idx.byPath))
	for p := range idx.byPath {
		idx.paths = append(idx.paths, p)
	}
	sort.Strings(idx.paths)
	return idx
}

// Lookup returns the entry mounted at mountPath.
func (idx *Index) Lookup(mountPath string) (MountEntry, bool) {
	if idx == nil {
		return MountEntry{}, false
	}
	e, ok := idx.byPath[mountPath]
	return e, ok
}

// Len returns the number of mounts.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.paths)
}

// Entries returns all entries ordered by mount path.
func (idx *Index) Entries() []MountEntry {
	if idx == nil {
		return nil
	}
	out := make([]MountEntry, 0, len(idx.paths))
	for _, p := range idx.paths {
		out = append(out, idx.byPath[p])
	}
	return out
}
