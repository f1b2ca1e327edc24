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
	"sort"
)

// Entry pairs a requested file with its snapshot copies, oldest first.
type Entry struct {
	Key      PathRecord
	Versions []PathRecord
}

// VersionsMap holds the lookup result for a batch of requested files,
// ordered by requested path. It is not modified after construction.
type VersionsMap struct {
	entries []Entry
	live    []PathRecord
}

// NewVersionsMap orders entries and live records by path.
func NewVersionsMap(entries []Entry, live []PathRecord) *VersionsMap {
	es := append([]Entry(nil), entries...)
	sort.SliceStable(es, func(i, j int) bool { return es[i].Key.Path < es[j].Key.Path })
	lv := append([]PathRecord(nil), live...)
	sort.SliceStable(lv, func(i, j int) bool { return lv[i].Path < lv[j].Path })
	return &VersionsMap{entries: es, live: lv}
}

// Entries returns the per-file results.
func (m *VersionsMap) Entries() []Entry {
	return m.entries
}

// Len returns the number of requested files.
func (m *VersionsMap) Len() int {
	return len(m.entries)
}

// Get returns the entry for a requested path.
func (m *VersionsMap) Get(path string) (Entry, bool) {
	for _, e := range m.entries {
		if e.Key.Path == path {
			return e, true
		}
	}
	return Entry{}, false
}

// SnapshotVersions concatenates every file's snapshot copies in key order.
func (m *VersionsMap) SnapshotVersions() []PathRecord {
	var out []PathRecord
	for _, e := range m.entries {
		out = append(out, e.Versions...)
	}
	return out
}

// LiveVersions returns the requested files with their current metadata,
// phantoms included. It is empty when live copies were not requested.
func (m *VersionsMap) LiveVersions() []PathRecord {
	return m.live
}
