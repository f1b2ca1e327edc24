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

// Package lookup finds the live and snapshot-resident copies of files.
package lookup

import (
	"os"
	"sort"
	"time"

	billy "github.com/go-git/go-billy/v5"
)

// Metadata is the part of a file's stat result versions are compared on.
type Metadata struct {
	Size    int64
	ModTime time.Time
}

// PathRecord is a path plus its metadata. A nil Metadata marks a phantom:
// the path does not currently exist.
type PathRecord struct {
	Path     string
	Metadata *Metadata
}

// IsPhantom reports whether the path was missing when probed.
func (p PathRecord) IsPhantom() bool {
	return p.Metadata == nil
}

// Probe stats path without following a final symlink. Any stat failure
// produces a phantom record.
func Probe(fs billy.Filesystem, path string) PathRecord {
	info, err := fs.Lstat(path)
	if err != nil {
		return PathRecord{Path: path}
	}
	return recordFromInfo(path, info)
}

func recordFromInfo(path string, info os.FileInfo) PathRecord {
	return PathRecord{
		Path:     path,
		Metadata: &Metadata{Size: info.Size(), ModTime: info.ModTime()},
	}
}

// versionKey identifies a logical version: unchanged files keep both.
type versionKey struct {
	modTime int64
	size    int64
}

// Deduplicate collapses records sharing (ModTime, Size), the last record in
// input order winning, and returns them ordered by ModTime. Phantom records
// are dropped.
func Deduplicate(records []PathRecord) []PathRecord {
	unique := make(map[versionKey]PathRecord, len(records))
	for _, r := range records {
		if r.IsPhantom() {
			continue
		}
		unique[versionKey{modTime: r.Metadata.ModTime.UnixNano(), size: r.Metadata.Size}] = r
	}

	out := make([]PathRecord, 0, len(unique))
	for _, r := range unique {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Metadata, out[j].Metadata
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.Before(b.ModTime)
		}
		return a.Size < b.Size
	})
	return out
}
