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

package common

import (
	"path/filepath"
	"strings"
)

// SnapshotDir is the hidden directory under every ZFS dataset mount that
// exposes its snapshots, one subdirectory per snapshot.
const SnapshotDir = ".zfs/snapshot"

// snapshotMarker is SnapshotDir as it appears inside a snapshot-resident path.
const snapshotMarker = SnapshotDir + "/"

// SnapshotRoot returns the snapshot directory of a dataset mount.
func SnapshotRoot(datasetMount string) string {
	return filepath.Join(datasetMount, SnapshotDir)
}

// SnapshotPath builds the path of relPath as seen inside the named snapshot.
func SnapshotPath(datasetMount, snapName, relPath string) string {
	return filepath.Join(SnapshotRoot(datasetMount), snapName, relPath)
}

// SplitSnapshotPath deconstructs a snapshot-resident path into the dataset
// mount, the snapshot short name and the path relative to the dataset.
// ok is false when the path carries no snapshot marker or no snapshot name.
func SplitSnapshotPath(path string) (datasetMount, snapName, relPath string, ok bool) {
	lhs, rhs, found := strings.Cut(path, snapshotMarker)
	if !found {
		return "", "", "", false
	}
	snapName, relPath, _ = strings.Cut(rhs, "/")
	if snapName == "" {
		return "", "", "", false
	}
	if lhs == "" {
		lhs = "/"
	}
	return filepath.Clean(lhs), snapName, relPath, true
}

// StripRoot returns path relative to root, comparing whole components.
// ok is false when path does not live under root.
func StripRoot(path, root string) (string, bool) {
	if !filepath.IsAbs(path) || !filepath.IsAbs(root) {
		return "", false
	}
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	if rel == "." {
		return "", true
	}
	return rel, true
}

// ParentDir returns the parent directory of path, or "/" for the root.
func ParentDir(path string) string {
	dir := filepath.Dir(filepath.Clean(path))
	if dir == "." {
		return "/"
	}
	return dir
}
