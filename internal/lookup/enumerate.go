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
	"fmt"
	"os"

	billy "github.com/go-git/go-billy/v5"
	log "github.com/sirupsen/logrus"

	"snapsweep/internal/common"
	"snapsweep/internal/util"
)

// Enumerator lists one file's copies across the snapshots of its dataset.
type Enumerator struct {
	fs       billy.Filesystem
	workers  int
	localDir string // stripped instead of the dataset mount when set
}

// NewEnumerator returns an enumerator reading through fs. localDir, when
// non-empty, is the root stripped from requested paths to obtain the path
// relative to the dataset.
func NewEnumerator(fs billy.Filesystem, workers int, localDir string) *Enumerator {
	return &Enumerator{fs: fs, workers: workers, localDir: localDir}
}

// RelativePath returns filePath relative to the configured local root, or
// to datasetMount when none is configured.
func (e *Enumerator) RelativePath(filePath, datasetMount string) (string, error) {
	root := datasetMount
	if e.localDir != "" {
		root = e.localDir
	}
	rel, ok := common.StripRoot(filePath, root)
	if !ok {
		return "", fmt.Errorf("%s is not under %s: %w", filePath, root, common.ErrPathOutsideRoot)
	}
	return rel, nil
}

// Enumerate returns the distinct snapshot copies of filePath under
// datasetMount, oldest first.
func (e *Enumerator) Enumerate(ctx context.Context, filePath, datasetMount string) ([]PathRecord, error) {
	return e.EnumerateAcross(ctx, filePath, datasetMount, []string{datasetMount})
}

// EnumerateAcross enumerates the path filePath has relative to proximate
// under the snapshots of every mount in datasetMounts, typically the
// proximate dataset followed by its replicas, and deduplicates the union.
func (e *Enumerator) EnumerateAcross(ctx context.Context, filePath, proximate string, datasetMounts []string) ([]PathRecord, error) {
	rel, err := e.RelativePath(filePath, proximate)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, mount := range datasetMounts {
		paths, err := e.candidatePaths(mount, rel)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, paths...)
	}

	probed, err := util.ParallelMap(ctx, e.workers, candidates, func(_ context.Context, path string) (PathRecord, error) {
		return Probe(e.fs, path), nil
	})
	if err != nil {
		return nil, err
	}
	return Deduplicate(probed), nil
}

// candidatePaths joins rel onto every snapshot directory of mount. A dataset
// without a visible snapshot directory has no candidates.
func (e *Enumerator) candidatePaths(mount, rel string) ([]string, error) {
	root := common.SnapshotRoot(mount)
	snaps, err := e.fs.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("lookup: %s has no snapshot directory", mount)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list snapshots in %s: %w", root, err)
	}

	paths := make([]string, 0, len(snaps))
	for _, snap := range snaps {
		paths = append(paths, common.SnapshotPath(mount, snap.Name(), rel))
	}
	return paths, nil
}
