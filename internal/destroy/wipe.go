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

package destroy

import (
	"fmt"
	"os"

	billy "github.com/go-git/go-billy/v5"

	"snapsweep/internal/common"
	"snapsweep/internal/mounts"
)

// CheckWipePreconditions verifies a wipe may proceed for paths: none of them
// may exist, and each must belong to a ZFS dataset. snapPoint, when set,
// replaces per-path dataset resolution. The first violation fails the whole
// operation.
func CheckWipePreconditions(fs billy.Filesystem, resolver *mounts.Resolver, snapPoint string, paths []string) error {
	for _, p := range paths {
		if _, err := fs.Lstat(p); err == nil {
			return fmt.Errorf("%s still exists: %w", p, common.ErrLiveFileWipe)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat %s: %w", p, err)
		}
	}

	for _, p := range paths {
		entry, err := wipeDataset(resolver, snapPoint, p)
		if err != nil {
			return err
		}
		if entry.Kind != mounts.KindZFS {
			return fmt.Errorf("%s is on %s (%s): %w", p, entry.MountPath, entry.Kind, common.ErrNonZFSDataset)
		}
	}
	return nil
}

func wipeDataset(resolver *mounts.Resolver, snapPoint, path string) (mounts.MountEntry, error) {
	if snapPoint == "" {
		return resolver.ResolveEntry(path)
	}
	entry, ok := resolver.Index().Lookup(snapPoint)
	if !ok {
		return mounts.MountEntry{}, fmt.Errorf("%s: %w", snapPoint, common.ErrNoDatasetFound)
	}
	return entry, nil
}
