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

import "errors"

var (
	ErrNoDatasetFound          = errors.New("could not identify any qualifying dataset")
	ErrNoVersionsFound         = errors.New("neither a live copy nor a snapshot copy of the requested files exists")
	ErrPathOutsideRoot         = errors.New("path is not located under its dataset root")
	ErrAltMountNotFound        = errors.New("no alternate replicated mount found")
	ErrDestroyPermissionDenied = errors.New("root privileges are required to destroy a snapshot")
	ErrDestroyFailure          = errors.New("unable to destroy snapshot")
	ErrDestroyInProgress       = errors.New("another destroy run holds the lock")
	ErrLiveFileWipe            = errors.New("wipe only acts on deleted files")
	ErrNonZFSDataset           = errors.New("dataset is not a ZFS dataset")
	ErrZFSCommandNotFound      = errors.New("zfs command not found")
)
