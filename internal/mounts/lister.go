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

package mounts

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"snapsweep/internal/util"
)

// DefaultMountTable is the Linux virtual file listing active mounts.
const DefaultMountTable = "/proc/mounts"

// MountLister produces the raw mount entries an Index is built from.
type MountLister interface {
	List(ctx context.Context) ([]MountEntry, error)
	Name() string
}

// Build asks each lister in turn and indexes the first successful listing.
// When every lister fails the index is empty; resolution then reports
// ErrNoDatasetFound for every path.
func Build(ctx context.Context, listers ...MountLister) *Index {
	for _, l := range listers {
		entries, err := l.List(ctx)
		if err != nil {
			log.WithError(err).Debugf("mounts: %s unavailable", l.Name())
			continue
		}
		log.Debugf("mounts: indexed %d datasets from %s", len(entries), l.Name())
		return NewIndex(entries)
	}
	return NewIndex(nil)
}

// MountTableLister reads a /proc/mounts style table.
type MountTableLister struct {
	Path string
}

func (l MountTableLister) Name() string { return l.Path }

// List parses the mount table, keeping snapshot-capable filesystems.
func (l MountTableLister) List(ctx context.Context) ([]MountEntry, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseMountTable(f)
}

// ParseMountTable parses whitespace-delimited "source mountpoint fstype ..."
// lines. Only zfs and btrfs mounts are returned.
func ParseMountTable(r io.Reader) ([]MountEntry, error) {
	var entries []MountEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		kind := parseKind(fields[2])
		if kind == KindOther {
			continue
		}
		entries = append(entries, MountEntry{
			MountPath: unescapeMountField(fields[1]),
			Source:    unescapeMountField(fields[0]),
			Kind:      kind,
		})
	}
	return entries, scanner.Err()
}

// unescapeMountField decodes the octal escapes (\040 for space, \011 for
// tab, \012 for newline, \134 for backslash) the kernel writes in mount tables.
func unescapeMountField(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+4 <= len(s) {
			if n, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(n))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// ZFSListLister asks the zfs command for mounted filesystems. It is the
// fallback on systems without a readable mount table.
type ZFSListLister struct {
	Command string
}

func (l ZFSListLister) Name() string { return l.Command + " list" }

// List runs "zfs list -H -t filesystem -o name,mountpoint,mounted".
func (l ZFSListLister) List(ctx context.Context) ([]MountEntry, error) {
	out, err := util.RetryWithResult(ctx, func() (util.CommandOutput, error) {
		return util.RunCommand(ctx, l.Command, "list", "-H", "-t", "filesystem", "-o", "name,mountpoint,mounted")
	})
	if err != nil {
		if stderr := out.StderrString(); stderr != "" {
			return nil, fmt.Errorf("%s list: %w: %s", l.Command, err, stderr)
		}
		return nil, fmt.Errorf("%s list: %w", l.Command, err)
	}
	return ParseZFSList(strings.NewReader(string(out.Stdout)))
}

// ParseZFSList parses tab-separated "name mountpoint mounted" lines, keeping
// mounted filesystems with an absolute mountpoint.
func ParseZFSList(r io.Reader) ([]MountEntry, error) {
	var entries []MountEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 3 {
			continue
		}
		name, mountpoint, mounted := fields[0], fields[1], strings.TrimSpace(fields[2])
		if mounted != "yes" && mounted != "mounted" {
			continue
		}
		if !filepath.IsAbs(mountpoint) {
			// "-", "none" and "legacy" mountpoints
			continue
		}
		entries = append(entries, MountEntry{
			MountPath: filepath.Clean(mountpoint),
			Source:    name,
			Kind:      KindZFS,
		})
	}
	return entries, scanner.Err()
}
