package mounts

import (
	"fmt"
	"sort"
	"strings"

	"snapsweep/internal/common"
)

// AltMetadata lists the replicated mounts found for a dataset mount.
type AltMetadata struct {
	ProximateMount string
	AltMounts      []string // shortest mount path first
}

// AltFinder finds mounts holding replicas of a dataset, such as tank/rpool
// receiving snapshots of rpool.
type AltFinder struct {
	index *Index
}

// NewAltFinder returns a finder over idx.
func NewAltFinder(idx *Index) *AltFinder {
	return &AltFinder{index: idx}
}

// Find returns every mount whose dataset name ends with, but differs from,
// the dataset name mounted at mount. ErrAltMountNotFound is a soft failure:
// callers lose the enrichment and carry on.
func (f *AltFinder) Find(mount string) (AltMetadata, error) {
	own, ok := f.index.Lookup(mount)
	if !ok {
		return AltMetadata{}, fmt.Errorf("%s: %w", mount, common.ErrAltMountNotFound)
	}

	var alts []string
	for _, e := range f.index.Entries() {
		if e.Source != own.Source && strings.HasSuffix(e.Source, own.Source) {
			alts = append(alts, e.MountPath)
		}
	}
	if len(alts) == 0 {
		return AltMetadata{}, fmt.Errorf("%s: %w", mount, common.ErrAltMountNotFound)
	}

	sort.SliceStable(alts, func(i, j int) bool {
		if len(alts[i]) != len(alts[j]) {
			return len(alts[i]) < len(alts[j])
		}
		return alts[i] < alts[j]
	})
	return AltMetadata{ProximateMount: mount, AltMounts: alts}, nil
}

// All precomputes Find for every indexed mount, omitting mounts without
// replicas.
func (f *AltFinder) All() map[string]AltMetadata {
	out := make(map[string]AltMetadata)
	for _, e := range f.index.Entries() {
		if md, err := f.Find(e.MountPath); err == nil {
			out[e.MountPath] = md
		}
	}
	return out
}
