package mounts

import (
	"fmt"
	"strings"

	"snapsweep/internal/common"
)

// Resolver maps file paths to the dataset mount that owns them.
type Resolver struct {
	index *Index
}

// NewResolver returns a resolver over idx.
func NewResolver(idx *Index) *Resolver {
	return &Resolver{index: idx}
}

// Index returns the index the resolver reads.
func (r *Resolver) Index() *Index {
	return r.index
}

// Resolve returns the mount path of the most specific dataset containing
// filePath. A mount qualifies when its path occurs anywhere in the parent
// directory string, which also matches datasets mounted under a different
// root on a replica. The longest qualifying mount wins, ties going to the
// lexicographically smallest path.
func (r *Resolver) Resolve(filePath string) (string, error) {
	parent := common.ParentDir(filePath)

	best := ""
	for _, e := range r.index.Entries() {
		mp := e.MountPath
		if !strings.Contains(parent, mp) {
			continue
		}
		if len(mp) > len(best) || (len(mp) == len(best) && mp < best) {
			best = mp
		}
	}
	if best == "" {
		return "", fmt.Errorf("%s: %w", filePath, common.ErrNoDatasetFound)
	}
	return best, nil
}

// ResolveEntry is Resolve returning the full mount entry.
func (r *Resolver) ResolveEntry(filePath string) (MountEntry, error) {
	mp, err := r.Resolve(filePath)
	if err != nil {
		return MountEntry{}, err
	}
	e, _ := r.index.Lookup(mp)
	return e, nil
}
