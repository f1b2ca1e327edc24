package snapnames

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snapsweep/internal/common"
	"snapsweep/internal/lookup"
	"snapsweep/internal/mounts"
)

func testIndex() *mounts.Index {
	return mounts.NewIndex([]mounts.MountEntry{
		{MountPath: "/", Source: "rpool/ROOT/ubuntu", Kind: mounts.KindZFS},
		{MountPath: "/tank", Source: "tank", Kind: mounts.KindZFS},
		{MountPath: "/data", Source: "/dev/sdb1", Kind: mounts.KindBtrfs},
	})
}

func versions(mount, rel string, snaps ...string) []lookup.PathRecord {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var out []lookup.PathRecord
	for i, s := range snaps {
		out = append(out, lookup.PathRecord{
			Path:     common.SnapshotPath(mount, s, rel),
			Metadata: &lookup.Metadata{Size: int64(i), ModTime: base.Add(time.Duration(i) * time.Hour)},
		})
	}
	return out
}

func singleFile(mount, rel string, snaps ...string) *lookup.VersionsMap {
	key := lookup.PathRecord{Path: mount + "/" + rel}
	return lookup.NewVersionsMap([]lookup.Entry{{Key: key, Versions: versions(mount, rel, snaps...)}}, nil)
}

func TestDeconstruct(t *testing.T) {
	t.Parallel()
	r := NewResolver(testIndex(), 1)

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{"dataset", "/tank/.zfs/snapshot/daily-1/docs/a.txt", "tank@daily-1", nil},
		{"root dataset", "/.zfs/snapshot/boot/etc/hosts", "rpool/ROOT/ubuntu@boot", nil},
		{"unknown dataset", "/srv/.zfs/snapshot/s1/a", "", common.ErrNoDatasetFound},
		{"other filesystem", "/data/.zfs/snapshot/s1/a", "", common.ErrNonZFSDataset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			id, err := r.Deconstruct(tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id.String())
		})
	}

	_, err := r.Deconstruct("/tank/docs/a.txt")
	assert.Error(t, err)
}

func TestDeconstructRoundTrip(t *testing.T) {
	t.Parallel()
	r := NewResolver(testIndex(), 1)
	for _, snap := range []string{"s1", "autosnap_2024-01-01_00:00:00_daily", "with space"} {
		id, err := r.Deconstruct(common.SnapshotPath("/tank", snap, "deep/nested/file"))
		require.NoError(t, err)
		assert.Equal(t, snap, id.Name)
		assert.Equal(t, "/tank", id.DatasetMount)
	}
}

func TestResolveFilters(t *testing.T) {
	t.Parallel()
	vm := singleFile("/tank", "docs/a.txt", "hourly-1", "daily-1", "hourly-2", "daily-2")

	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{"no filters", Filters{}, []string{"tank@hourly-1", "tank@daily-1", "tank@hourly-2", "tank@daily-2"}},
		{"name substring", Filters{Names: []string{"daily"}}, []string{"tank@daily-1", "tank@daily-2"}},
		{"any of several names", Filters{Names: []string{"-2", "daily-1"}}, []string{"tank@daily-1", "tank@hourly-2", "tank@daily-2"}},
		{"exclude glob", Filters{Exclude: []string{"hourly-*"}}, []string{"tank@daily-1", "tank@daily-2"}},
		{"omit most recent", Filters{OmitCount: 1}, []string{"tank@hourly-1", "tank@daily-1", "tank@hourly-2"}},
		{"filters compose in order", Filters{Names: []string{"daily"}, OmitCount: 1}, []string{"tank@daily-1"}},
		{"omit everything", Filters{OmitCount: 10}, []string{}},
	}
	r := NewResolver(testIndex(), 2)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, err := r.Resolve(context.Background(), vm, tt.filters)
			require.NoError(t, err)
			require.Len(t, m.Entries(), 1)
			assert.ElementsMatch(t, tt.want, m.Entries()[0].Names)
			assert.Equal(t, len(tt.want), len(m.Identifiers()))
			if len(tt.want) > 0 {
				assert.Equal(t, tt.want, m.Identifiers())
			}
		})
	}
}

func TestOmitCountKeepsOldest(t *testing.T) {
	t.Parallel()
	vm := singleFile("/tank", "f", "s1", "s2", "s3", "s4")

	m, err := NewResolver(testIndex(), 1).Resolve(context.Background(), vm, Filters{OmitCount: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"tank@s1", "tank@s2"}, m.Identifiers())
}

func TestResolveDropsUnattributableVersions(t *testing.T) {
	t.Parallel()
	recs := append(versions("/tank", "a", "s1"), versions("/data", "a", "b1")...)
	recs = append(recs, versions("/srv", "a", "x1")...)
	vm := lookup.NewVersionsMap([]lookup.Entry{{Key: lookup.PathRecord{Path: "/tank/a"}, Versions: recs}}, nil)

	m, err := NewResolver(testIndex(), 1).Resolve(context.Background(), vm, Filters{})
	require.NoError(t, err)
	assert.Equal(t, []string{"tank@s1"}, m.Identifiers())
}

func TestResolveManyFiles(t *testing.T) {
	t.Parallel()
	vm := lookup.NewVersionsMap([]lookup.Entry{
		{Key: lookup.PathRecord{Path: "/tank/b"}, Versions: versions("/tank", "b", "s2", "s3")},
		{Key: lookup.PathRecord{Path: "/tank/a"}, Versions: versions("/tank", "a", "s1", "s2")},
		{Key: lookup.PathRecord{Path: "/tank/c"}},
	}, nil)

	m, err := NewResolver(testIndex(), 4).Resolve(context.Background(), vm, Filters{})
	require.NoError(t, err)

	assert.Equal(t, []string{"/tank/a", "/tank/b", "/tank/c"}, m.Paths())
	assert.Empty(t, m.Entries()[2].Names)
	assert.Equal(t, []string{"tank@s1", "tank@s2", "tank@s3"}, m.Identifiers())
}
