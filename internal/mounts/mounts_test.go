package mounts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snapsweep/internal/common"
)

func zfsEntries(pairs ...string) []MountEntry {
	var out []MountEntry
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, MountEntry{MountPath: pairs[i], Source: pairs[i+1], Kind: KindZFS})
	}
	return out
}

func TestParseMountTable(t *testing.T) {
	t.Parallel()

	table := strings.Join([]string{
		"sysfs /sys sysfs rw,nosuid,nodev,noexec,relatime 0 0",
		"rpool/ROOT/ubuntu / zfs rw,relatime,xattr,posixacl 0 0",
		"rpool/USERDATA/home /home zfs rw,relatime,xattr,posixacl 0 0",
		`tank/media /srv/my\040media zfs rw,relatime 0 0`,
		"/dev/sda2 /data btrfs rw,relatime,ssd 0 0",
		"/dev/sda1 /boot ext4 rw,relatime 0 0",
		"short line",
		"",
	}, "\n")

	entries, err := ParseMountTable(strings.NewReader(table))
	require.NoError(t, err)

	assert.Equal(t, []MountEntry{
		{MountPath: "/", Source: "rpool/ROOT/ubuntu", Kind: KindZFS},
		{MountPath: "/home", Source: "rpool/USERDATA/home", Kind: KindZFS},
		{MountPath: "/srv/my media", Source: "tank/media", Kind: KindZFS},
		{MountPath: "/data", Source: "/dev/sda2", Kind: KindBtrfs},
	}, entries)
}

func TestUnescapeMountField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"/plain", "/plain"},
		{`/a\040b`, "/a b"},
		{`/tab\011x`, "/tab\tx"},
		{`/back\134slash`, `/back\slash`},
		{`/trailing\04`, `/trailing\04`},
		{`/bad\9xx`, `/bad\9xx`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, unescapeMountField(tt.in), "unescape %q", tt.in)
	}
}

func TestParseZFSList(t *testing.T) {
	t.Parallel()

	out := strings.Join([]string{
		"rpool\t/rpool\tyes",
		"rpool/ROOT\tnone\tno",
		"rpool/ROOT/ubuntu\t/\tyes",
		"rpool/legacy\tlegacy\tyes",
		"tank/with space\t/tank/with space\tyes",
		"tank/unmounted\t/tank/unmounted\tno",
		"garbage",
	}, "\n")

	entries, err := ParseZFSList(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, zfsEntries(
		"/rpool", "rpool",
		"/", "rpool/ROOT/ubuntu",
		"/tank/with space", "tank/with space",
	), entries)
}

type stubLister struct {
	name    string
	entries []MountEntry
	err     error
	calls   int
}

func (s *stubLister) Name() string { return s.name }

func (s *stubLister) List(context.Context) ([]MountEntry, error) {
	s.calls++
	return s.entries, s.err
}

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("fast path wins", func(t *testing.T) {
		t.Parallel()
		fast := &stubLister{name: "fast", entries: zfsEntries("/tank", "tank")}
		slow := &stubLister{name: "slow", entries: zfsEntries("/other", "other")}

		idx := Build(context.Background(), fast, slow)
		assert.Equal(t, 1, idx.Len())
		_, ok := idx.Lookup("/tank")
		assert.True(t, ok)
		assert.Equal(t, 0, slow.calls)
	})

	t.Run("falls back when unavailable", func(t *testing.T) {
		t.Parallel()
		fast := &stubLister{name: "fast", err: os.ErrNotExist}
		slow := &stubLister{name: "slow", entries: zfsEntries("/other", "other")}

		idx := Build(context.Background(), fast, slow)
		_, ok := idx.Lookup("/other")
		assert.True(t, ok)
	})

	t.Run("all fail yields empty index", func(t *testing.T) {
		t.Parallel()
		idx := Build(context.Background(), &stubLister{name: "x", err: errors.New("boom")})
		assert.Equal(t, 0, idx.Len())

		_, err := NewResolver(idx).Resolve("/tank/file")
		assert.ErrorIs(t, err, common.ErrNoDatasetFound)
	})
}

func TestMountTableLister(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mounts")
	require.NoError(t, os.WriteFile(path, []byte("tank /tank zfs rw 0 0\n"), 0644))

	entries, err := MountTableLister{Path: path}.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, zfsEntries("/tank", "tank"), entries)

	_, err = MountTableLister{Path: filepath.Join(t.TempDir(), "missing")}.List(context.Background())
	assert.Error(t, err)
}

func TestIndexEntriesSorted(t *testing.T) {
	t.Parallel()

	idx := NewIndex(zfsEntries("/usr", "rpool/usr", "/", "rpool/root", "/home", "rpool/home"))
	var paths []string
	for _, e := range idx.Entries() {
		paths = append(paths, e.MountPath)
	}
	assert.Equal(t, []string{"/", "/home", "/usr"}, paths)

	var nilIdx *Index
	assert.Equal(t, 0, nilIdx.Len())
	assert.Nil(t, nilIdx.Entries())
}

func TestResolve(t *testing.T) {
	t.Parallel()

	idx := NewIndex(zfsEntries(
		"/", "rpool/ROOT",
		"/usr", "rpool/usr",
		"/usr/bin", "rpool/usr/bin",
		"/tank", "tank",
	))
	r := NewResolver(idx)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"longest match wins", "/usr/bin/ls", "/usr/bin"},
		{"intermediate dataset", "/usr/share/doc", "/usr"},
		{"root fallback", "/etc/hosts", "/"},
		{"file directly under mount", "/tank/file", "/tank"},
		{"mount path itself resolves to parent dataset", "/tank", "/"},
		{"substring match on differently rooted layout", "/mnt/replica/tank/file", "/tank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := r.Resolve(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := r.Resolve(tt.path)
			require.NoError(t, err)
			assert.Equal(t, got, again, "resolution should be deterministic")
		})
	}
}

func TestResolveNoDataset(t *testing.T) {
	t.Parallel()

	r := NewResolver(NewIndex(zfsEntries("/tank", "tank")))
	_, err := r.Resolve("/home/user/file")
	assert.ErrorIs(t, err, common.ErrNoDatasetFound)
}

func TestResolveTieBreak(t *testing.T) {
	t.Parallel()

	// Both mounts occur in the parent and have equal length.
	r := NewResolver(NewIndex(zfsEntries("/bb", "pool/b", "/aa", "pool/a")))
	got, err := r.Resolve("/aa/bb/file")
	require.NoError(t, err)
	assert.Equal(t, "/aa", got)
}

func TestResolveEntry(t *testing.T) {
	t.Parallel()

	r := NewResolver(NewIndex([]MountEntry{
		{MountPath: "/data", Source: "/dev/sda2", Kind: KindBtrfs},
	}))
	e, err := r.ResolveEntry("/data/x")
	require.NoError(t, err)
	assert.Equal(t, KindBtrfs, e.Kind)
}

func TestAltFinder(t *testing.T) {
	t.Parallel()

	idx := NewIndex(zfsEntries(
		"/", "rpool",
		"/tank/rpool", "tank/rpool",
		"/backup/long/rpool", "backup/rpool",
		"/tank", "tank",
		"/home", "rpool/home",
	))
	f := NewAltFinder(idx)

	t.Run("finds replicas shortest first", func(t *testing.T) {
		t.Parallel()
		md, err := f.Find("/")
		require.NoError(t, err)
		assert.Equal(t, "/", md.ProximateMount)
		assert.Equal(t, []string{"/tank/rpool", "/backup/long/rpool"}, md.AltMounts)
	})

	t.Run("no replica is soft failure", func(t *testing.T) {
		t.Parallel()
		_, err := f.Find("/home")
		assert.ErrorIs(t, err, common.ErrAltMountNotFound)
	})

	t.Run("unknown mount", func(t *testing.T) {
		t.Parallel()
		_, err := f.Find("/nowhere")
		assert.ErrorIs(t, err, common.ErrAltMountNotFound)
	})

	t.Run("all", func(t *testing.T) {
		t.Parallel()
		all := f.All()
		assert.Len(t, all, 1)
		assert.Contains(t, all, "/")
	})
}
