package destroy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snapsweep/internal/common"
	"snapsweep/internal/mounts"
)

// fakeZFS writes an executable script standing in for zfs(8).
func fakeZFS(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zfs")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestZFSDestroyer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		d := NewZFSDestroyer(fakeZFS(t, `[ "$1" = destroy ] && [ "$2" = tank@s1 ] || exit 3`))
		assert.NoError(t, d.Check())
		assert.NoError(t, d.Destroy(ctx, "tank@s1"))
	})

	t.Run("stderr fails even on zero exit", func(t *testing.T) {
		t.Parallel()
		d := NewZFSDestroyer(fakeZFS(t, `echo "cannot destroy '$2': snapshot has dependent clones" >&2; exit 0`))
		err := d.Destroy(ctx, "tank@s1")
		var te *ToolError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "cannot destroy 'tank@s1': snapshot has dependent clones", te.Message)
		assert.Equal(t, "tank@s1", te.Identifier)
	})

	t.Run("silent non-zero exit", func(t *testing.T) {
		t.Parallel()
		d := NewZFSDestroyer(fakeZFS(t, `exit 1`))
		var te *ToolError
		assert.ErrorAs(t, d.Destroy(ctx, "tank@s1"), &te)
	})

	t.Run("missing command", func(t *testing.T) {
		t.Parallel()
		d := NewZFSDestroyer("snapsweep-test-no-such-zfs")
		assert.ErrorIs(t, d.Destroy(ctx, "tank@s1"), common.ErrZFSCommandNotFound)
		assert.ErrorIs(t, d.Check(), common.ErrZFSCommandNotFound)
	})

	t.Run("default command", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "zfs", NewZFSDestroyer("").Command)
	})
}

func TestClassify(t *testing.T) {
	t.Parallel()

	err := classify("tank@s1", &ToolError{Message: "cannot destroy snapshots: permission denied"})
	assert.ErrorIs(t, err, common.ErrDestroyPermissionDenied)
	assert.NotErrorIs(t, err, common.ErrDestroyFailure)

	err = classify("tank@s1", &ToolError{Message: "dataset does not exist"})
	assert.ErrorIs(t, err, common.ErrDestroyFailure)
	assert.True(t, strings.HasSuffix(err.Error(), "dataset does not exist"))

	cause := errors.New("boom")
	err = classify("tank@s1", cause)
	assert.ErrorIs(t, err, common.ErrDestroyFailure)
	assert.ErrorIs(t, err, cause)
}

func TestCheckWipePreconditions(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "tank", "docs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "tank", "docs", "live.txt"), []byte("x"), 0644))
	fs := osfs.New(root)

	idx := mounts.NewIndex([]mounts.MountEntry{
		{MountPath: "/tank", Source: "tank", Kind: mounts.KindZFS},
		{MountPath: "/vol", Source: "/dev/sdb", Kind: mounts.KindBtrfs},
	})
	resolver := mounts.NewResolver(idx)

	tests := []struct {
		name      string
		snapPoint string
		paths     []string
		wantErr   error
	}{
		{"deleted files on zfs", "", []string{"/tank/docs/gone.txt", "/tank/other.txt"}, nil},
		{"live file", "", []string{"/tank/docs/gone.txt", "/tank/docs/live.txt"}, common.ErrLiveFileWipe},
		{"btrfs dataset", "", []string{"/vol/a/gone.txt"}, common.ErrNonZFSDataset},
		{"no dataset", "", []string{"/nowhere/x/gone.txt"}, common.ErrNoDatasetFound},
		{"snap point", "/tank", []string{"/home/u/gone.txt"}, nil},
		{"unknown snap point", "/mnt/remote", []string{"/home/u/gone.txt"}, common.ErrNoDatasetFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := CheckWipePreconditions(fs, resolver, tt.snapPoint, tt.paths)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
