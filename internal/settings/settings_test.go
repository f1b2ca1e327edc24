package settings

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDir(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv("SNAPSWEEP_CONFIG_DIR", "")

		dir := ConfigDir()
		assert.NotEmpty(t, dir)
		assert.True(t, strings.HasSuffix(dir, ".snapsweep"), "should end with .snapsweep")
	})

	t.Run("override with SNAPSWEEP_CONFIG_DIR", func(t *testing.T) {
		t.Setenv("SNAPSWEEP_CONFIG_DIR", "/tmp/test-snapsweep-config")
		assert.Equal(t, "/tmp/test-snapsweep-config", ConfigDir())
	})
}

func TestPathFunctions(t *testing.T) {
	t.Setenv("SNAPSWEEP_CONFIG_DIR", t.TempDir())

	tests := []struct {
		name   string
		fn     func() string
		suffix string
	}{
		{"SettingsPath", SettingsPath, "settings.yaml"},
		{"JournalPath", JournalPath, "journal.db"},
		{"LockPath", LockPath, "destroy.lock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.fn()
			assert.True(t, strings.HasSuffix(path, tt.suffix),
				"%s() = %q should end with %q", tt.name, path, tt.suffix)
			assert.True(t, strings.HasPrefix(path, ConfigDir()),
				"%s() = %q should be in config dir %q", tt.name, path, ConfigDir())
		})
	}
}

func TestInitConfigDir(t *testing.T) {
	t.Setenv("SNAPSWEEP_CONFIG_DIR", filepath.Join(t.TempDir(), "nested"))

	require.NoError(t, InitConfigDir())

	info, err := os.Stat(ConfigDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = os.Stat(SettingsPath())
	assert.NoError(t, err, "settings file should be created")

	// A second call keeps the existing file.
	require.NoError(t, os.WriteFile(SettingsPath(), []byte("log_level: debug\n"), 0600))
	require.NoError(t, InitConfigDir())
	data, err := os.ReadFile(SettingsPath())
	require.NoError(t, err)
	assert.Equal(t, "log_level: debug\n", string(data))
}

func TestLoad(t *testing.T) {
	t.Run("defaults from embedded artifact", func(t *testing.T) {
		t.Setenv("SNAPSWEEP_CONFIG_DIR", t.TempDir())

		s, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "warn", s.Level())
		assert.Equal(t, "zfs", s.ZFSCommand)
		assert.Equal(t, 0, s.Workers)
		assert.False(t, s.NoLive)
		assert.False(t, s.AltReplicated)
		assert.Empty(t, s.SnapPoint)
		assert.True(t, s.JournalEnabled())
	})

	t.Run("load written file", func(t *testing.T) {
		t.Setenv("SNAPSWEEP_CONFIG_DIR", t.TempDir())

		require.NoError(t, EnsureConfigDir())
		content := "log_level: DEBUG\nzfs_command: /sbin/zfs\nworkers: 4\nalt_replicated: true\njournal: false\n"
		require.NoError(t, os.WriteFile(SettingsPath(), []byte(content), 0600))

		s, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "debug", s.Level())
		assert.Equal(t, "/sbin/zfs", s.ZFSCommand)
		assert.Equal(t, 4, s.Workers)
		assert.True(t, s.AltReplicated)
		assert.False(t, s.JournalEnabled())
	})

	t.Run("missing keys get defaults", func(t *testing.T) {
		t.Setenv("SNAPSWEEP_CONFIG_DIR", t.TempDir())
		require.NoError(t, EnsureConfigDir())
		require.NoError(t, os.WriteFile(SettingsPath(), []byte("no_live: true\n"), 0600))

		s, err := Load()
		require.NoError(t, err)
		assert.True(t, s.NoLive)
		assert.Equal(t, "zfs", s.ZFSCommand)
		assert.True(t, s.JournalEnabled())
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("SNAPSWEEP_CONFIG_DIR", t.TempDir())
		t.Setenv("SNAPSWEEP_LOG_LEVEL", "trace")
		t.Setenv("SNAPSWEEP_ZFS_COMMAND", "/usr/local/sbin/zfs")
		t.Setenv("SNAPSWEEP_WORKERS", "7")

		s, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "trace", s.Level())
		assert.Equal(t, "/usr/local/sbin/zfs", s.ZFSCommand)
		assert.Equal(t, 7, s.Workers)
	})

	t.Run("invalid environment value", func(t *testing.T) {
		t.Setenv("SNAPSWEEP_CONFIG_DIR", t.TempDir())
		t.Setenv("SNAPSWEEP_WORKERS", "many")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.yaml")
		require.NoError(t, os.WriteFile(path, []byte("workers: [1, 2\n"), 0600))

		_, err := LoadFromPath(path)
		assert.Error(t, err)
	})
}

func TestConfigureLogging(t *testing.T) {
	defer ConfigureLogging("warn")

	var buf bytes.Buffer
	ConfigureLoggingTo(&buf, "info")
	log.Info("visible")
	log.Debug("hidden")
	assert.Contains(t, buf.String(), "visible")
	assert.NotContains(t, buf.String(), "hidden")

	buf.Reset()
	ConfigureLoggingTo(&buf, "off")
	log.Error("discarded")
	assert.Empty(t, buf.String())
}
