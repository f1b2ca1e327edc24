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

// Package settings locates the snapsweep configuration directory and loads
// settings.yaml, layering environment overrides on top.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"snapsweep/internal/artifacts"
)

// ConfigDir returns the config directory path.
// Uses SNAPSWEEP_CONFIG_DIR env var if set, otherwise defaults to ~/.snapsweep.
// Computed on every call so tests can isolate themselves.
func ConfigDir() string {
	if dir := os.Getenv("SNAPSWEEP_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".snapsweep")
}

// SettingsPath returns the settings file path
func SettingsPath() string {
	return filepath.Join(ConfigDir(), "settings.yaml")
}

// JournalPath returns the path of the destroy-run journal database
func JournalPath() string {
	return filepath.Join(ConfigDir(), "journal.db")
}

// LockPath returns the lock file guarding destroy runs
func LockPath() string {
	return filepath.Join(ConfigDir(), "destroy.lock")
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	return os.MkdirAll(ConfigDir(), 0700)
}

// InitConfigDir creates the config directory and writes the default
// settings file if none exists yet.
func InitConfigDir() error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	settingsPath := SettingsPath()
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		if err := os.WriteFile(settingsPath, artifacts.GlobalSettings, 0600); err != nil {
			return fmt.Errorf("failed to create default settings: %w", err)
		}
	}
	return nil
}

// Settings represents the user's settings.yaml
type Settings struct {
	LogLevel      string `yaml:"log_level"`      // trace, debug, info, warn, error
	ZFSCommand    string `yaml:"zfs_command"`    // default: "zfs"
	Workers       int    `yaml:"workers"`        // lookup pool size, 0 = NumCPU
	NoLive        bool   `yaml:"no_live"`        // omit live copies
	AltReplicated bool   `yaml:"alt_replicated"` // search replicated datasets too
	SnapPoint     string `yaml:"snap_point"`     // fixed dataset mount, empty = resolve per file
	LocalDir      string `yaml:"local_dir"`      // root stripped from paths when SnapPoint is set
	Journal       *bool  `yaml:"journal"`        // default: true (pointer to detect missing)
}

// envOverrides are read from SNAPSWEEP_* variables. Empty values leave the
// file settings untouched.
type envOverrides struct {
	LogLevel   string `envconfig:"LOG_LEVEL"`
	ZFSCommand string `envconfig:"ZFS_COMMAND"`
	Workers    int    `envconfig:"WORKERS"`
}

// ApplyDefaults fills zero-value fields with their defaults.
func (s *Settings) ApplyDefaults() {
	if s.LogLevel == "" {
		s.LogLevel = "warn"
	}
	if s.ZFSCommand == "" {
		s.ZFSCommand = "zfs"
	}
	if s.Workers < 0 {
		s.Workers = 0
	}
	if s.Journal == nil {
		t := true
		s.Journal = &t
	}
}

// JournalEnabled returns whether destroy runs are journaled (defaults to true).
func (s *Settings) JournalEnabled() bool {
	if s.Journal == nil {
		return true
	}
	return *s.Journal
}

// Level returns the normalized (lowercase) log level.
func (s *Settings) Level() string {
	return strings.ToLower(strings.TrimSpace(s.LogLevel))
}

func (s *Settings) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("snapsweep", &env); err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}
	if env.LogLevel != "" {
		s.LogLevel = env.LogLevel
	}
	if env.ZFSCommand != "" {
		s.ZFSCommand = env.ZFSCommand
	}
	if env.Workers > 0 {
		s.Workers = env.Workers
	}
	return nil
}

// loadDefaultSettings parses default settings from the embedded artifact.
func loadDefaultSettings() Settings {
	var s Settings
	if err := yaml.Unmarshal(artifacts.GlobalSettings, &s); err != nil {
		panic("failed to parse embedded settings: " + err.Error())
	}
	return s
}

// Load reads settings.yaml, falling back to the embedded defaults when the
// file does not exist, then applies defaults and environment overrides.
func Load() (*Settings, error) {
	return LoadFromPath(SettingsPath())
}

// LoadFromPath is Load for an explicit settings file.
func LoadFromPath(path string) (*Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		s = loadDefaultSettings()
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	s.ApplyDefaults()
	if err := s.applyEnv(); err != nil {
		return nil, err
	}
	return &s, nil
}
