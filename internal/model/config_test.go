package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	assert.Equal(t, "dark", cfg.Display.Theme)
	assert.Equal(t, 30, cfg.Display.PollIntervalSec)

	// A fresh install must boot without any config file, so the state
	// paths need usable defaults too.
	assert.NotEmpty(t, cfg.Storage.LogPath)
	assert.NotEmpty(t, cfg.Storage.DBPath)
	assert.Equal(t, filepath.Dir(DefaultConfigPath()), filepath.Dir(cfg.Storage.LogPath))
}

func TestLoadConfigBackfillsEmptyStoragePaths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"storage:\n  db_path: \"\"\n  log_path: \"\"\n",
	), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Storage.DBPath)
	assert.NotEmpty(t, cfg.Storage.LogPath)
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := &AppConfig{
		API:     APIConfig{BaseURL: "https://tm.example.com/api"},
		Display: DisplayConfig{Theme: "light", PollIntervalSec: 15},
		Storage: StorageConfig{DBPath: "/tmp/tm.db", LogPath: "/tmp/tm.log"},
	}
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://tm.example.com/api", loaded.API.BaseURL)
	assert.Equal(t, "light", loaded.Display.Theme)
	assert.Equal(t, 15, loaded.Display.PollIntervalSec)
	assert.Equal(t, "/tmp/tm.db", loaded.Storage.DBPath)
}

func TestLoadConfigClampsPollInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"display:\n  poll_interval_sec: -5\n",
	), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Display.PollIntervalSec)
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleAdmin, ParseRole("ADMIN"))
	assert.Equal(t, RoleTester, ParseRole(" tester "))

	unknown := ParseRole("guest")
	assert.False(t, unknown.Known())
	assert.True(t, RoleManager.Known())
}

func TestUserDisplayName(t *testing.T) {
	full := User{Username: "nkaci", FirstName: "Nadia", LastName: "Kaci"}
	assert.Equal(t, "Nadia Kaci", full.DisplayName())

	bare := User{Username: "nkaci"}
	assert.Equal(t, "nkaci", bare.DisplayName())
}
