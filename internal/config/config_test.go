package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and format validations for settings.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Nil settings.
	err := Validate(nil)
	require.Error(t, err)

	// Empty base URL falls back to the default.
	cfg := new(Config)

	err = Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)

	// Bad base URL.
	cfg = &Config{
		APIBaseURL: "not a url",
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Negative timeout.
	cfg = &Config{
		APIBaseURL: "https://example.com/api",
		Timeout:    -time.Second,
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Okay with overrides.
	cfg = &Config{
		APIBaseURL:    "https://mirror.local/paper",
		Timeout:       30 * time.Second,
		ServerProcess: "java",
	}

	err = Validate(cfg)
	require.NoError(t, err)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		APIBaseURL:    "https://mirror.local/paper",
		Timeout:       time.Minute,
		ServerProcess: "java",
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.APIBaseURL, loaded.APIBaseURL)
	require.Equal(t, cfg.Timeout, loaded.Timeout)
	require.Equal(t, cfg.ServerProcess, loaded.ServerProcess)
}

// TestLoadMissingDefault returns defaults when the default settings file is absent.
func TestLoadMissingDefault(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	require.Equal(t, DefaultServerProcess, cfg.ServerProcess)
}

// TestLoadMissingExplicit fails when an explicitly requested file is absent.
func TestLoadMissingExplicit(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
