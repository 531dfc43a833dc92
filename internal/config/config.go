package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds tool settings shared by the updater components.
type Config struct {
	// APIBaseURL is the base endpoint of the Paper download API.
	APIBaseURL string `yaml:"api_base_url"`
	// Timeout bounds every HTTP request including the full download body.
	// Zero keeps the transport default.
	Timeout time.Duration `yaml:"timeout"`
	// ServerProcess is the executable name looked for before installing.
	// A running server usually holds the target file open; empty disables
	// the preflight scan.
	ServerProcess string `yaml:"server_process"`
}

const (
	// DefaultConfigFilename is the default filename for tool settings.
	DefaultConfigFilename = "paper-updater-settings.yaml"

	// DefaultAPIBaseURL is the Paper download API used when settings provide none.
	DefaultAPIBaseURL = "https://papermc.io/api/v1/paper"

	// DefaultServerProcess is the executable name of a typical server runtime.
	DefaultServerProcess = "java"

	// DefaultFilePermissions is the default file permission for settings files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBaseURLRequired is returned when the API base URL is missing.
	errBaseURLRequired = errors.New("API base URL must be provided")
	// errNegativeTimeout is returned when the timeout is below zero.
	errNegativeTimeout = errors.New("timeout must not be negative")
)

// Default returns settings with every field at its default value.
func Default() *Config {
	return &Config{
		APIBaseURL:    DefaultAPIBaseURL,
		ServerProcess: DefaultServerProcess,
	}
}

// Load reads settings from the provided path and validates essential fields.
// An empty path means the default filename; a missing file at the default
// location is not an error and yields the defaults.
func Load(path string) (*Config, error) {
	usingDefaultPath := path == ""
	if usingDefaultPath {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if usingDefaultPath && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting,
// filling defaults for omitted ones.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}

	parsed, err := url.ParseRequestURI(cfg.APIBaseURL)
	if err != nil {
		return fmt.Errorf("invalid API base URL: %w", err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return errBaseURLRequired
	}

	if cfg.Timeout < 0 {
		return errNegativeTimeout
	}

	return nil
}
