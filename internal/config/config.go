// Package config loads the gitdeck configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Refresh policies for overlapping refresh requests.
const (
	PolicyDrop  = "drop"
	PolicyQueue = "queue"
)

// AppConfig defines the gitdeck configuration options.
type AppConfig struct {
	// HistoryPageSize is the commit count fetched initially and added by
	// each load-more.
	HistoryPageSize int `yaml:"history_page_size"`
	// RefreshPolicy decides whether a refresh arriving while one is in
	// flight for the same slice is dropped or queued.
	RefreshPolicy string `yaml:"refresh_policy"`
	// AutoRefresh watches the git directory and refreshes on changes.
	AutoRefresh bool `yaml:"auto_refresh"`
	// RefreshInterval adds a periodic refresh every N seconds, 0 disables.
	RefreshInterval int `yaml:"refresh_interval"`
	// CommandTimeout bounds each git invocation in seconds, 0 means none.
	CommandTimeout int `yaml:"command_timeout"`
	// DebugLog is the path of the debug log file.
	DebugLog string `yaml:"debug_log"`
	// GitPath overrides the git executable.
	GitPath string `yaml:"git_path"`
}

// DefaultConfig returns the default configuration values.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		HistoryPageSize: 20,
		RefreshPolicy:   PolicyDrop,
		AutoRefresh:     true,
		RefreshInterval: 0,
		CommandTimeout:  0,
		GitPath:         "git",
	}
}

// LoadConfig reads the configuration file, falling back to defaults for
// missing keys. The path is resolved from the explicit argument, then
// $GITDECK_CONFIG, then ~/.config/gitdeck/config.yaml. A missing file is
// not an error; a malformed one is.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := DefaultConfig()

	resolved, err := resolvePath(path)
	if err != nil {
		return cfg, err
	}
	if resolved == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(resolved) //nolint:gosec
	if err != nil {
		if os.IsNotExist(err) && path == "" {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", resolved, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", resolved, err)
	}

	cfg.normalize()
	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		return ExpandPath(path)
	}
	if env := os.Getenv("GITDECK_CONFIG"); env != "" {
		return ExpandPath(env)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", nil
	}
	return filepath.Join(home, ".config", "gitdeck", "config.yaml"), nil
}

func (c *AppConfig) normalize() {
	if c.HistoryPageSize <= 0 {
		c.HistoryPageSize = 20
	}
	if c.RefreshPolicy != PolicyQueue {
		c.RefreshPolicy = PolicyDrop
	}
	if c.RefreshInterval < 0 {
		c.RefreshInterval = 0
	}
	if c.CommandTimeout < 0 {
		c.CommandTimeout = 0
	}
	if c.GitPath == "" {
		c.GitPath = "git"
	}
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "~" || len(path) > 1 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding %s: %w", path, err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
