// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for proxychat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.proxychat/config.toml
//   - ~/.proxychat/config.json
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/proxychat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURE
// =============================================================================

// Config represents the complete proxychat configuration.
type Config struct {
	// ProxyURL is the base URL of the local completion proxy.
	ProxyURL string `toml:"proxy_url" json:"proxy_url"`

	// DefaultModel is the model used until the user picks another one.
	DefaultModel string `toml:"default_model" json:"default_model"`

	// MaxTokens is the generation cap sent with every completion request.
	MaxTokens int `toml:"max_tokens" json:"max_tokens"`

	// RequestTimeoutSecs bounds each completion request.
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs"`

	// HealthIntervalSecs is the proxy health poll cadence.
	HealthIntervalSecs int `toml:"health_interval_secs" json:"health_interval_secs"`

	// HistoryPath is the chat history snapshot file.
	// Empty means ~/.proxychat/history.json.
	HistoryPath string `toml:"history_path" json:"history_path"`

	// SearchIndexPath is the transcript search database.
	// Empty means ~/.proxychat/search.db.
	SearchIndexPath string `toml:"search_index_path" json:"search_index_path"`

	// Plain starts the line-oriented REPL instead of the full TUI.
	Plain bool `toml:"plain" json:"plain"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		ProxyURL:           "http://localhost:8080",
		DefaultModel:       "claude-3-5-sonnet-20241022",
		MaxTokens:          4096,
		RequestTimeoutSecs: 120,
		HealthIntervalSecs: 5,
	}
}

// RequestTimeout returns the completion request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// HealthInterval returns the health poll cadence as a duration.
func (c *Config) HealthInterval() time.Duration {
	return time.Duration(c.HealthIntervalSecs) * time.Second
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the proxychat configuration directory (~/.proxychat).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".proxychat"), nil
}

// EnsureConfigDir creates the configuration directory if needed.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// resolvePaths fills in the default history and search index locations.
func (c *Config) resolvePaths() error {
	if c.HistoryPath != "" && c.SearchIndexPath != "" {
		return nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if c.HistoryPath == "" {
		c.HistoryPath = filepath.Join(dir, "history.json")
	}
	if c.SearchIndexPath == "" {
		c.SearchIndexPath = filepath.Join(dir, "search.db")
	}
	return nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration from disk, applying defaults for anything not
// set, then environment overrides, then validation.
func Load() (*Config, error) {
	cfg := Default()

	dir, err := ConfigDir()
	if err == nil {
		if err := loadFile(filepath.Join(dir, "config.toml"), cfg, toml.Unmarshal); err != nil {
			return nil, err
		}
		if err := loadFile(filepath.Join(dir, "config.json"), cfg, json.Unmarshal); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile merges one config file into cfg. A missing file is not an error; a
// present but unparsable one is, so a typo does not silently fall back to
// defaults.
func loadFile(path string, cfg *Config, unmarshal func([]byte, any) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// applyEnv applies PROXYCHAT_* environment overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv("PROXYCHAT_URL"); v != "" {
		c.ProxyURL = v
	}
	if v := os.Getenv("PROXYCHAT_MODEL"); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv("PROXYCHAT_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxTokens = n
		}
	}
	if v := os.Getenv("PROXYCHAT_HISTORY"); v != "" {
		c.HistoryPath = v
	}
	if v := os.Getenv("PROXYCHAT_PLAIN"); v != "" {
		c.Plain = v == "1" || v == "true"
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ProxyURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("proxy_url must be an absolute http(s) URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("proxy_url has unsupported scheme %q", u.Scheme)
	}
	if c.MaxTokens <= 0 {
		return errors.New("max_tokens must be positive")
	}
	if c.RequestTimeoutSecs <= 0 {
		return errors.New("request_timeout_secs must be positive")
	}
	if c.HealthIntervalSecs <= 0 {
		return errors.New("health_interval_secs must be positive")
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to ~/.proxychat/config.toml atomically.
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return util.AtomicWriteFile(filepath.Join(dir, "config.toml"), buf.Bytes(), 0600)
}
