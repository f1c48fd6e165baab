// Package config provides configuration loading and validation for the
// server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config represents the runtime configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or environment
// variables.
type Config struct {
	// Server
	ListenAddr string `json:"listen_addr,omitempty"` // HTTP listen address

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL; empty selects the in-memory store

	// Identity
	JWTSecret       string `json:"jwt_secret,omitempty"`       // HS256 secret for approver identity tokens
	DefaultApprover string `json:"default_approver,omitempty"` // Approver recorded when a request carries no identity

	// Observability
	LogLevel         string `json:"log_level,omitempty"`         // debug | info | warn | error
	LogJSON          bool   `json:"log_json,omitempty"`          // JSON log encoding for production
	MetricsNamespace string `json:"metrics_namespace,omitempty"` // Prometheus metric namespace
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		ListenAddr:       ":8080",
		LogLevel:         "info",
		MetricsNamespace: "designdeck",
		DefaultApprover:  "design-lead",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overlays environment variables onto the config. Set variables win
// over file values.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("DESIGNDECK_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("DESIGNDECK_DEFAULT_APPROVER"); v != "" {
		c.DefaultApprover = v
	}
	if v := os.Getenv("DESIGNDECK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("DESIGNDECK_LOG_JSON"); v != "" {
		c.LogJSON = v == "1" || strings.EqualFold(v, "true")
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config error: unknown log_level %q", c.LogLevel)
	}

	if c.ListenAddr == "" {
		return fmt.Errorf("config error: 'listen_addr' cannot be empty")
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. File and environment values win over defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.JWTSecret == "" {
		result.JWTSecret = defaults.JWTSecret
	}
	if result.DefaultApprover == "" {
		result.DefaultApprover = defaults.DefaultApprover
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.MetricsNamespace == "" {
		result.MetricsNamespace = defaults.MetricsNamespace
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
