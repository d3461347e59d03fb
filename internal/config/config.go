// Package config loads minitodo settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Environment variables that override the config file.
const (
	EnvDB          = "MINITODO_DB"
	EnvBackend     = "MINITODO_BACKEND"
	EnvLogLevel    = "MINITODO_LOG_LEVEL"
	EnvLogFile     = "MINITODO_LOG_FILE"
	EnvConcurrency = "MINITODO_INGEST_CONCURRENCY"
)

// DefaultConcurrency is the default cap on concurrent file reads during bulk
// ingestion.
const DefaultConcurrency = 16

// Config is the full set of runtime settings.
type Config struct {
	Backend string       `yaml:"backend"`
	DBPath  string       `yaml:"db_path"`
	Log     LogConfig    `yaml:"log"`
	Ingest  IngestConfig `yaml:"ingest"`

	// DataDir holds the default database and config file. Not read from YAML.
	DataDir string `yaml:"-"`
}

// LogConfig controls the root logger.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`        // empty logs to stderr
	MaxSizeMB  int    `yaml:"max_size_mb"` // rotation threshold for File
	MaxBackups int    `yaml:"max_backups"`
}

// IngestConfig tunes bulk folder ingestion.
type IngestConfig struct {
	Concurrency int      `yaml:"concurrency"`
	Exclude     []string `yaml:"exclude"` // doublestar patterns, relative to the folder
}

// DataDir returns ~/.minitodo.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".minitodo"), nil
}

// DefaultPath returns the config file location inside dataDir.
func DefaultPath(dataDir string) string {
	return filepath.Join(dataDir, "config.yaml")
}

// DefaultConfig returns a Config with defaults for dataDir.
func DefaultConfig(dataDir string) Config {
	return Config{
		Backend: BackendSQLite,
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Ingest: IngestConfig{
			Concurrency: DefaultConcurrency,
		},
		DataDir: dataDir,
	}
}

// Load reads configuration from configPath, then applies environment
// overrides and defaults. A missing file is not an error.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig(dataDir)

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
			cfg.DataDir = dataDir
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDB); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv(EnvConcurrency); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvConcurrency, err)
		}
		c.Ingest.Concurrency = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig(c.DataDir)
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = defaults.Backend
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Ingest.Concurrency == 0 {
		c.Ingest.Concurrency = defaults.Ingest.Concurrency
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendJSON:
	default:
		return fmt.Errorf("backend must be %q or %q, got %q", BackendSQLite, BackendJSON, c.Backend)
	}
	if c.DBPath == "" && c.DataDir == "" {
		return fmt.Errorf("db_path or data directory is required")
	}
	if c.Ingest.Concurrency < 1 {
		return fmt.Errorf("ingest.concurrency must be at least 1")
	}
	return nil
}

// StorePath returns the database file for the configured backend. Without an
// explicit db_path, each backend gets its own file in the data directory.
func (c *Config) StorePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	if c.Backend == BackendJSON {
		return filepath.Join(c.DataDir, "todos.json")
	}
	return filepath.Join(c.DataDir, "todos.db")
}
