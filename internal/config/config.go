// Package config resolves heartrisk settings from defaults, an optional YAML
// file and HEARTRISK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all heartrisk configuration.
type Config struct {
	// Artifacts is the artifact bundle directory.
	Artifacts string `yaml:"artifacts"`

	// RequireChecksums makes a missing checksums.txt in the bundle fatal.
	RequireChecksums bool `yaml:"require_checksums"`

	History HistoryConfig `yaml:"history"`
	Logging LoggingConfig `yaml:"logging"`
}

// HistoryConfig controls the opt-in local prediction history.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	DB      string `yaml:"db"` // empty = store.DefaultDBPath()
}

// LoggingConfig configures the log file.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty = DefaultLogPath(); "stderr" allowed
}

// DefaultConfig returns a Config with defaults.
func DefaultConfig() Config {
	return Config{
		Artifacts: "artifacts",
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/heartrisk/config.yaml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "heartrisk", "config.yaml"), nil
}

// Load builds the configuration. path is the config file to read; when
// empty, HEARTRISK_CONFIG and then DefaultPath() are tried and a missing
// file is not an error. Environment variables override file values.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		if p := os.Getenv("HEARTRISK_CONFIG"); p != "" {
			path, explicit = p, true
		} else if p, err := DefaultPath(); err == nil {
			path = p
		}
	}

	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return cfg, err
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("HEARTRISK_ARTIFACTS"); v != "" {
		cfg.Artifacts = v
	}
	if v := os.Getenv("HEARTRISK_REQUIRE_CHECKSUMS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("HEARTRISK_REQUIRE_CHECKSUMS: %w", err)
		}
		cfg.RequireChecksums = b
	}
	if v := os.Getenv("HEARTRISK_HISTORY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("HEARTRISK_HISTORY: %w", err)
		}
		cfg.History.Enabled = b
	}
	if v := os.Getenv("HEARTRISK_DB"); v != "" {
		cfg.History.DB = v
	}
	if v := os.Getenv("HEARTRISK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("HEARTRISK_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	return nil
}
