// Package config loads application configuration from an optional TOML
// file, falling back to defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Confirm  ConfirmConfig  `toml:"confirm"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// ConfirmConfig tunes the double-press confirmation flow.
type ConfirmConfig struct {
	// TimeoutSeconds is the maximum gap between the first and second press.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// DisplaySeconds is how long the confirmed indicator stays up.
	DisplaySeconds int `toml:"display_seconds"`
}

func (c ConfirmConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c ConfirmConfig) DisplayTime() time.Duration {
	return time.Duration(c.DisplaySeconds) * time.Second
}

// Default returns the stock configuration.
func Default() *Config {
	cfgDir, _ := os.UserConfigDir()
	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(cfgDir, "home-maintenance", "maintenance.db"),
		},
		Confirm: ConfirmConfig{
			TimeoutSeconds: 5,
			DisplaySeconds: 3,
		},
	}
}

// Load reads the config from the standard location, returning defaults
// when no file exists.
func Load() (*Config, error) {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("getting config dir: %w", err)
	}
	return LoadFrom(filepath.Join(cfgDir, "home-maintenance", "config.toml"))
}

// LoadFrom reads the config from a specific path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if cfg.Confirm.TimeoutSeconds <= 0 {
		cfg.Confirm.TimeoutSeconds = 5
	}
	if cfg.Confirm.DisplaySeconds <= 0 {
		cfg.Confirm.DisplaySeconds = 3
	}
	return cfg, nil
}
