// Package config loads environment-based configuration for coopsync.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration for coopsync.
type Config struct {
	// Path to the bbolt database file. Defaults to ~/.coopsync/coopsync.db
	// when empty.
	DBPath string `env:"COOPSYNC_DB_PATH"`

	// Address the UI-facing HTTP server listens on.
	ListenAddr string `env:"COOPSYNC_LISTEN_ADDR" envDefault:":8084"`

	// Branch written to and read from in the remote repository.
	Branch string `env:"COOPSYNC_BRANCH" envDefault:"main"`

	// Directory inside the repository holding the entity JSON files.
	DataDir string `env:"COOPSYNC_DATA_DIR" envDefault:"data"`

	// Environment controls log format.
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("determining home directory: %w", err)
		}

		cfg.DBPath = filepath.Join(home, ".coopsync", "coopsync.db")
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("COOPSYNC_LISTEN_ADDR must not be empty")
	}

	if c.Branch == "" {
		return fmt.Errorf("COOPSYNC_BRANCH must not be empty")
	}

	if c.DataDir == "" {
		return fmt.Errorf("COOPSYNC_DATA_DIR must not be empty")
	}

	return nil
}
