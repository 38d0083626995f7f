package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/jpalmerr/forgedeck/config"
	"github.com/jpalmerr/forgedeck/internal/logging"
)

// loadConfig loads the file named by --config or FORGEDECK_CONFIG, then
// forgedeck.yaml in the working directory, then falls back to defaults.
func loadConfig() (*config.Config, string, error) {
	if path := settings.GetString("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, path, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, path, nil
	}

	if _, err := os.Stat(defaultConfigFile); err == nil {
		cfg, err := config.Load(defaultConfigFile)
		if err != nil {
			return nil, defaultConfigFile, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, defaultConfigFile, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, defaultConfigFile, fmt.Errorf("failed to stat config: %w", err)
	}

	return config.Default(), "", nil
}

// newLogger builds the logger from the flag or environment level, falling
// back to the config file's level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := settings.GetString("log_level")
	if level == "" {
		level = cfg.LogLevel
	}
	return logging.New(level, cfg.LogFile)
}
