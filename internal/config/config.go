package config

import (
	"os"
	"path/filepath"
	"strconv"

	"tabkit/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Storage StorageConfig
	History HistoryConfig
}

// StorageConfig holds persistence settings. DatabaseURL is optional; when
// empty the application runs purely file-based.
type StorageConfig struct {
	DataDir     string
	DatabaseURL string
}

// HistoryConfig holds undo/redo settings
type HistoryConfig struct {
	MaxUndoLevels int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Storage: StorageConfig{
			DataDir:     getEnvOrDefault("TABKIT_DATA_DIR", defaultDataDir()),
			DatabaseURL: getEnvOrDefault("DATABASE_URL", ""),
		},
		History: HistoryConfig{
			MaxUndoLevels: getEnvIntOrDefault("MAX_UNDO_LEVELS", 10),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".tabkit")
}

func validateConfig(config *Config) error {
	if config.Storage.DataDir == "" {
		return errors.ConfigInvalid("data directory is required")
	}
	if config.History.MaxUndoLevels < 1 {
		return errors.ConfigInvalid("MAX_UNDO_LEVELS must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
