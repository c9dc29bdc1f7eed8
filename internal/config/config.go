// Package config loads application configuration from the environment. All
// paths are explicit so services never reach for ambient global directories.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config is the complete application configuration.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Train    TrainConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// StorageConfig holds the artifact directories.
type StorageConfig struct {
	UploadDir string
	ModelDir  string
}

// DatabaseConfig holds the optional training-run database settings. An
// empty URL disables run recording.
type DatabaseConfig struct {
	URL string
}

// TrainConfig tunes the training defaults.
type TrainConfig struct {
	Trees        int
	TestFraction float64
	Seed         int64
}

// Load reads configuration from environment variables, applying defaults
// for anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Storage: StorageConfig{
			UploadDir: getEnv("UPLOAD_DIR", "data/uploads"),
			ModelDir:  getEnv("MODEL_DIR", "data/models"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Train: TrainConfig{
			Trees:        getEnvInt("TRAIN_TREES", 100),
			TestFraction: getEnvFloat("TRAIN_TEST_FRACTION", 0.2),
			Seed:         int64(getEnvInt("TRAIN_SEED", 42)),
		},
	}

	if cfg.Train.TestFraction <= 0 || cfg.Train.TestFraction >= 1 {
		return nil, fmt.Errorf("TRAIN_TEST_FRACTION must be in (0, 1), got %g", cfg.Train.TestFraction)
	}
	if cfg.Train.Trees < 1 {
		return nil, fmt.Errorf("TRAIN_TREES must be positive, got %d", cfg.Train.Trees)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
