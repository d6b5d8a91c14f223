// Package config reads the server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/erazemk/dresi/internal/saga"
)

// Config holds the server settings. CLI flags may override them.
type Config struct {
	DBPath     string
	Addr       string
	AdminUser  string
	LogPath    string
	JWTSecret  string
	TokenTTL   time.Duration
	Compensate bool
}

// Load reads envFile if it exists, then builds the config from the
// environment. Variables already set win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	ttl, err := time.ParseDuration(getEnv("DRESI_TOKEN_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("DRESI_TOKEN_TTL: %w", err)
	}
	compensate, err := strconv.ParseBool(getEnv("DRESI_COMPENSATE", "false"))
	if err != nil {
		return nil, fmt.Errorf("DRESI_COMPENSATE: %w", err)
	}

	cfg := &Config{
		DBPath:     getEnv("DRESI_DB", "dresi.sqlite3"),
		Addr:       getEnv("DRESI_ADDR", ":8080"),
		AdminUser:  getEnv("DRESI_ADMIN", "admin"),
		LogPath:    os.Getenv("DRESI_LOG"),
		JWTSecret:  os.Getenv("DRESI_JWT_SECRET"),
		TokenTTL:   ttl,
		Compensate: compensate,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable fallback.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("database path is required")
	}
	if c.Addr == "" {
		return errors.New("listen address is required")
	}
	if c.AdminUser == "" {
		return errors.New("admin username is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 16 {
		return errors.New("DRESI_JWT_SECRET must be at least 16 characters")
	}
	return nil
}

// Mode returns the saga mode for sale stock cascades.
func (c *Config) Mode() saga.Mode {
	if c.Compensate {
		return saga.Compensate
	}
	return saga.BestEffort
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
