// Package config loads booksearch settings from an optional YAML file and
// BOOKSEARCH_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultDBPath is the database location used when none is configured
const DefaultDBPath = "~/.booksearch/booksearch.db"

type Config struct {
	DBPath    string        `yaml:"db_path" env:"BOOKSEARCH_DB_PATH" env-default:"~/.booksearch/booksearch.db"`
	LogLevel  string        `yaml:"log_level" env:"BOOKSEARCH_LOG_LEVEL" env-default:"INFO"`
	CacheSize int           `yaml:"cache_size" env:"BOOKSEARCH_CACHE_SIZE" env-default:"1000"`
	CacheTTL  time.Duration `yaml:"cache_ttl" env:"BOOKSEARCH_CACHE_TTL" env-default:"1h"`
	Workers   int           `yaml:"workers" env:"BOOKSEARCH_WORKERS" env-default:"0"`
}

// Load reads configPath, or only the environment when configPath is empty.
// Environment variables override values from the file.
func Load(configPath string) (Config, error) {
	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("cannot read config from environment: %w", err)
		}
	} else if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return Config{}, fmt.Errorf("cannot read config %s: %w", configPath, err)
	}

	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = DefaultDBPath
	}
	expanded, err := ExpandHome(cfg.DBPath)
	if err != nil {
		return Config{}, err
	}
	cfg.DBPath = expanded
	cfg.LogLevel = strings.ToUpper(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c Config) Validate() error {
	switch c.LogLevel {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("unknown log level: %q", c.LogLevel)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive, got %d", c.CacheSize)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %s", c.CacheTTL)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// EnsureDBDir creates the directory holding the database file
func (c Config) EnsureDBDir() error {
	if c.DBPath == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

// ExpandHome replaces a leading "~" with the user's home directory
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
