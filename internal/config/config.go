package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingToken is returned when the archive bearer token is not set.
var ErrMissingToken = errors.New("ZTF_ARCHIVE_TOKEN is required")

// Config holds application configuration loaded from environment.
type Config struct {
	Archive struct {
		Token   string
		BaseURL string
	}
	Stream struct {
		RetryBase   time.Duration
		RetryBudget time.Duration
	}
	Cache struct {
		Dir string // empty means the platform default
	}
}

// Load reads environment variables, applies defaults, and returns a Config.
// Missing ZTF_ARCHIVE_TOKEN is fatal.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	cfg.Archive.Token = os.Getenv("ZTF_ARCHIVE_TOKEN")
	if cfg.Archive.Token == "" {
		return Config{}, ErrMissingToken
	}

	cfg.Archive.BaseURL = os.Getenv("ZTF_ARCHIVE_BASE_URL")

	cfg.Stream.RetryBase = time.Second
	if v := os.Getenv("ZTF_RETRY_BASE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ZTF_RETRY_BASE: %w", err)
		}
		cfg.Stream.RetryBase = d
	}

	cfg.Stream.RetryBudget = time.Hour
	if v := os.Getenv("ZTF_RETRY_BUDGET"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ZTF_RETRY_BUDGET: %w", err)
		}
		cfg.Stream.RetryBudget = d
	}

	cfg.Cache.Dir = os.Getenv("ZTF_CACHE_DIR")

	return cfg, nil
}
