// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config carries everything the CLI needs at startup. The access token
// is the only value without a usable default.
type Config struct {
	AccessToken  string
	Login        string
	CacheDir     string
	ArchiveOwner string
	HeaderSize   int
	HTTPTimeout  time.Duration
}

// Load reads configuration from the environment, applying defaults.
func Load() (*Config, error) {
	headerSize, err := strconv.Atoi(getEnv("CACHE_HEADER_LINES", "7"))
	if err != nil || headerSize < 0 {
		return nil, fmt.Errorf("invalid CACHE_HEADER_LINES: %q", os.Getenv("CACHE_HEADER_LINES"))
	}
	timeout, err := time.ParseDuration(getEnv("HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %q", os.Getenv("HTTP_TIMEOUT"))
	}
	return &Config{
		AccessToken:  os.Getenv("ACCESS_TOKEN"),
		Login:        getEnv("USER_NAME", "ntananh"),
		CacheDir:     getEnv("CACHE_DIR", "cache"),
		ArchiveOwner: getEnv("ARCHIVE_OWNER", "ntananh"),
		HeaderSize:   headerSize,
		HTTPTimeout:  timeout,
	}, nil
}

// ArchivePath is where the frozen archive ledger lives, next to the
// account ledgers.
func (c *Config) ArchivePath() string {
	return filepath.Join(c.CacheDir, "repository_archive.txt")
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
