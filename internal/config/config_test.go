package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ACCESS_TOKEN", "token-123")
	t.Setenv("USER_NAME", "")
	t.Setenv("CACHE_DIR", "")
	t.Setenv("ARCHIVE_OWNER", "")
	t.Setenv("CACHE_HEADER_LINES", "")
	t.Setenv("HTTP_TIMEOUT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "token-123", cfg.AccessToken)
	assert.Equal(t, "ntananh", cfg.Login)
	assert.Equal(t, "cache", cfg.CacheDir)
	assert.Equal(t, "ntananh", cfg.ArchiveOwner)
	assert.Equal(t, 7, cfg.HeaderSize)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ACCESS_TOKEN", "token-123")
	t.Setenv("USER_NAME", "octocat")
	t.Setenv("CACHE_DIR", "/tmp/stats-cache")
	t.Setenv("CACHE_HEADER_LINES", "3")
	t.Setenv("HTTP_TIMEOUT", "2m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "octocat", cfg.Login)
	assert.Equal(t, 3, cfg.HeaderSize)
	assert.Equal(t, 2*time.Minute, cfg.HTTPTimeout)
	assert.Equal(t, "/tmp/stats-cache/repository_archive.txt", cfg.ArchivePath())
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("CACHE_HEADER_LINES", "not-a-number")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("CACHE_HEADER_LINES", "7")
	t.Setenv("HTTP_TIMEOUT", "soon")
	_, err = Load()
	assert.Error(t, err)
}
