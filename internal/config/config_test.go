package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingTokenIsFatal(t *testing.T) {
	t.Setenv("ZTF_ARCHIVE_TOKEN", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ZTF_ARCHIVE_TOKEN", "secret")
	t.Setenv("ZTF_ARCHIVE_BASE_URL", "")
	t.Setenv("ZTF_RETRY_BASE", "")
	t.Setenv("ZTF_RETRY_BUDGET", "")
	t.Setenv("ZTF_CACHE_DIR", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Archive.Token)
	assert.Empty(t, cfg.Archive.BaseURL)
	assert.Equal(t, time.Second, cfg.Stream.RetryBase)
	assert.Equal(t, time.Hour, cfg.Stream.RetryBudget)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ZTF_ARCHIVE_TOKEN", "secret")
	t.Setenv("ZTF_ARCHIVE_BASE_URL", "https://archive.test/v3")
	t.Setenv("ZTF_RETRY_BASE", "250ms")
	t.Setenv("ZTF_RETRY_BUDGET", "10m")
	t.Setenv("ZTF_CACHE_DIR", "/tmp/ztf-cache")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://archive.test/v3", cfg.Archive.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Stream.RetryBase)
	assert.Equal(t, 10*time.Minute, cfg.Stream.RetryBudget)
	assert.Equal(t, "/tmp/ztf-cache", cfg.Cache.Dir)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("ZTF_ARCHIVE_TOKEN", "secret")
	t.Setenv("ZTF_RETRY_BUDGET", "soon")

	_, err := Load()
	assert.Error(t, err)
}
