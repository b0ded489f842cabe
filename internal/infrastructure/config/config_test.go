// Package config internal/infrastructure/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.OutputDir)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, time.Date(2010, time.July, 1, 0, 0, 0, 0, time.UTC), cfg.StartMonth)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.FetchPause)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("EZV_OUTPUT_DIR", "/tmp/rates")
	t.Setenv("EZV_BASE_URL", "http://localhost:8080/getxml")
	t.Setenv("EZV_START_MONTH", "2015-03-15")
	t.Setenv("EZV_HTTP_TIMEOUT", "5s")
	t.Setenv("EZV_FETCH_PAUSE", "0s")
	t.Setenv("EZV_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/rates", cfg.OutputDir)
	assert.Equal(t, "http://localhost:8080/getxml", cfg.BaseURL)
	// The start month is truncated to the first of its month
	assert.Equal(t, time.Date(2015, time.March, 1, 0, 0, 0, 0, time.UTC), cfg.StartMonth)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, time.Duration(0), cfg.FetchPause)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadInvalidValues(t *testing.T) {
	t.Run("bad start month", func(t *testing.T) {
		t.Setenv("EZV_START_MONTH", "July 2010")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "EZV_START_MONTH")
	})

	t.Run("bad timeout", func(t *testing.T) {
		t.Setenv("EZV_HTTP_TIMEOUT", "fast")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "EZV_HTTP_TIMEOUT")
	})

	t.Run("negative pause", func(t *testing.T) {
		t.Setenv("EZV_FETCH_PAUSE", "-1s")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "EZV_FETCH_PAUSE")
	})
}
