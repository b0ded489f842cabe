// Package config internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultBaseURL is the production rate endpoint of the Swiss federal
// customs administration.
const DefaultBaseURL = "http://www.pwebapps.ezv.admin.ch/apps/rates/rate/getxml"

// Config holds application configuration.
type Config struct {
	OutputDir   string
	BaseURL     string
	StartMonth  time.Time
	HTTPTimeout time.Duration
	FetchPause  time.Duration
	LogLevel    string
}

// Load reads configuration from environment variables and a .env file if
// present. Real environment variables override .env values, which override
// the built-in defaults.
func Load() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("EZV_OUTPUT_DIR", "data")
	viper.SetDefault("EZV_BASE_URL", DefaultBaseURL)
	// The source has complete data for all currencies from 2010/07 on.
	viper.SetDefault("EZV_START_MONTH", "2010-07-01")
	viper.SetDefault("EZV_HTTP_TIMEOUT", "30s")
	viper.SetDefault("EZV_FETCH_PAUSE", "500ms")
	viper.SetDefault("EZV_LOG_LEVEL", "info")

	viper.AutomaticEnv()

	cfg := &Config{
		OutputDir: viper.GetString("EZV_OUTPUT_DIR"),
		BaseURL:   viper.GetString("EZV_BASE_URL"),
		LogLevel:  viper.GetString("EZV_LOG_LEVEL"),
	}

	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("EZV_OUTPUT_DIR must not be empty")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("EZV_BASE_URL must not be empty")
	}

	startStr := viper.GetString("EZV_START_MONTH")
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return nil, fmt.Errorf("invalid EZV_START_MONTH %q: %w", startStr, err)
	}
	cfg.StartMonth = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)

	timeoutStr := viper.GetString("EZV_HTTP_TIMEOUT")
	cfg.HTTPTimeout, err = time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid EZV_HTTP_TIMEOUT %q: %w", timeoutStr, err)
	}

	pauseStr := viper.GetString("EZV_FETCH_PAUSE")
	cfg.FetchPause, err = time.ParseDuration(pauseStr)
	if err != nil {
		return nil, fmt.Errorf("invalid EZV_FETCH_PAUSE %q: %w", pauseStr, err)
	}
	if cfg.FetchPause < 0 {
		return nil, fmt.Errorf("EZV_FETCH_PAUSE must not be negative, got %s", cfg.FetchPause)
	}

	return cfg, nil
}
