package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Environment: "development",
		Port:        "8080",
		Host:        "localhost",
		API: APIConfig{
			BaseURL:          "http://localhost:8000",
			Timeout:          10 * time.Second,
			InitialWatermark: "all",
		},
		Display: DisplayConfig{
			PollInterval:       5 * time.Second,
			PopupDuration:      5 * time.Second,
			SlideInterval:      4 * time.Second,
			BannerInterval:     5 * time.Second,
			ClockInterval:      time.Second,
			GalleryColumns:     3,
			GalleryColumnWidth: "col-md-4",
			TimeLocale:         "en-US",
			TimeFormat:         "15:04:05",
			DateTimeFormat:     "Monday 2 January 2006 15:04",
			View:               "gallery",
		},
		Logging: &LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Server: &ServerConfig{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
		errorCount  int
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name: "logging and server sections are optional",
			mutate: func(c *Config) {
				c.Logging = nil
				c.Server = nil
			},
		},
		{
			name: "invalid port and environment",
			mutate: func(c *Config) {
				c.Port = "99999"
				c.Environment = "qa"
			},
			expectError: true,
			errorCount:  2,
		},
		{
			name: "api url without scheme or host",
			mutate: func(c *Config) {
				c.API.BaseURL = "photobooth"
			},
			expectError: true,
			errorCount:  2,
		},
		{
			name: "api timeout and watermark",
			mutate: func(c *Config) {
				c.API.Timeout = 0
				c.API.InitialWatermark = "  "
			},
			expectError: true,
			errorCount:  2,
		},
		{
			name: "zero intervals",
			mutate: func(c *Config) {
				c.Display.PollInterval = 0
				c.Display.SlideInterval = time.Millisecond
			},
			expectError: true,
			errorCount:  2,
		},
		{
			name: "gallery columns out of range",
			mutate: func(c *Config) {
				c.Display.GalleryColumns = 0
			},
			expectError: true,
			errorCount:  1,
		},
		{
			name: "unknown view and empty formats",
			mutate: func(c *Config) {
				c.Display.View = "wall"
				c.Display.TimeFormat = ""
				c.Display.DateTimeFormat = ""
			},
			expectError: true,
			errorCount:  3,
		},
		{
			name: "enabled cache needs an address and pool",
			mutate: func(c *Config) {
				c.Cache = CacheConfig{Enabled: true, Database: 16}
			},
			expectError: true,
			errorCount:  3,
		},
		{
			name: "disabled cache is not validated",
			mutate: func(c *Config) {
				c.Cache = CacheConfig{Enabled: false, Database: 99}
			},
		},
		{
			name: "invalid logging",
			mutate: func(c *Config) {
				c.Logging = &LoggingConfig{Level: "verbose", Format: "xml", Output: ""}
			},
			expectError: true,
			errorCount:  3,
		},
		{
			name: "invalid timeouts",
			mutate: func(c *Config) {
				c.Server = &ServerConfig{ReadTimeout: 0, WriteTimeout: 10 * time.Minute, IdleTimeout: -1}
			},
			expectError: true,
			errorCount:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(config)

			err := config.Validate()

			if tt.expectError {
				require.Error(t, err)

				ve, ok := err.(ValidationErrors)
				require.True(t, ok, "expected ValidationErrors, got %T", err)
				assert.Len(t, ve, tt.errorCount, "Expected %d validation errors, got %d: %v", tt.errorCount, len(ve), ve)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	var empty ValidationErrors
	assert.Equal(t, "no validation errors", empty.Error())
	assert.False(t, empty.Has())

	errs := ValidationErrors{
		{Field: "port", Value: "x", Message: "port must be a valid integer"},
		{Field: "display.view", Value: "wall", Message: "view must be either 'slideshow' or 'gallery'"},
	}
	assert.True(t, errs.Has())

	msg := errs.Error()
	assert.True(t, strings.HasPrefix(msg, "configuration validation failed: "))
	assert.Contains(t, msg, "port")
	assert.Contains(t, msg, "display.view")
}

func TestMustValidate(t *testing.T) {
	assert.NotPanics(t, func() { validConfig().MustValidate() })

	config := validConfig()
	config.Display.View = "wall"
	assert.Panics(t, func() { config.MustValidate() })
}
