// Package config provides configuration validation
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"photobooth-display/internal/domain/picture"
)

var (
	validEnvironments = mapset.NewSet("development", "production", "test", "staging")
	validLogLevels    = mapset.NewSet("debug", "info", "warn", "error")
	validLogFormats   = mapset.NewSet("json", "console", "text")
)

const (
	maxGalleryColumns = 12
	minPollInterval   = 100 * time.Millisecond
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}

	return fmt.Sprintf("configuration validation failed: %s", strings.Join(messages, "; "))
}

// Has checks if ValidationErrors contains any errors
func (ve ValidationErrors) Has() bool {
	return len(ve) > 0
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	var validationErrors ValidationErrors

	validationErrors = append(validationErrors, c.validateServer()...)
	validationErrors = append(validationErrors, c.validateAPI()...)
	validationErrors = append(validationErrors, c.validateDisplay()...)
	validationErrors = append(validationErrors, c.validateCache()...)

	if c.Logging != nil {
		validationErrors = append(validationErrors, c.validateLogging()...)
	}

	if c.Server != nil {
		validationErrors = append(validationErrors, c.validateServerTimeouts()...)
	}

	if validationErrors.Has() {
		return validationErrors
	}

	return nil
}

func (c *Config) validateServer() ValidationErrors {
	var errors ValidationErrors

	if c.Port == "" {
		errors = append(errors, ValidationError{
			Field:   "port",
			Value:   c.Port,
			Message: "port cannot be empty",
		})
	} else if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, ValidationError{
			Field:   "port",
			Value:   c.Port,
			Message: "port must be a valid integer",
		})
	} else if port < 1 || port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "port",
			Value:   c.Port,
			Message: "port must be between 1 and 65535",
		})
	}

	if c.Environment != "" && !validEnvironments.Contains(c.Environment) {
		errors = append(errors, ValidationError{
			Field:   "environment",
			Value:   c.Environment,
			Message: "environment must be one of: development, production, test, staging",
		})
	}

	return errors
}

func (c *Config) validateAPI() ValidationErrors {
	var errors ValidationErrors

	parsedURL, err := url.Parse(c.API.BaseURL)
	if c.API.BaseURL == "" || err != nil {
		errors = append(errors, ValidationError{
			Field:   "api.base_url",
			Value:   c.API.BaseURL,
			Message: "photobooth API URL must be a valid URL",
		})
	} else {
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, ValidationError{
				Field:   "api.base_url",
				Value:   parsedURL.Scheme,
				Message: "photobooth API URL must use http or https scheme",
			})
		}
		if parsedURL.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "api.base_url",
				Value:   c.API.BaseURL,
				Message: "photobooth API URL must include host",
			})
		}
	}

	if c.API.Timeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "api.timeout",
			Value:   c.API.Timeout,
			Message: "API timeout must be greater than 0",
		})
	}

	if strings.TrimSpace(c.API.InitialWatermark) == "" {
		errors = append(errors, ValidationError{
			Field:   "api.initial_watermark",
			Value:   c.API.InitialWatermark,
			Message: "initial watermark cannot be empty",
		})
	}

	return errors
}

func (c *Config) validateDisplay() ValidationErrors {
	var errors ValidationErrors
	d := c.Display

	intervals := []struct {
		field string
		value time.Duration
	}{
		{"display.poll_interval", d.PollInterval},
		{"display.popup_duration", d.PopupDuration},
		{"display.slide_interval", d.SlideInterval},
		{"display.banner_interval", d.BannerInterval},
		{"display.clock_interval", d.ClockInterval},
	}
	for _, iv := range intervals {
		if iv.value < minPollInterval {
			errors = append(errors, ValidationError{
				Field:   iv.field,
				Value:   iv.value,
				Message: fmt.Sprintf("interval must be at least %s", minPollInterval),
			})
		}
	}

	if d.GalleryColumns < 1 || d.GalleryColumns > maxGalleryColumns {
		errors = append(errors, ValidationError{
			Field:   "display.gallery_columns",
			Value:   d.GalleryColumns,
			Message: fmt.Sprintf("gallery columns must be between 1 and %d", maxGalleryColumns),
		})
	}

	if _, err := picture.ParseViewMode(d.View); err != nil {
		errors = append(errors, ValidationError{
			Field:   "display.view",
			Value:   d.View,
			Message: "view must be either 'slideshow' or 'gallery'",
		})
	}

	if strings.TrimSpace(d.TimeFormat) == "" {
		errors = append(errors, ValidationError{
			Field:   "display.time_format",
			Value:   d.TimeFormat,
			Message: "time format cannot be empty",
		})
	}

	if strings.TrimSpace(d.DateTimeFormat) == "" {
		errors = append(errors, ValidationError{
			Field:   "display.datetime_format",
			Value:   d.DateTimeFormat,
			Message: "datetime format cannot be empty",
		})
	}

	if d.TimeZone != "" && !strings.EqualFold(d.TimeZone, "local") {
		if _, err := time.LoadLocation(d.TimeZone); err != nil {
			errors = append(errors, ValidationError{
				Field:   "display.time_zone",
				Value:   d.TimeZone,
				Message: "time zone must be a valid IANA zone name",
			})
		}
	}

	return errors
}

func (c *Config) validateCache() ValidationErrors {
	var errors ValidationErrors

	if !c.Cache.Enabled {
		return errors
	}

	if c.Cache.Address == "" {
		errors = append(errors, ValidationError{
			Field:   "cache.address",
			Value:   c.Cache.Address,
			Message: "cache address is required when the cache is enabled",
		})
	}

	if c.Cache.Database < 0 || c.Cache.Database > 15 {
		errors = append(errors, ValidationError{
			Field:   "cache.database",
			Value:   c.Cache.Database,
			Message: "cache database must be between 0 and 15",
		})
	}

	if c.Cache.PoolSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "cache.pool_size",
			Value:   c.Cache.PoolSize,
			Message: "cache pool size must be at least 1",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	if !validLogLevels.Contains(strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: "logging level must be one of: debug, info, warn, error",
		})
	}

	if !validLogFormats.Contains(strings.ToLower(c.Logging.Format)) {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Value:   c.Logging.Format,
			Message: "logging format must be one of: json, console, text",
		})
	}

	if strings.TrimSpace(c.Logging.Output) == "" {
		errors = append(errors, ValidationError{
			Field:   "logging.output",
			Value:   c.Logging.Output,
			Message: "logging output must be stdout, stderr or a file path",
		})
	}

	return errors
}

func (c *Config) validateServerTimeouts() ValidationErrors {
	var errors ValidationErrors

	if c.Server.ReadTimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "server.read_timeout",
			Value:   c.Server.ReadTimeout,
			Message: "read timeout must be greater than 0",
		})
	} else if c.Server.ReadTimeout > 5*time.Minute {
		errors = append(errors, ValidationError{
			Field:   "server.read_timeout",
			Value:   c.Server.ReadTimeout,
			Message: "read timeout should not exceed 5 minutes",
		})
	}

	if c.Server.WriteTimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "server.write_timeout",
			Value:   c.Server.WriteTimeout,
			Message: "write timeout must be greater than 0",
		})
	} else if c.Server.WriteTimeout > 5*time.Minute {
		errors = append(errors, ValidationError{
			Field:   "server.write_timeout",
			Value:   c.Server.WriteTimeout,
			Message: "write timeout should not exceed 5 minutes",
		})
	}

	if c.Server.IdleTimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "server.idle_timeout",
			Value:   c.Server.IdleTimeout,
			Message: "idle timeout must be greater than 0",
		})
	}

	return errors
}

// MustValidate validates the configuration and panics on error
// Useful for startup scenarios where invalid config should crash the application
func (c *Config) MustValidate() {
	if err := c.Validate(); err != nil {
		panic(fmt.Sprintf("configuration validation failed: %v", err))
	}
}
