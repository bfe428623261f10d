// Package config provides application configuration management
// with validation and environment parsing
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	Environment string
	Port        string
	Host        string
	API         APIConfig
	Display     DisplayConfig
	Cache       CacheConfig
	Logging     *LoggingConfig
	Server      *ServerConfig
}

// APIConfig holds the photobooth backend connection settings
type APIConfig struct {
	BaseURL          string
	Timeout          time.Duration
	InitialWatermark string
}

// DisplayConfig holds the settings the kiosk pages are driven by
type DisplayConfig struct {
	PollInterval       time.Duration
	PopupDuration      time.Duration
	SlideInterval      time.Duration
	BannerInterval     time.Duration
	ClockInterval      time.Duration
	GalleryColumns     int
	GalleryColumnWidth string
	ShowInFullscreen   bool
	TimeLocale         string
	TimeZone           string
	TimeFormat         string
	DateTimeFormat     string
	View               string
	PictureCacheTTL    time.Duration
}

// CacheConfig holds Redis/Valkey configuration for picture lookups
type CacheConfig struct {
	Enabled         bool
	Address         string
	Password        string
	Database        int
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	PoolSize        int
	MinIdleConns    int
	PoolTimeout     time.Duration
	DefaultTTL      time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load creates a new configuration from environment variables with validation
func Load() (*Config, error) {
	readTimeout, _ := time.ParseDuration(getEnv("READ_TIMEOUT", "10s"))
	writeTimeout, _ := time.ParseDuration(getEnv("WRITE_TIMEOUT", "10s"))
	idleTimeout, _ := time.ParseDuration(getEnv("SERVER_TIMEOUT", "30s"))
	apiTimeout, _ := time.ParseDuration(getEnv("API_TIMEOUT", "10s"))

	pollInterval := getEnvSeconds("DO_API_CALL_EVERY_X_SECONDS", 5*time.Second)

	config := &Config{
		Environment: getEnv("GO_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		Host:        getEnv("HOST", "localhost"),
		API: APIConfig{
			BaseURL:          strings.TrimRight(getEnv("PHOTOBOOTH_API_URL", "http://localhost:8000"), "/"),
			Timeout:          apiTimeout,
			InitialWatermark: getEnv("POLL_INITIAL_WATERMARK", "all"),
		},
		Display: DisplayConfig{
			PollInterval:       pollInterval,
			PopupDuration:      getEnvSeconds("SHOW_NEW_PICTURES_POPUP_FOR_X_SECONDS", 5*time.Second),
			SlideInterval:      getEnvSeconds("CHANGE_SLIDES_EVERY_X_SECONDES", 4*time.Second),
			BannerInterval:     getEnvSeconds("BANNER_REFRESH_EVERY_X_SECONDS", pollInterval),
			ClockInterval:      time.Second,
			GalleryColumns:     getEnvInt("GALLERY_NUMBER_OF_COLUMNS", 3),
			GalleryColumnWidth: getEnv("GALLERY_COLUMN_WIDTH", "col-md-4"),
			ShowInFullscreen:   getEnvBool("SHOW_IN_FULLSCREEN", false),
			TimeLocale:         getEnv("TIME_LOCALE", "en-US"),
			TimeZone:           getEnv("TIME_ZONE", "Local"),
			TimeFormat:         getEnv("TIME_FORMAT", "15:04:05"),
			DateTimeFormat:     getEnv("DATETIME_FORMAT", "Monday 2 January 2006 15:04"),
			View:               getEnv("VIEW", "gallery"),
			PictureCacheTTL:    getEnvSeconds("PICTURE_CACHE_TTL_SECONDS", 10*time.Minute),
		},
		Cache: CacheConfig{
			Enabled:         getEnvBool("CACHE_ENABLED", false),
			Address:         getEnv("CACHE_ADDRESS", "localhost:6379"),
			Password:        getEnv("CACHE_PASSWORD", ""),
			Database:        getEnvInt("CACHE_DATABASE", 0),
			MaxRetries:      getEnvInt("CACHE_MAX_RETRIES", 3),
			MinRetryBackoff: getEnvDuration("CACHE_MIN_RETRY_BACKOFF", 8*time.Millisecond),
			MaxRetryBackoff: getEnvDuration("CACHE_MAX_RETRY_BACKOFF", 512*time.Millisecond),
			DialTimeout:     getEnvDuration("CACHE_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:     getEnvDuration("CACHE_READ_TIMEOUT", 3*time.Second),
			WriteTimeout:    getEnvDuration("CACHE_WRITE_TIMEOUT", 3*time.Second),
			PoolSize:        getEnvInt("CACHE_POOL_SIZE", 10),
			MinIdleConns:    getEnvInt("CACHE_MIN_IDLE_CONNS", 1),
			PoolTimeout:     getEnvDuration("CACHE_POOL_TIMEOUT", 4*time.Second),
			DefaultTTL:      getEnvDuration("CACHE_DEFAULT_TTL", time.Hour),
		},
		Logging: &LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Server: &ServerConfig{
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
	}

	// Validate configuration before returning
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Location resolves the configured time zone for display formatting
func (d DisplayConfig) Location() *time.Location {
	if d.TimeZone == "" || strings.EqualFold(d.TimeZone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(d.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return d
}

// getEnvSeconds reads a number of seconds, fractions allowed ("0.5")
func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return defaultValue
	}
	return time.Duration(secs * float64(time.Second))
}

// MustLoad loads configuration and panics on error
// Useful for startup scenarios where invalid config should crash the application
func MustLoad() *Config {
	config, err := Load()
	if err != nil {
		panic(err)
	}
	return config
}
