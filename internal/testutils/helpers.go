package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/testcontainers/testcontainers-go"

	"photobooth-display/internal/config"
	"photobooth-display/internal/domain/picture"
)

// TestConfig returns a valid configuration talking to backendURL, with the
// Redis cache disabled and short intervals
func TestConfig(backendURL string) *config.Config {
	return &config.Config{
		Environment: "test",
		Port:        "0",
		Host:        "localhost",
		API: config.APIConfig{
			BaseURL:          backendURL,
			Timeout:          2 * time.Second,
			InitialWatermark: picture.WatermarkAll,
		},
		Display: config.DisplayConfig{
			PollInterval:       50 * time.Millisecond,
			PopupDuration:      5 * time.Second,
			SlideInterval:      50 * time.Millisecond,
			BannerInterval:     50 * time.Millisecond,
			ClockInterval:      50 * time.Millisecond,
			GalleryColumns:     3,
			GalleryColumnWidth: "col-md-4",
			TimeLocale:         "en-US",
			TimeZone:           "UTC",
			TimeFormat:         "15:04:05",
			DateTimeFormat:     "Monday 2 January 2006 15:04",
			View:               "gallery",
			PictureCacheTTL:    time.Minute,
		},
		Cache: config.CacheConfig{Enabled: false},
		Logging: &config.LoggingConfig{
			Level:  "debug",
			Format: "console",
			Output: "stdout",
		},
		Server: &config.ServerConfig{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
	}
}

// PictureRecord builds a picture record taken at unix second ts
func PictureRecord(name string, ts int64) picture.Record {
	return picture.Record{
		Name:      name,
		Timestamp: fmt.Sprintf("%d.0", ts),
		DateTime:  time.Unix(ts, 0).UTC().Format("2006-01-02 15:04:05"),
	}
}

// PictureSeries builds n consecutive records starting at unix second start
func PictureSeries(prefix string, start int64, n int) []picture.Record {
	records := make([]picture.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, PictureRecord(fmt.Sprintf("%s_%04d.jpg", prefix, i+1), start+int64(i)))
	}
	return records
}

// MakeTestRequest creates an HTTP test request with the given parameters
func MakeTestRequest(method, url string, body io.Reader, headers map[string]string) *http.Request {
	req := httptest.NewRequest(method, url, body)

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return req
}

// MakeJSONRequest creates an HTTP test request with JSON body
func MakeJSONRequest(method, url string, payload interface{}) *http.Request {
	var body io.Reader
	if payload != nil {
		jsonData, _ := json.Marshal(payload)
		body = bytes.NewReader(jsonData)
	}

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")

	return req
}

// AssertHTTPStatus checks if the HTTP response has the expected status code
func AssertHTTPStatus(t TestingInterface, resp *httptest.ResponseRecorder, expectedStatus int) {
	t.Helper()
	if resp.Code != expectedStatus {
		t.Errorf("Expected status %d, got %d. Body: %s", expectedStatus, resp.Code, resp.Body.String())
	}
}

// AssertJSONResponse checks if the response contains valid JSON and optionally validates structure
func AssertJSONResponse(t TestingInterface, resp *httptest.ResponseRecorder, target interface{}) error {
	t.Helper()
	if !strings.Contains(resp.Header().Get("Content-Type"), "application/json") {
		t.Errorf("Expected JSON response, got %s", resp.Header().Get("Content-Type"))
		return fmt.Errorf("not a JSON response")
	}

	if target != nil {
		if err := json.Unmarshal(resp.Body.Bytes(), target); err != nil {
			t.Errorf("Failed to unmarshal JSON response: %v", err)
			return err
		}
	}

	return nil
}

// TestingInterface defines the interface for testing frameworks (compatible with testing.T)
type TestingInterface interface {
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	Helper()
}

// WaitForContainer waits for a container to be ready with timeout
func WaitForContainer(ctx context.Context, container testcontainers.Container, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for container")
		case <-ticker.C:
			state, err := container.State(ctx)
			if err != nil {
				continue
			}
			if state.Running {
				return nil
			}
		}
	}
}

// RandomString generates a random string of specified length
func RandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
