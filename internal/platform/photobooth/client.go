// Package photobooth provides the HTTP client for the photobooth backend API
package photobooth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"photobooth-display/internal/domain/picture"
)

const maxResponseBytes = 8 << 20

// ErrUnexpectedStatus is returned when the backend answers with a non-200 status
var ErrUnexpectedStatus = errors.New("unexpected backend status")

// Client talks to the photobooth backend. Every call is bounded by the
// configured timeout so a hung backend never blocks a caller for longer.
type Client struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewClient creates a backend client for baseURL (e.g. http://localhost:8000)
func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, timeout, &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
}

// NewClientWithHTTP creates a backend client around an existing http.Client
func NewClientWithHTTP(baseURL string, timeout time.Duration, httpClient *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  httpClient,
	}
}

// BaseURL returns the backend root the client was configured with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// NewPictures fetches the pictures taken after watermark
func (c *Client) NewPictures(ctx context.Context, watermark string) (*picture.PollResponse, error) {
	if strings.TrimSpace(watermark) == "" {
		watermark = picture.WatermarkAll
	}

	body, err := c.get(ctx, "/api/get_new_pictures/"+url.PathEscape(watermark))
	if err != nil {
		return nil, err
	}

	var resp picture.PollResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", picture.ErrInvalidResponse, err)
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Picture fetches a single picture by name. The backend may answer with the
// full envelope or with a bare record, which is wrapped into an envelope.
func (c *Client) Picture(ctx context.Context, name string) (*picture.PollResponse, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty picture name", picture.ErrInvalidRecord)
	}

	body, err := c.get(ctx, "/api/get_picture/"+url.PathEscape(name))
	if err != nil {
		return nil, err
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", picture.ErrInvalidResponse, err)
	}

	if _, ok := probe["last_picture"]; ok {
		var resp picture.PollResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: %v", picture.ErrInvalidResponse, err)
		}
		if err := resp.Validate(); err != nil {
			return nil, err
		}
		return &resp, nil
	}

	var record picture.Record
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", picture.ErrInvalidResponse, err)
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	return &picture.PollResponse{
		NumberOfPictures: 1,
		NewPictures:      []picture.Record{record},
		LastPicture:      &record,
	}, nil
}

// Ping checks that the backend answers at all
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", picture.ErrPictureNotFound, path)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode, bytes.TrimSpace(body))
	}

	return body, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}
