package picture

import (
	"context"
	"time"
)

// Client defines the calls made against the photobooth backend API
type Client interface {
	// NewPictures returns pictures taken after the given watermark
	NewPictures(ctx context.Context, watermark string) (*PollResponse, error)

	// Picture returns a single picture by name
	Picture(ctx context.Context, name string) (*PollResponse, error)

	// Ping checks that the backend answers
	Ping(ctx context.Context) error
}

// CacheService defines the interface for caching single-picture lookups
type CacheService interface {
	// GetPicture retrieves a cached lookup for the named picture
	GetPicture(ctx context.Context, name string) (*PollResponse, error)

	// SetPicture caches the lookup for the named picture
	SetPicture(ctx context.Context, name string, resp *PollResponse, ttl time.Duration) error

	// DeletePicture drops a cached lookup
	DeletePicture(ctx context.Context, name string) error

	// Health checks if the cache is reachable
	Health(ctx context.Context) error
}
