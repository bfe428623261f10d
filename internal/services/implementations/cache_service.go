package implementations

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"photobooth-display/internal/domain/picture"
)

// pictureCache is satisfied by both the Redis client and the in-process cache
type pictureCache interface {
	GetPicture(ctx context.Context, name string) (*picture.PollResponse, error)
	SetPicture(ctx context.Context, name string, resp *picture.PollResponse, ttl time.Duration) error
	DeletePicture(ctx context.Context, name string) error
	Health(ctx context.Context) error
}

// CacheService implements the domain CacheService interface
type CacheService struct {
	client pictureCache
}

// NewCacheService creates a new cache service. A nil client turns every
// lookup into a miss and every write into a no-op.
func NewCacheService(client pictureCache) *CacheService {
	return &CacheService{
		client: client,
	}
}

// GetPicture retrieves a cached picture lookup
func (c *CacheService) GetPicture(ctx context.Context, name string) (*picture.PollResponse, error) {
	if c.client == nil {
		return nil, picture.ErrCacheUnavailable
	}

	return c.client.GetPicture(ctx, name)
}

// SetPicture caches a picture lookup
func (c *CacheService) SetPicture(ctx context.Context, name string, resp *picture.PollResponse, ttl time.Duration) error {
	if c.client == nil {
		log.Debug().Str("picture", name).Msg("Cache unavailable, skipping picture cache")
		return nil // Don't fail if cache is unavailable
	}

	return c.client.SetPicture(ctx, name, resp, ttl)
}

// DeletePicture removes a picture lookup from cache
func (c *CacheService) DeletePicture(ctx context.Context, name string) error {
	if c.client == nil {
		return nil // Don't fail if cache is unavailable
	}

	return c.client.DeletePicture(ctx, name)
}

// Health checks if the cache service is healthy
func (c *CacheService) Health(ctx context.Context) error {
	if c.client == nil {
		return picture.ErrCacheUnavailable
	}

	return c.client.Health(ctx)
}
