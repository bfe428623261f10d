package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"photobooth-display/internal/domain/picture"
)

// MemoryCache is the in-process picture cache used when Redis is disabled
type MemoryCache struct {
	store      *gocache.Cache
	defaultTTL time.Duration
}

// NewMemoryCache creates an in-process cache. Expired entries are purged
// every cleanupInterval.
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	if defaultTTL <= 0 {
		defaultTTL = gocache.NoExpiration
	}
	return &MemoryCache{
		store:      gocache.New(defaultTTL, cleanupInterval),
		defaultTTL: defaultTTL,
	}
}

// GetPicture retrieves a cached picture lookup
func (m *MemoryCache) GetPicture(_ context.Context, name string) (*picture.PollResponse, error) {
	key := PictureKey(name)
	v, ok := m.store.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCacheMiss, key)
	}
	resp, ok := v.(picture.PollResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected cached value for %s: %T", key, v)
	}
	return clonePollResponse(&resp), nil
}

// SetPicture caches a picture lookup; a zero ttl uses the default
func (m *MemoryCache) SetPicture(_ context.Context, name string, resp *picture.PollResponse, ttl time.Duration) error {
	if resp == nil {
		return fmt.Errorf("refusing to cache empty lookup for %s", name)
	}
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.store.Set(PictureKey(name), *clonePollResponse(resp), ttl)
	return nil
}

// DeletePicture removes a picture lookup from cache
func (m *MemoryCache) DeletePicture(_ context.Context, name string) error {
	m.store.Delete(PictureKey(name))
	return nil
}

// Health always succeeds for the in-process cache
func (m *MemoryCache) Health(context.Context) error {
	return nil
}

// ItemCount returns the number of cached entries, expired ones included
func (m *MemoryCache) ItemCount() int {
	return m.store.ItemCount()
}

// Flush drops every entry
func (m *MemoryCache) Flush() {
	m.store.Flush()
}

// clonePollResponse copies the slices and pointers so cached values are never aliased
func clonePollResponse(in *picture.PollResponse) *picture.PollResponse {
	out := *in
	if in.NewPictures != nil {
		out.NewPictures = make([]picture.Record, len(in.NewPictures))
		copy(out.NewPictures, in.NewPictures)
	}
	if in.LastPicture != nil {
		last := *in.LastPicture
		out.LastPicture = &last
	}
	return &out
}
