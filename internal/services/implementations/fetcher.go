package implementations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"photobooth-display/internal/display"
	"photobooth-display/internal/domain/picture"
	"photobooth-display/internal/observability"
)

// PictureFetcher loads one picture for the QR detail page. Each fetch builds
// its own page-scoped session and is never rescheduled.
type PictureFetcher struct {
	client   picture.Client
	cache    picture.CacheService
	ttl      time.Duration
	newState func() *display.State
	logger   *observability.Logger
}

// NewPictureFetcher creates a fetcher. cache may be nil.
func NewPictureFetcher(client picture.Client, cache picture.CacheService, ttl time.Duration, newState func() *display.State, logger *observability.Logger) *PictureFetcher {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &PictureFetcher{
		client:   client,
		cache:    cache,
		ttl:      ttl,
		newState: newState,
		logger:   logger,
	}
}

// Fetch looks the picture up (cache first) and applies it to a fresh session
func (f *PictureFetcher) Fetch(ctx context.Context, name string) (*display.State, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: missing picture name", picture.ErrInvalidRecord)
	}

	resp, err := f.lookup(ctx, name)
	if err != nil {
		return nil, err
	}

	state := f.newState()
	if err := state.ApplyPoll(resp); err != nil {
		return nil, err
	}
	state.RefreshBanner()

	return state, nil
}

func (f *PictureFetcher) lookup(ctx context.Context, name string) (*picture.PollResponse, error) {
	if f.cache != nil {
		cached, err := f.cache.GetPicture(ctx, name)
		if err == nil {
			f.logger.Debug(ctx).Str("picture", name).Msg("Picture served from cache")
			return cached, nil
		}
		if !errors.Is(err, picture.ErrCacheUnavailable) {
			f.logger.Debug(ctx).Err(err).Str("picture", name).Msg("Picture cache miss")
		}
	}

	resp, err := f.client.Picture(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch picture %s: %w", name, err)
	}

	if f.cache != nil {
		if err := f.cache.SetPicture(ctx, name, resp, f.ttl); err != nil {
			f.logger.Warn(ctx).Err(err).Str("picture", name).Msg("Failed to cache picture")
		}
	}

	return resp, nil
}

// Forget drops a cached lookup, e.g. after the picture was deleted
func (f *PictureFetcher) Forget(ctx context.Context, name string) error {
	if f.cache == nil {
		return nil
	}
	return f.cache.DeletePicture(ctx, name)
}
