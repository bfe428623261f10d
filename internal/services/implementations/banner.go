package implementations

import (
	"context"
	"time"

	"photobooth-display/internal/display"
	"photobooth-display/internal/observability"
)

// BannerUpdater re-applies the last-picture banner on its own interval
type BannerUpdater struct {
	state    *display.State
	interval time.Duration
	logger   *observability.Logger
}

// NewBannerUpdater creates a banner updater
func NewBannerUpdater(state *display.State, interval time.Duration, logger *observability.Logger) *BannerUpdater {
	return &BannerUpdater{
		state:    state,
		interval: interval,
		logger:   logger,
	}
}

// Tick rewrites the banner; until a last picture is known it does nothing
func (b *BannerUpdater) Tick(context.Context) error {
	b.state.RefreshBanner()
	return nil
}

// Run refreshes until ctx is cancelled
func (b *BannerUpdater) Run(ctx context.Context) {
	RunEvery(ctx, "banner", b.interval, b.Tick, b.logger)
}

// SlideRotator moves the slideshow to its next slide on a fixed interval
type SlideRotator struct {
	state    *display.State
	interval time.Duration
	logger   *observability.Logger
}

// NewSlideRotator creates a slide rotator
func NewSlideRotator(state *display.State, interval time.Duration, logger *observability.Logger) *SlideRotator {
	return &SlideRotator{
		state:    state,
		interval: interval,
		logger:   logger,
	}
}

// Tick advances one slide
func (s *SlideRotator) Tick(context.Context) error {
	s.state.AdvanceSlide()
	return nil
}

// Run rotates until ctx is cancelled
func (s *SlideRotator) Run(ctx context.Context) {
	RunEvery(ctx, "slides", s.interval, s.Tick, s.logger)
}
