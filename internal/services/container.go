package services

import (
	"context"
	"fmt"
	"sync"

	"photobooth-display/internal/config"
	"photobooth-display/internal/display"
	"photobooth-display/internal/domain/picture"
	"photobooth-display/internal/observability"
	"photobooth-display/internal/platform/cache"
	"photobooth-display/internal/platform/photobooth"
	"photobooth-display/internal/services/implementations"
	"photobooth-display/internal/timefmt"
)

// Session is one display page kept alive on the server: its state and the
// recurring tasks that feed it
type Session struct {
	State  *display.State
	Poller *implementations.Poller
	Clock  *implementations.ClockUpdater
	Banner *implementations.BannerUpdater
	Slides *implementations.SlideRotator // nil for the gallery
}

// Container holds all the application dependencies
type Container struct {
	config *config.Config
	logger *observability.Logger

	// Backend
	client picture.Client

	// Cache
	redisClient  *cache.RedisClient
	memoryCache  *cache.MemoryCache
	cacheService picture.CacheService

	// Display
	formatter   *timefmt.Formatter
	primaryView picture.ViewMode
	sessions    map[picture.ViewMode]*Session
	fetcher     *implementations.PictureFetcher
	pollMetrics *observability.PollMetrics

	// Lifecycle of the recurring tasks
	mu      sync.Mutex
	cancel  context.CancelFunc
	running sync.WaitGroup
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, logger *observability.Logger) (*Container, error) {
	return NewContainerWithClient(cfg, logger, photobooth.NewClient(cfg.API.BaseURL, cfg.API.Timeout))
}

// NewContainerWithClient creates a container around an existing backend client
func NewContainerWithClient(cfg *config.Config, logger *observability.Logger, client picture.Client) (*Container, error) {
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	container := &Container{
		config: cfg,
		logger: logger,
		client: client,
	}

	if err := container.initializeServices(); err != nil {
		return nil, err
	}

	return container, nil
}

// initializeServices initializes all services in the correct dependency order
func (c *Container) initializeServices() error {
	ctx := context.Background()

	view, err := picture.ParseViewMode(c.config.Display.View)
	if err != nil {
		return fmt.Errorf("invalid display view: %w", err)
	}
	c.primaryView = view

	c.formatter = timefmt.New(timefmt.Options{
		Locale:         c.config.Display.TimeLocale,
		TimeLayout:     c.config.Display.TimeFormat,
		DateTimeLayout: c.config.Display.DateTimeFormat,
		Location:       c.config.Display.Location(),
	})

	c.initializeCache(ctx)

	c.pollMetrics, err = observability.NewPollMetrics(observability.GetPollerMeter())
	if err != nil {
		return fmt.Errorf("failed to create poll metrics: %w", err)
	}

	c.sessions = map[picture.ViewMode]*Session{
		picture.ViewGallery:   c.newSession(picture.ViewGallery),
		picture.ViewSlideshow: c.newSession(picture.ViewSlideshow),
	}

	c.fetcher = implementations.NewPictureFetcher(
		c.client,
		c.cacheService,
		c.config.Display.PictureCacheTTL,
		func() *display.State { return c.newState(picture.ViewGallery) },
		c.logger,
	)

	c.logger.Info(ctx).
		Str("backend", c.config.API.BaseURL).
		Str("view", string(c.primaryView)).
		Dur("poll_interval", c.config.Display.PollInterval).
		Bool("redis_cache", c.redisClient != nil).
		Msg("Dependency injection container initialized successfully")
	return nil
}

// initializeCache prefers Redis and falls back to the in-process cache
func (c *Container) initializeCache(ctx context.Context) {
	if c.config.Cache.Enabled {
		redisClient, err := cache.NewRedisClient(c.config.Cache)
		if err == nil {
			c.redisClient = redisClient
			c.cacheService = implementations.NewCacheService(redisClient)
			return
		}
		c.logger.Warn(ctx).Err(err).Msg("Redis cache unavailable, using in-process cache")
	}

	c.memoryCache = cache.NewMemoryCache(c.config.Display.PictureCacheTTL, 2*c.config.Display.PictureCacheTTL)
	c.cacheService = implementations.NewCacheService(c.memoryCache)
}

func (c *Container) newState(mode picture.ViewMode) *display.State {
	return display.NewState(display.Options{
		Mode:             mode,
		Columns:          c.config.Display.GalleryColumns,
		ColumnClass:      c.config.Display.GalleryColumnWidth,
		PopupDuration:    c.config.Display.PopupDuration,
		ShowInFullscreen: c.config.Display.ShowInFullscreen,
		InitialWatermark: c.config.API.InitialWatermark,
		Formatter:        c.formatter,
	})
}

func (c *Container) newSession(mode picture.ViewMode) *Session {
	state := c.newState(mode)
	logger := c.logger.WithFields(map[string]interface{}{"view": string(mode)})
	d := c.config.Display

	s := &Session{
		State:  state,
		Poller: implementations.NewPoller(c.client, state, d.PollInterval, c.pollMetrics, observability.GetPollerTracer(), logger),
		Clock:  implementations.NewClockUpdater(state, c.formatter, d.ClockInterval, logger),
		Banner: implementations.NewBannerUpdater(state, d.BannerInterval, logger),
	}
	if mode == picture.ViewSlideshow {
		s.Slides = implementations.NewSlideRotator(state, d.SlideInterval, logger)
	}
	return s
}

// Start launches every recurring task. They stop when ctx is cancelled or
// Stop is called.
func (c *Container) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		return
	}
	ctx, c.cancel = context.WithCancel(ctx)

	for _, s := range c.sessions {
		c.launch(ctx, s.Poller.Run)
		c.launch(ctx, s.Clock.Run)
		c.launch(ctx, s.Banner.Run)
		if s.Slides != nil {
			c.launch(ctx, s.Slides.Run)
		}
	}

	c.logger.Info(ctx).Int("sessions", len(c.sessions)).Msg("Display sessions started")
}

func (c *Container) launch(ctx context.Context, run func(context.Context)) {
	c.running.Add(1)
	go func() {
		defer c.running.Done()
		run(ctx)
	}()
}

// Stop cancels the recurring tasks and waits for them to return
func (c *Container) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	c.running.Wait()
}

// Ready reports the health of each dependency; a nil value means healthy
func (c *Container) Ready(ctx context.Context) map[string]error {
	checks := map[string]error{
		"backend": c.client.Ping(ctx),
	}
	if c.redisClient != nil {
		checks["cache"] = c.cacheService.Health(ctx)
	}
	return checks
}

// Getters for accessing services

func (c *Container) Config() *config.Config {
	return c.config
}

func (c *Container) Logger() *observability.Logger {
	return c.logger
}

func (c *Container) Client() picture.Client {
	return c.client
}

func (c *Container) CacheService() picture.CacheService {
	return c.cacheService
}

func (c *Container) Formatter() *timefmt.Formatter {
	return c.formatter
}

func (c *Container) Fetcher() *implementations.PictureFetcher {
	return c.fetcher
}

func (c *Container) PollMetrics() *observability.PollMetrics {
	return c.pollMetrics
}

// PrimaryView is the view the index and last-picture pages follow
func (c *Container) PrimaryView() picture.ViewMode {
	return c.primaryView
}

// Session returns the session of a view mode
func (c *Container) Session(mode picture.ViewMode) *Session {
	return c.sessions[mode]
}

// State returns the display state of a view mode
func (c *Container) State(mode picture.ViewMode) *display.State {
	if s := c.sessions[mode]; s != nil {
		return s.State
	}
	return nil
}

// ResetSessions starts every session over from the initial watermark
func (c *Container) ResetSessions() {
	for _, s := range c.sessions {
		s.State.Reset()
	}
}

// Close cleans up resources
func (c *Container) Close() error {
	c.Stop()
	if c.redisClient != nil {
		return c.redisClient.Close()
	}
	return nil
}

