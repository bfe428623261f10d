package implementations

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"photobooth-display/internal/display"
	"photobooth-display/internal/domain/picture"
	"photobooth-display/internal/observability"
)

// Poller asks the backend for pictures newer than the session watermark and
// folds each answer into the session state
type Poller struct {
	client   picture.Client
	state    *display.State
	interval time.Duration
	metrics  *observability.PollMetrics
	tracer   trace.Tracer
	logger   *observability.Logger
}

// NewPoller creates a poller. metrics, tracer and logger may be nil.
func NewPoller(client picture.Client, state *display.State, interval time.Duration, metrics *observability.PollMetrics, tracer trace.Tracer, logger *observability.Logger) *Poller {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("poller")
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Poller{
		client:   client,
		state:    state,
		interval: interval,
		metrics:  metrics,
		tracer:   tracer,
		logger:   logger,
	}
}

// PollOnce runs a single cycle. On failure the session is left untouched.
// An answer arriving after the session was reset is dropped.
func (p *Poller) PollOnce(ctx context.Context) error {
	cur := p.state.Cursor()

	ctx, span := p.tracer.Start(ctx, "photobooth.poll",
		trace.WithAttributes(attribute.String("photobooth.watermark", cur.Watermark)),
	)
	defer span.End()

	start := time.Now()
	resp, err := p.client.NewPictures(ctx, cur.Watermark)
	if err == nil {
		err = p.state.ApplyPollFrom(cur, resp)
	}

	if errors.Is(err, display.ErrSessionReset) {
		span.SetAttributes(attribute.Bool("photobooth.poll.discarded", true))
		p.logger.Debug(ctx).Str("watermark", cur.Watermark).Msg("Session reset during poll, answer dropped")
		return nil
	}

	received := 0
	if err == nil {
		received = len(resp.NewPictures)
	}
	p.metrics.RecordPoll(ctx, time.Since(start), received, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "poll failed")
		p.state.RecordFailureFrom(cur, err)
		p.logger.Warn(ctx).Err(err).Str("watermark", cur.Watermark).Msg("Failed to poll for new pictures")
		return err
	}

	span.SetAttributes(attribute.Int("photobooth.pictures.new", received))
	if received > 0 {
		p.logger.Info(ctx).
			Int("new_pictures", received).
			Str("status", resp.Status).
			Str("watermark", resp.Watermark()).
			Msg("New pictures received")
	}

	return nil
}

// Run polls until ctx is cancelled. The next poll is armed only after the
// current one settled.
func (p *Poller) Run(ctx context.Context) {
	RunEvery(ctx, "poller", p.interval, func(ctx context.Context) error {
		// failures are already logged by PollOnce
		_ = p.PollOnce(ctx)
		return nil
	}, p.logger)
}
