package implementations

import (
	"context"
	"time"

	"photobooth-display/internal/observability"
)

// Task is one cycle of a recurring job
type Task func(ctx context.Context) error

// RunEvery runs task right away and then again interval after each cycle has
// returned, so two cycles of the same task never overlap. A failed cycle is
// logged and the next one is still scheduled. RunEvery returns when ctx is done.
func RunEvery(ctx context.Context, name string, interval time.Duration, task Task, logger *observability.Logger) {
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug(ctx).Str("task", name).Msg("Recurring task stopped")
			return
		case <-timer.C:
		}

		if err := task(ctx); err != nil && ctx.Err() == nil {
			logger.Warn(ctx).Err(err).Str("task", name).Msg("Recurring task cycle failed")
		}

		timer.Reset(interval)
	}
}
