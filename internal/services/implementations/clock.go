package implementations

import (
	"context"
	"time"

	"photobooth-display/internal/display"
	"photobooth-display/internal/observability"
	"photobooth-display/internal/timefmt"
)

// ClockUpdater keeps the wall-clock text of the session current
type ClockUpdater struct {
	state     *display.State
	formatter *timefmt.Formatter
	interval  time.Duration
	logger    *observability.Logger
}

// NewClockUpdater creates a clock updater ticking every interval
func NewClockUpdater(state *display.State, formatter *timefmt.Formatter, interval time.Duration, logger *observability.Logger) *ClockUpdater {
	return &ClockUpdater{
		state:     state,
		formatter: formatter,
		interval:  interval,
		logger:    logger,
	}
}

// Tick formats the current time and stores it
func (c *ClockUpdater) Tick(context.Context) error {
	now, err := c.formatter.Format(timefmt.Now, string(timefmt.SelectorTime))
	if err != nil {
		return err
	}
	c.state.SetClock(now)
	return nil
}

// Run ticks until ctx is cancelled
func (c *ClockUpdater) Run(ctx context.Context) {
	RunEvery(ctx, "clock", c.interval, c.Tick, c.logger)
}
