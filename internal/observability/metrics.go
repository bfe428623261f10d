package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PollMetrics holds the instruments recorded by the picture poller
type PollMetrics struct {
	pollCount        metric.Int64Counter
	pollFailures     metric.Int64Counter
	pollDuration     metric.Float64Histogram
	picturesReceived metric.Int64Counter
}

// NewPollMetrics creates and registers poller metrics
func NewPollMetrics(meter metric.Meter) (*PollMetrics, error) {
	pollCount, err := meter.Int64Counter(
		"photobooth.poll.count",
		metric.WithDescription("Number of completed backend polls"),
		metric.WithUnit("{poll}"),
	)
	if err != nil {
		return nil, err
	}

	pollFailures, err := meter.Int64Counter(
		"photobooth.poll.failures",
		metric.WithDescription("Number of backend polls that failed"),
		metric.WithUnit("{poll}"),
	)
	if err != nil {
		return nil, err
	}

	pollDuration, err := meter.Float64Histogram(
		PollDurationMetric,
		metric.WithDescription("Duration of backend polls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	picturesReceived, err := meter.Int64Counter(
		"photobooth.pictures.received",
		metric.WithDescription("Number of picture records received from the backend"),
		metric.WithUnit("{picture}"),
	)
	if err != nil {
		return nil, err
	}

	return &PollMetrics{
		pollCount:        pollCount,
		pollFailures:     pollFailures,
		pollDuration:     pollDuration,
		picturesReceived: picturesReceived,
	}, nil
}

// RecordPoll records one settled poll. A nil receiver records nothing.
func (m *PollMetrics) RecordPoll(ctx context.Context, elapsed time.Duration, received int, err error) {
	if m == nil {
		return
	}

	outcome := "success"
	if err != nil {
		outcome = "failure"
		m.pollFailures.Add(ctx, 1)
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))

	m.pollCount.Add(ctx, 1, attrs)
	m.pollDuration.Record(ctx, elapsed.Seconds(), attrs)
	if received > 0 {
		m.picturesReceived.Add(ctx, int64(received))
	}
}
