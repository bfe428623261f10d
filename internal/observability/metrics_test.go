package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	return sums
}

func TestPollMetrics_RecordPoll(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	metrics, err := NewPollMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordPoll(ctx, 20*time.Millisecond, 3, nil)
	metrics.RecordPoll(ctx, 10*time.Millisecond, 0, nil)
	metrics.RecordPoll(ctx, time.Second, 0, errors.New("connection refused"))

	sums := collectSums(t, reader)
	assert.Equal(t, int64(3), sums["photobooth.poll.count"])
	assert.Equal(t, int64(1), sums["photobooth.poll.failures"])
	assert.Equal(t, int64(3), sums["photobooth.pictures.received"])
}

func TestPollMetrics_NilIsNoop(t *testing.T) {
	var metrics *PollMetrics
	assert.NotPanics(t, func() {
		metrics.RecordPoll(context.Background(), time.Second, 1, nil)
	})
}
