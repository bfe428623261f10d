package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"chatty", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.input))
		})
	}
}

func TestLogger_WithContextAddsTraceFields(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{logger: zerolog.New(&buf)}

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	l.Info(ctx).Msg("poll settled")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
	assert.Equal(t, true, entry["trace_sampled"])
	assert.Equal(t, "poll settled", entry["message"])
}

func TestLogger_WithoutSpanHasNoTraceFields(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{logger: zerolog.New(&buf)}

	l.WithFields(map[string]interface{}{"component": "poller"}).Warn(context.Background()).Msg("backend down")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "trace_id")
	assert.Equal(t, "poller", entry["component"])
}

func TestNewLogger_FileOutputRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.log")

	l := NewLogger(Config{
		ServiceName:  "photobooth-display",
		LogLevel:     "info",
		LogFormat:    "json",
		LogOutput:    path,
		LogMaxSizeMB: 1,
	})
	l.Info(context.Background()).Str("picture", "IMG_0001.jpg").Msg("picture received")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "IMG_0001.jpg")
	assert.Contains(t, string(data), `"service":"photobooth-display"`)
}

func TestNewLogger_StdoutHasNothingToClose(t *testing.T) {
	l := NewLogger(Config{ServiceName: "photobooth-display", LogOutput: "stdout"})
	assert.NoError(t, l.Close())
	assert.NoError(t, NewNopLogger().Close())
}
