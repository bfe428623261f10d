package observability

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/instrumentation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Instrumentation scopes emitted by the display
const (
	HTTPScope   = "photobooth-display/http"
	PollerScope = "photobooth-display/poller"
)

// Histograms with their own aggregation
const (
	HTTPDurationMetric = "http.server.request.duration"
	PollDurationMetric = "photobooth.poll.duration"
)

// Resource attributes describing the booth a display is attached to
const (
	BackendHostKey = attribute.Key("photobooth.backend.host")
	PrimaryViewKey = attribute.Key("photobooth.display.view")
)

const metricsExportInterval = 30 * time.Second

// Backend polls take from a few milliseconds on the booth's LAN up to the
// client timeout when the booth is busy printing
var pollDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Provider manages the trace and metric providers of the display
type Provider struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// NewProvider creates the providers enabled in config and installs them as
// the global ones
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	res, err := newResource(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	p := &Provider{}

	if config.TracesEnabled {
		tp, err := initTracerProvider(ctx, res, config)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tracer provider: %w", err)
		}
		p.tracerProvider = tp
		otel.SetTracerProvider(tp)
	}

	if config.MetricsEnabled {
		exporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(config.MetricsEndpoint))
		if err != nil {
			return nil, errors.Join(
				fmt.Errorf("failed to create metric exporter: %w", err),
				p.Shutdown(ctx),
			)
		}
		p.meterProvider = newMeterProvider(res, sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(metricsExportInterval),
		))
		otel.SetMeterProvider(p.meterProvider)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return p, nil
}

// newResource identifies the service and the booth it displays
func newResource(ctx context.Context, config Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(config.ServiceName),
		semconv.ServiceVersion(config.ServiceVersion),
		semconv.DeploymentEnvironment(config.Environment),
	}
	if u, err := url.Parse(config.BackendURL); err == nil && u.Host != "" {
		attrs = append(attrs, BackendHostKey.String(u.Host))
	}
	if config.PrimaryView != "" {
		attrs = append(attrs, PrimaryViewKey.String(config.PrimaryView))
	}

	return resource.New(ctx,
		resource.WithAttributes(attrs...),
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
	)
}

func initTracerProvider(ctx context.Context, res *resource.Resource, config Config) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(config.TracesEndpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	sampler, err := createSampler(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
			sdktrace.WithMaxExportBatchSize(512),
		),
		sdktrace.WithSampler(sampler),
	), nil
}

// createSampler creates a trace sampler based on configuration
func createSampler(config Config) (sdktrace.Sampler, error) {
	if err := validateSampler(config.TracesSampler, config.TracesSamplerArg); err != nil {
		return nil, err
	}

	switch config.TracesSampler {
	case SamplerAlwaysOff:
		return sdktrace.NeverSample(), nil
	case SamplerTraceIDRatio:
		return sdktrace.TraceIDRatioBased(samplerRatio(config)), nil
	case SamplerParentBasedAlwaysOn:
		return sdktrace.ParentBased(sdktrace.AlwaysSample()), nil
	case SamplerParentBasedAlwaysOff:
		return sdktrace.ParentBased(sdktrace.NeverSample()), nil
	case SamplerParentBasedTraceIDRatio:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(samplerRatio(config))), nil
	default:
		return sdktrace.AlwaysSample(), nil
	}
}

// samplerRatio is only called once validateSampler accepted the argument
func samplerRatio(config Config) float64 {
	ratio, _ := strconv.ParseFloat(config.TracesSamplerArg, 64)
	return ratio
}

// newMeterProvider aggregates poll durations on fixed buckets and request
// durations on exponential ones
func newMeterProvider(res *resource.Resource, reader sdkmetric.Reader) *sdkmetric.MeterProvider {
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
		sdkmetric.WithView(
			sdkmetric.NewView(
				sdkmetric.Instrument{Name: PollDurationMetric, Scope: instrumentation.Scope{Name: PollerScope}},
				sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: pollDurationBuckets,
				}},
			),
			sdkmetric.NewView(
				sdkmetric.Instrument{Name: HTTPDurationMetric, Scope: instrumentation.Scope{Name: HTTPScope}},
				sdkmetric.Stream{Aggregation: sdkmetric.AggregationBase2ExponentialHistogram{
					MaxSize:  160,
					MaxScale: 20,
				}},
			),
		),
	)
}

// Enabled reports whether any exporter is running
func (p *Provider) Enabled() bool {
	return p.tracerProvider != nil || p.meterProvider != nil
}

// Shutdown flushes and stops every running provider
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error

	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown meter provider: %w", err))
		}
	}

	return errors.Join(errs...)
}

// GetTracer returns the tracer of the HTTP middleware
func GetTracer() trace.Tracer {
	return otel.Tracer(HTTPScope)
}

// GetMeter returns the meter of the HTTP middleware
func GetMeter() metric.Meter {
	return otel.Meter(HTTPScope)
}

// GetPollerTracer returns the tracer of the backend pollers
func GetPollerTracer() trace.Tracer {
	return otel.Tracer(PollerScope)
}

// GetPollerMeter returns the meter of the backend pollers
func GetPollerMeter() metric.Meter {
	return otel.Meter(PollerScope)
}
