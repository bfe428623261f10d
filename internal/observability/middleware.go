package observability

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Traffic classes of the display server
const (
	TrafficHealth   = "health"
	TrafficPage     = "page"
	TrafficFragment = "fragment"
	TrafficState    = "state"
	TrafficBackend  = "backend"
)

const (
	TrafficKey = attribute.Key("photobooth.traffic")
	ViewKey    = attribute.Key("photobooth.view")
	ActionKey  = attribute.Key("photobooth.action")
)

// HTTPMetrics holds the instruments recorded for requests to the display
type HTTPMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	proxiedBytes    metric.Int64Counter
}

// NewHTTPMetrics creates and registers HTTP metrics
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requestCount, err := meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		HTTPDurationMetric,
		metric.WithDescription("Duration of HTTP requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	proxiedBytes, err := meter.Int64Counter(
		"photobooth.backend.proxied_bytes",
		metric.WithDescription("Bytes relayed from the photobooth backend"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		proxiedBytes:    proxiedBytes,
	}, nil
}

// ClassifyRequest tells which part of the display a request is for.
// Picture routes and the JSON API of the booth are relayed to the backend.
func ClassifyRequest(r *http.Request) string {
	path := r.URL.Path
	switch {
	case path == "/healthz" || path == "/readyz":
		return TrafficHealth
	case strings.HasPrefix(path, "/f/"), strings.HasPrefix(path, "/api/get_"):
		return TrafficBackend
	case strings.HasPrefix(path, "/ui/"):
		return TrafficFragment
	case strings.HasPrefix(path, "/api/"):
		return TrafficState
	default:
		return TrafficPage
	}
}

// requestView is the display view a page or fragment renders, "" when the
// request does not name one
func requestView(r *http.Request, traffic string) string {
	switch traffic {
	case TrafficPage, TrafficFragment, TrafficState:
	default:
		return ""
	}
	if view := r.URL.Query().Get("view"); view != "" {
		return strings.ToLower(view)
	}
	switch r.URL.Path {
	case "/gallery":
		return "gallery"
	case "/slideshow":
		return "slideshow"
	}
	return ""
}

// routeOf reports the matched chi pattern so every picture shares one series
func routeOf(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// requestAttributes are the display attributes known before routing
func requestAttributes(r *http.Request) (string, []attribute.KeyValue) {
	traffic := ClassifyRequest(r)
	attrs := []attribute.KeyValue{TrafficKey.String(traffic)}
	if view := requestView(r, traffic); view != "" {
		attrs = append(attrs, ViewKey.String(view))
	}
	return traffic, attrs
}

// routedAttributes are the attributes only known once chi matched the route
func routedAttributes(r *http.Request, traffic string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{semconv.HTTPRoute(routeOf(r))}
	if traffic == TrafficBackend {
		if action := chi.URLParam(r, "action"); action != "" {
			attrs = append(attrs, ActionKey.String(action))
		}
	}
	return attrs
}

// MetricsMiddleware records request count and duration per route and traffic
// class, and the bytes relayed from the backend. Health checks are not recorded.
func MetricsMiddleware(metrics *HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traffic, attrs := requestAttributes(r)
			if traffic == TrafficHealth {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			ctx := r.Context()
			attrs = append(attrs, routedAttributes(r, traffic)...)
			attrs = append(attrs,
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPResponseStatusCode(statusOf(ww)),
			)
			opt := metric.WithAttributes(attrs...)

			metrics.requestCount.Add(ctx, 1, opt)
			metrics.requestDuration.Record(ctx, time.Since(start).Seconds(), opt)
			if traffic == TrafficBackend {
				metrics.proxiedBytes.Add(ctx, int64(ww.BytesWritten()), opt)
			}
		})
	}
}

// TracingMiddleware opens a server span per request, named after the matched
// route and tagged with the traffic class and display view
func TracingMiddleware(tracer trace.Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traffic, attrs := requestAttributes(r)
			if traffic == TrafficHealth {
				next.ServeHTTP(w, r)
				return
			}

			attrs = append(attrs,
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.URLFull(r.URL.String()),
				semconv.UserAgentOriginal(r.UserAgent()),
				semconv.ClientAddress(r.RemoteAddr),
			)
			ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := statusOf(ww)
			span.SetName(r.Method + " " + routeOf(r))
			span.SetAttributes(routedAttributes(r, traffic)...)
			span.SetAttributes(
				semconv.HTTPResponseStatusCode(status),
				attribute.Int("http.response.body.size", ww.BytesWritten()),
			)
			if status >= http.StatusBadRequest {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
		})
	}
}

// statusOf treats a handler that never wrote a header as 200
func statusOf(ww middleware.WrapResponseWriter) int {
	if status := ww.Status(); status != 0 {
		return status
	}
	return http.StatusOK
}
