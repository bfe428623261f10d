package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"photobooth-display/internal/display"
	"photobooth-display/internal/domain/picture"
	"photobooth-display/internal/observability"
	"photobooth-display/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

type Handler struct {
	container   *services.Container
	templates   *template.Template
	proxy       *httputil.ReverseProxy
	logger      *observability.Logger
	tracer      trace.Tracer
	httpMetrics *observability.HTTPMetrics
}

// NewWithContainer creates the handlers of every page, fragment and proxied
// backend route
func NewWithContainer(container *services.Container) (*Handler, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	h := &Handler{
		container: container,
		templates: templates,
		logger:    container.Logger(),
		tracer:    observability.GetTracer(),
	}

	if h.proxy, err = h.newBackendProxy(container.Config().API.BaseURL); err != nil {
		return nil, err
	}

	if h.httpMetrics, err = observability.NewHTTPMetrics(observability.GetMeter()); err != nil {
		return nil, fmt.Errorf("failed to create http metrics: %w", err)
	}

	return h, nil
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(observability.MetricsMiddleware(h.httpMetrics))
	r.Use(observability.TracingMiddleware(h.tracer))

	// Probes
	r.Get("/healthz", h.healthzHandler)
	r.Get("/readyz", h.readyzHandler)

	// Pages
	r.Get("/", h.indexHandler)
	r.Get("/slideshow", h.slideshowHandler)
	r.Get("/gallery", h.galleryHandler)
	r.Get("/last", h.lastPictureHandler)
	r.Get("/show_qrs", h.showQRsHandler)
	r.Get("/nav", h.navigateHandler)

	// HTMX fragments
	r.Route("/ui", func(r chi.Router) {
		r.Get("/pictures", h.fragmentHandler("pictures"))
		r.Get("/status", h.fragmentHandler("status"))
		r.Get("/popup", h.fragmentHandler("popup"))
		r.Get("/clock", h.fragmentHandler("clock"))
		r.Get("/banner", h.fragmentHandler("banner"))
		r.Get("/slide", h.fragmentHandler("slide"))
	})

	// Session API
	r.Get("/api/state", h.stateHandler)
	r.Post("/api/state/reset", h.resetHandler)

	// Backend routes, proxied so relative links keep working
	r.HandleFunc("/f/{action}/picture/{name}", h.pictureActionHandler)
	r.Handle("/api/get_new_pictures/*", h.proxy)
	r.Handle("/api/get_picture/*", h.proxy)

	return r
}

// requestLogger logs every request through the structured logger
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		h.logger.Debug(r.Context()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func (h *Handler) newBackendProxy(baseURL string) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL %q: %w", baseURL, err)
	}
	if target.Host == "" {
		return nil, fmt.Errorf("backend URL %q has no host", baseURL)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.Transport = otelhttp.NewTransport(http.DefaultTransport)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		h.logger.Error(r.Context()).Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Backend proxy error")
		http.Error(w, "Photobooth backend unavailable", http.StatusBadGateway)
	}
	return proxy, nil
}

// pageData is what every page and fragment template is executed with
type pageData struct {
	Title         string
	Message       string
	View          display.View
	ViewParam     string
	CurrentSlide  *display.Slide
	PollSeconds   int
	ClockSeconds  int
	SlideSeconds  int
	BannerSeconds int
}

func (h *Handler) newPageData(title string, mode picture.ViewMode, view display.View) pageData {
	d := h.container.Config().Display
	data := pageData{
		Title:         title,
		View:          view,
		ViewParam:     viewParam(mode),
		PollSeconds:   seconds(d.PollInterval),
		ClockSeconds:  seconds(d.ClockInterval),
		SlideSeconds:  seconds(d.SlideInterval),
		BannerSeconds: seconds(d.BannerInterval),
	}
	if view.SlideIndex > 0 && view.SlideIndex <= len(view.Slides) {
		slide := view.Slides[view.SlideIndex-1]
		data.CurrentSlide = &slide
	}
	return data
}

// render executes a named template into a buffer before writing the response
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error(r.Context()).Err(err).Str("template", name).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w) //nolint:errcheck // Best effort response
}

func seconds(d time.Duration) int {
	s := int(d / time.Second)
	if s < 1 {
		return 1
	}
	return s
}

func viewParam(mode picture.ViewMode) string {
	switch mode {
	case picture.ViewSlideshow:
		return "slideshow"
	default:
		return "gallery"
	}
}
