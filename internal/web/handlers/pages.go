package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"photobooth-display/internal/display"
	"photobooth-display/internal/domain/picture"
	"photobooth-display/internal/web"
)

func (h *Handler) indexHandler(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "index", "Photobooth", h.container.PrimaryView())
}

func (h *Handler) slideshowHandler(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "slideshow", "Photobooth slideshow", picture.ViewSlideshow)
}

func (h *Handler) galleryHandler(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "gallery", "Photobooth gallery", picture.ViewGallery)
}

func (h *Handler) lastPictureHandler(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "last", "Last picture", h.container.PrimaryView())
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, name, title string, mode picture.ViewMode) {
	view := h.container.State(mode).Snapshot()
	h.render(w, r, http.StatusOK, name, h.newPageData(title, mode, view))
}

// showQRsHandler shows one picture with its QR codes, looked up by ?picture=
func (h *Handler) showQRsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name, ok := web.QueryParam(r.URL.RawQuery, "picture")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		h.renderError(w, r, http.StatusBadRequest, "Missing picture", "Add ?picture=<name> to the address.")
		return
	}

	state, err := h.container.Fetcher().Fetch(ctx, name)
	if err != nil {
		h.logger.Warn(ctx).Err(err).Str("picture", name).Msg("Failed to load picture")
		switch {
		case errors.Is(err, picture.ErrPictureNotFound):
			h.renderError(w, r, http.StatusNotFound, "Picture not found", name)
		default:
			h.renderError(w, r, http.StatusBadGateway, "Photobooth backend unavailable", err.Error())
		}
		return
	}

	h.render(w, r, http.StatusOK, "show_qrs", h.newPageData("Picture "+name, picture.ViewGallery, state.Snapshot()))
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	data := h.newPageData(title, h.container.PrimaryView(), display.View{})
	data.Message = message
	h.render(w, r, status, "error", data)
}

// fragmentHandler renders one part of a page for HTMX polling
func (h *Handler) fragmentHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, err := h.modeFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		view := h.container.State(mode).Snapshot()
		h.render(w, r, http.StatusOK, name, h.newPageData("", mode, view))
	}
}

// modeFromRequest reads ?view=, defaulting to the configured view
func (h *Handler) modeFromRequest(r *http.Request) (picture.ViewMode, error) {
	raw, ok := web.QueryParam(r.URL.RawQuery, "view")
	if !ok || strings.TrimSpace(raw) == "" {
		return h.container.PrimaryView(), nil
	}
	return picture.ParseViewMode(raw)
}

// navigateHandler turns a key press into a page change
func (h *Handler) navigateHandler(w http.ResponseWriter, r *http.Request) {
	key, _ := web.QueryParam(r.URL.RawQuery, "key")
	path, ok := web.NavigationFor(key)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// StateResponse is the JSON view of a display session
type StateResponse struct {
	SessionID        string           `json:"session_id"`
	View             string           `json:"view"`
	Watermark        string           `json:"watermark"`
	NumberOfPictures int              `json:"number_of_pictures"`
	Pictures         []picture.Record `json:"pictures"`
	Status           string           `json:"status,omitempty"`
	StatusText       string           `json:"status_text,omitempty"`
	Clock            string           `json:"clock,omitempty"`
	Popup            *PopupResponse   `json:"popup,omitempty"`
	Banner           *display.Banner  `json:"banner,omitempty"`
	Rows             int              `json:"rows"`
	SlideIndex       int              `json:"slide_index"`
	Polls            int              `json:"polls"`
	LastPollAt       *time.Time       `json:"last_poll_at,omitempty"`
	LastError        string           `json:"last_error,omitempty"`
}

// PopupResponse is the open "new pictures" notice
type PopupResponse struct {
	Count   int       `json:"count"`
	Text    string    `json:"text"`
	Subtext string    `json:"subtext"`
	Until   time.Time `json:"until"`
}

func (h *Handler) stateHandler(w http.ResponseWriter, r *http.Request) {
	mode, err := h.modeFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	state := h.container.State(mode)
	view := state.Snapshot()

	resp := StateResponse{
		SessionID:        view.SessionID,
		View:             viewParam(view.Mode),
		Watermark:        view.Watermark,
		NumberOfPictures: view.Count,
		Pictures:         state.Store().All(),
		Status:           view.Status,
		StatusText:       view.StatusText,
		Clock:            view.Clock,
		Banner:           view.Banner,
		Rows:             len(view.Rows),
		SlideIndex:       view.SlideIndex,
		Polls:            view.Polls,
		LastError:        view.LastError,
	}
	if view.PopupOpen {
		resp.Popup = &PopupResponse{
			Count:   view.Popup.Count,
			Text:    view.Popup.Text,
			Subtext: view.Popup.Subtext,
			Until:   view.Popup.Until,
		}
	}
	if !view.LastPollAt.IsZero() {
		at := view.LastPollAt
		resp.LastPollAt = &at
	}

	writeJSON(w, http.StatusOK, resp)
}

// resetHandler starts every session over, as reloading the pages would
func (h *Handler) resetHandler(w http.ResponseWriter, r *http.Request) {
	h.container.ResetSessions()
	h.logger.Info(r.Context()).Msg("Display sessions reset")
	w.WriteHeader(http.StatusNoContent)
}

// pictureActionHandler forwards a per-picture action to the backend. A delete
// also drops the cached lookup of the picture.
func (h *Handler) pictureActionHandler(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	if !display.IsBackendAction(action) {
		http.NotFound(w, r)
		return
	}

	h.proxy.ServeHTTP(w, r)
	if action != display.ActionDelete {
		return
	}

	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}

	if err := h.container.Fetcher().Forget(r.Context(), name); err != nil {
		h.logger.Warn(r.Context()).Err(err).Str("picture", name).Msg("Failed to drop cached picture")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload) //nolint:errcheck // Best effort response
}
