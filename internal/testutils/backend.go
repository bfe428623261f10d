package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"photobooth-display/internal/domain/picture"
)

// FakeBackend is an in-memory photobooth backend serving the JSON API and
// the /f/ picture routes
type FakeBackend struct {
	server *httptest.Server

	mu       sync.Mutex
	pictures []picture.Record
	status   string
	failing  bool
	hits     map[string]int
}

// NewFakeBackend starts a backend; callers must Close it
func NewFakeBackend() *FakeBackend {
	b := &FakeBackend{
		status: "idle",
		hits:   make(map[string]int),
	}

	r := chi.NewRouter()
	r.Use(b.count)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		if b.isFailing() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/api/get_new_pictures/{watermark}", b.newPictures)
	r.Get("/api/get_picture/{name}", b.picture)
	r.HandleFunc("/f/delete/picture/{name}", b.deletePicture)
	r.HandleFunc("/f/{action}/picture/{name}", b.action)

	b.server = httptest.NewServer(r)
	return b
}

// URL returns the backend root
func (b *FakeBackend) URL() string {
	return b.server.URL
}

// Close shuts the backend down
func (b *FakeBackend) Close() {
	b.server.Close()
}

// AddPictures makes records available to the next polls
func (b *FakeBackend) AddPictures(records ...picture.Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pictures = append(b.pictures, records...)
}

// SetStatus sets the photobooth status label
func (b *FakeBackend) SetStatus(status string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
}

// SetFailing makes every API call answer 503
func (b *FakeBackend) SetFailing(failing bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failing = failing
}

// Hits returns how many requests had a path starting with prefix
func (b *FakeBackend) Hits(prefix string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for path, n := range b.hits {
		if strings.HasPrefix(path, prefix) {
			total += n
		}
	}
	return total
}

func (b *FakeBackend) isFailing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failing
}

func (b *FakeBackend) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits[r.URL.Path]++
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) newPictures(w http.ResponseWriter, r *http.Request) {
	if b.isFailing() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	watermark := chi.URLParam(r, "watermark")

	b.mu.Lock()
	var fresh []picture.Record
	for _, rec := range b.pictures {
		if watermark == picture.WatermarkAll || newer(rec.Timestamp, watermark) {
			fresh = append(fresh, rec)
		}
	}
	last := picture.Record{Name: "none", Timestamp: watermark}
	if n := len(b.pictures); n > 0 {
		last = b.pictures[n-1]
	}
	resp := picture.PollResponse{
		NumberOfPictures: len(fresh),
		NewPictures:      fresh,
		Status:           b.status,
		LastPicture:      &last,
		TimeParam:        watermark,
	}
	b.mu.Unlock()

	if resp.NewPictures == nil {
		resp.NewPictures = []picture.Record{}
	}
	writeBackendJSON(w, http.StatusOK, resp)
}

// picture answers with a bare record, as the photobooth does
func (b *FakeBackend) picture(w http.ResponseWriter, r *http.Request) {
	if b.isFailing() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	rec, ok := b.find(chi.URLParam(r, "name"))
	if !ok {
		writeBackendJSON(w, http.StatusNotFound, map[string]string{"error": "picture not found"})
		return
	}
	writeBackendJSON(w, http.StatusOK, rec)
}

func (b *FakeBackend) deletePicture(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	b.mu.Lock()
	kept := b.pictures[:0]
	for _, rec := range b.pictures {
		if rec.Name != name {
			kept = append(kept, rec)
		}
	}
	b.pictures = kept
	b.mu.Unlock()

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("deleted " + name))
}

func (b *FakeBackend) action(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := b.find(name); !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	_, _ = w.Write([]byte(chi.URLParam(r, "action") + ":" + name))
}

func (b *FakeBackend) find(name string) (picture.Record, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, rec := range b.pictures {
		if rec.Name == name {
			return rec, true
		}
	}
	return picture.Record{}, false
}

// newer compares numeric timestamps, falling back to string order
func newer(ts, watermark string) bool {
	a, errA := strconv.ParseFloat(ts, 64)
	w, errW := strconv.ParseFloat(watermark, 64)
	if errA != nil || errW != nil {
		return ts > watermark
	}
	return a > w
}

func writeBackendJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
