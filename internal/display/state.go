package display

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"photobooth-display/internal/domain/picture"
	"photobooth-display/internal/timefmt"
)

// Options configures a display session
type Options struct {
	Mode             picture.ViewMode
	Columns          int
	ColumnClass      string
	PopupDuration    time.Duration
	ShowInFullscreen bool
	InitialWatermark string
	Formatter        *timefmt.Formatter
	Clock            func() time.Time
}

// Popup is the transient "new pictures" notice
type Popup struct {
	Count   int
	Text    string
	Subtext string
	Until   time.Time
}

// Banner is the last-picture screen: background and QR codes of the newest picture
type Banner struct {
	Name          string `json:"name"`
	BackgroundURL string `json:"background_url"`
	MailQRURL     string `json:"mail_qr_url"`
	DownloadQRURL string `json:"download_qr_url"`
	Caption       string `json:"caption"`
}

// Fullscreen describes the slide currently shown full screen
type Fullscreen struct {
	BackgroundURL string
	Name          string
	DateTime      string
	Position      string
}

// View is a consistent, read-only copy of the session for rendering
type View struct {
	SessionID   string
	Mode        picture.ViewMode
	Watermark   string
	Count       int
	Rows        []Row
	Slides      []Slide
	Status      string
	StatusClass string
	StatusText  string
	Popup       Popup
	PopupOpen   bool
	Clock       string
	ClockText   string
	Banner      *Banner
	SlideIndex  int
	Fullscreen  *Fullscreen
	CurrentRow  int
	PictureNo   int
	Polls       int
	LastPollAt  time.Time
	LastError   string
}

// State is the display session: received pictures, watermark, rendered view,
// status, popup, clock, banner and slide position. Every recurring task is
// handed the same State; all access goes through its lock.
type State struct {
	mu   sync.RWMutex
	opts Options
	id   string

	store       *picture.Store
	renderer    *Renderer
	watermark   string
	status      string
	popup       Popup
	clock       string
	lastPicture *picture.Record
	banner      *Banner
	slideIndex  int

	polls      int
	lastPollAt time.Time
	lastError  string
}

var statusPolicy = bluemonday.StrictPolicy()

// ErrSessionReset is returned for a poll answer that belongs to a session
// reset while the poll was in flight
var ErrSessionReset = errors.New("session was reset during the poll")

// PollCursor is the session and watermark a poll was started from
type PollCursor struct {
	SessionID string
	Watermark string
}

// NewState creates an empty session
func NewState(opts Options) *State {
	if opts.Formatter == nil {
		opts.Formatter = timefmt.New(timefmt.Options{})
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.InitialWatermark == "" {
		opts.InitialWatermark = picture.WatermarkAll
	}
	if opts.Mode == "" {
		opts.Mode = picture.ViewGallery
	}

	s := &State{opts: opts}
	s.reset()
	return s
}

func (s *State) reset() {
	s.id = uuid.NewString()
	s.store = picture.NewStore()
	s.renderer = NewRenderer(s.opts.Mode, s.opts.Columns, s.opts.ColumnClass, s.opts.Formatter)
	s.watermark = s.opts.InitialWatermark
	s.status = ""
	s.popup = Popup{}
	s.lastPicture = nil
	s.banner = nil
	s.slideIndex = 0
	s.polls = 0
	s.lastPollAt = time.Time{}
	s.lastError = ""
}

// Reset starts a new session, as a page reload would
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// ID identifies the session; it changes on Reset
func (s *State) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// Watermark returns the timestamp the next poll asks from
func (s *State) Watermark() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.watermark
}

// Store returns the session's picture list
func (s *State) Store() *picture.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// Cursor returns the session and watermark the next poll starts from, read
// under one lock
func (s *State) Cursor() PollCursor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return PollCursor{SessionID: s.id, Watermark: s.watermark}
}

// ApplyPoll folds one successful backend response into the session:
// popup, new records, status, last picture and watermark, in that order.
func (s *State) ApplyPoll(resp *picture.PollResponse) error {
	if err := validatePoll(resp); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(resp)
}

// ApplyPollFrom is ApplyPoll for a poll started at cur. The answer is dropped
// with ErrSessionReset when the session was reset in the meantime, so the new
// session keeps asking from its own watermark.
func (s *State) ApplyPollFrom(cur PollCursor, resp *picture.PollResponse) error {
	if err := validatePoll(resp); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id != cur.SessionID {
		return ErrSessionReset
	}
	return s.applyLocked(resp)
}

func validatePoll(resp *picture.PollResponse) error {
	if resp == nil {
		return fmt.Errorf("%w: empty response", picture.ErrInvalidResponse)
	}
	return resp.Validate()
}

func (s *State) applyLocked(resp *picture.PollResponse) error {
	if resp.NumberOfPictures > 0 {
		s.popup = newPopup(resp.NumberOfPictures, s.opts.Clock().Add(s.opts.PopupDuration))
	}

	for _, rec := range resp.NewPictures {
		s.store.Append(rec)
		if err := s.renderer.Render(rec); err != nil {
			return err
		}
	}

	s.status = SanitizeStatus(resp.Status)

	last := *resp.LastPicture
	s.lastPicture = &last

	s.watermark = resp.Watermark()
	s.polls++
	s.lastPollAt = s.opts.Clock()
	s.lastError = ""

	return nil
}

// RecordFailure remembers the last failed poll; nothing else changes
func (s *State) RecordFailure(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err.Error()
}

// RecordFailureFrom is RecordFailure for a poll started at cur; a failure of
// a reset session is not carried over
func (s *State) RecordFailureFrom(cur PollCursor, err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == cur.SessionID {
		s.lastError = err.Error()
	}
}

// SetClock stores the formatted wall-clock text
func (s *State) SetClock(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = text
}

// RefreshBanner rewrites the banner from the last known picture.
// It reports false while no picture is known.
func (s *State) RefreshBanner() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastPicture == nil {
		return false
	}

	rec := *s.lastPicture
	s.banner = &Banner{
		Name:          rec.Name,
		BackgroundURL: ShowURL(rec.Name),
		MailQRURL:     MailQRURL(rec.Name),
		DownloadQRURL: DownloadQRURL(rec.Name),
		Caption:       s.formatDateTime(rec.DateTime),
	}
	return true
}

// AdvanceSlide moves to the next slide, wrapping to the first one.
// It returns the new 1-based index, or 0 when there is nothing to show.
func (s *State) AdvanceSlide() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.renderer.SlideCount()
	if n == 0 {
		return 0
	}
	s.slideIndex++
	if s.slideIndex > n {
		s.slideIndex = 1
	}
	return s.slideIndex
}

// Snapshot copies the session for rendering
func (s *State) Snapshot() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.opts.Clock()
	row, number := s.renderer.Counters()

	v := View{
		SessionID:   s.id,
		Mode:        s.renderer.Mode(),
		Watermark:   s.watermark,
		Count:       s.store.Len(),
		Rows:        s.renderer.Rows(),
		Slides:      s.renderer.Slides(),
		Status:      s.status,
		StatusClass: statusClass(s.status),
		Popup:       s.popup,
		PopupOpen:   s.popup.Count > 0 && now.Before(s.popup.Until),
		Clock:       s.clock,
		SlideIndex:  s.slideIndex,
		CurrentRow:  row,
		PictureNo:   number,
		Polls:       s.polls,
		LastPollAt:  s.lastPollAt,
		LastError:   s.lastError,
	}
	if s.status != "" {
		v.StatusText = "Photobooth status: " + s.status
	}
	if s.clock != "" {
		v.ClockText = "It's now: " + s.clock
	}
	if s.banner != nil {
		b := *s.banner
		v.Banner = &b
	}
	if s.opts.ShowInFullscreen && s.slideIndex > 0 {
		v.Fullscreen = s.fullscreen()
	}

	return v
}

func (s *State) fullscreen() *Fullscreen {
	rec, ok := s.store.At(s.slideIndex - 1)
	if !ok {
		return nil
	}
	return &Fullscreen{
		BackgroundURL: ShowURL(rec.Name),
		Name:          rec.Name,
		DateTime:      s.formatDateTime(rec.DateTime),
		Position:      fmt.Sprintf("Picture %d of %d", s.slideIndex, s.store.Len()),
	}
}

func (s *State) formatDateTime(raw string) string {
	out, err := s.opts.Formatter.Format(raw, string(timefmt.SelectorDateTime))
	if err != nil {
		return raw
	}
	return out
}

func newPopup(count int, until time.Time) Popup {
	noun := "pictures were"
	if count == 1 {
		noun = "picture was"
	}
	return Popup{
		Count:   count,
		Text:    fmt.Sprintf("Hooray, %d new %s taken...", count, noun),
		Subtext: "Go and grab yours now!",
		Until:   until,
	}
}

// SanitizeStatus strips markup from the backend's free-form status label
func SanitizeStatus(status string) string {
	return strings.TrimSpace(html.UnescapeString(statusPolicy.Sanitize(status)))
}

// statusClass turns a status label into a CSS class token
func statusClass(status string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(status) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	return b.String()
}
