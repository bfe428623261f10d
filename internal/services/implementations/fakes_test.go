package implementations

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"photobooth-display/internal/display"
	"photobooth-display/internal/domain/picture"
	"photobooth-display/internal/timefmt"
)

var errBackendDown = errors.New("backend down")

// fakeClient answers from a script of responses and records how it was called
type fakeClient struct {
	mu         sync.Mutex
	script     []fakeAnswer
	watermarks []string
	names      []string
	delay      time.Duration
	// during runs while a NewPictures call is in flight
	during func()

	inFlight    int32
	maxInFlight int32
}

type fakeAnswer struct {
	resp *picture.PollResponse
	err  error
}

func (f *fakeClient) next() fakeAnswer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.script) == 0 {
		return fakeAnswer{resp: envelope("free", "idle-watermark")}
	}
	a := f.script[0]
	if len(f.script) > 1 {
		f.script = f.script[1:]
	}
	return a
}

func (f *fakeClient) NewPictures(ctx context.Context, watermark string) (*picture.PollResponse, error) {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		peak := atomic.LoadInt32(&f.maxInFlight)
		if n <= peak || atomic.CompareAndSwapInt32(&f.maxInFlight, peak, n) {
			break
		}
	}

	f.mu.Lock()
	f.watermarks = append(f.watermarks, watermark)
	delay := f.delay
	during := f.during
	f.mu.Unlock()

	if during != nil {
		during()
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	a := f.next()
	return a.resp, a.err
}

func (f *fakeClient) Picture(_ context.Context, name string) (*picture.PollResponse, error) {
	f.mu.Lock()
	f.names = append(f.names, name)
	f.mu.Unlock()

	a := f.next()
	return a.resp, a.err
}

func (f *fakeClient) Ping(context.Context) error {
	return nil
}

func (f *fakeClient) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.watermarks...)
}

func (f *fakeClient) pictureCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.names)
}

func envelope(status, lastTimestamp string, records ...picture.Record) *picture.PollResponse {
	last := picture.Record{Name: "last.jpg", Timestamp: lastTimestamp, DateTime: "2019-05-05 15:40:00"}
	if len(records) > 0 {
		last = records[len(records)-1]
		last.Timestamp = lastTimestamp
	}
	return &picture.PollResponse{
		NumberOfPictures: len(records),
		NewPictures:      records,
		Status:           status,
		LastPicture:      &last,
	}
}

func rec(name, timestamp string) picture.Record {
	return picture.Record{Name: name, Timestamp: timestamp, DateTime: "2019-05-05 15:34:56"}
}

func newSession(mode picture.ViewMode) *display.State {
	return display.NewState(display.Options{
		Mode:          mode,
		Columns:       3,
		ColumnClass:   "col-md-4",
		PopupDuration: time.Second,
		Formatter:     timefmt.New(timefmt.Options{Location: time.UTC}),
	})
}
