// Package timefmt turns picture timestamps into locale-formatted display strings
package timefmt

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

// Selector picks the formatting option set
type Selector string

const (
	SelectorTime     Selector = "TIME"
	SelectorDateTime Selector = "DATETIME"
)

// Now is the sentinel input that formats the current instant
const Now = "NOW"

const (
	DefaultTimeLayout     = "15:04:05"
	DefaultDateTimeLayout = "Monday 2 January 2006 15:04"
	DefaultLocale         = monday.LocaleEnUS
)

var (
	ErrUnknownSelector  = errors.New("unknown format selector")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// layouts accepted for textual timestamps, tried in order
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// Options configures a Formatter
type Options struct {
	Locale         string
	TimeLayout     string
	DateTimeLayout string
	Location       *time.Location
	Clock          func() time.Time
}

// Formatter formats timestamps for display. It is safe for concurrent use.
type Formatter struct {
	locale         monday.Locale
	timeLayout     string
	dateTimeLayout string
	location       *time.Location
	clock          func() time.Time
}

// New creates a formatter; zero option fields fall back to defaults
func New(opts Options) *Formatter {
	f := &Formatter{
		locale:         ResolveLocale(opts.Locale),
		timeLayout:     opts.TimeLayout,
		dateTimeLayout: opts.DateTimeLayout,
		location:       opts.Location,
		clock:          opts.Clock,
	}
	if f.timeLayout == "" {
		f.timeLayout = DefaultTimeLayout
	}
	if f.dateTimeLayout == "" {
		f.dateTimeLayout = DefaultDateTimeLayout
	}
	if f.location == nil {
		f.location = time.Local
	}
	if f.clock == nil {
		f.clock = time.Now
	}
	return f
}

// ParseSelector parses a selector case-insensitively
func ParseSelector(s string) (Selector, error) {
	switch Selector(strings.ToUpper(strings.TrimSpace(s))) {
	case SelectorTime:
		return SelectorTime, nil
	case SelectorDateTime:
		return SelectorDateTime, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSelector, s)
	}
}

// Format renders input ("now" in any casing, or a timestamp) with the option set
// named by selector ("TIME" or "DATETIME", any casing).
func (f *Formatter) Format(input, selector string) (string, error) {
	sel, err := ParseSelector(selector)
	if err != nil {
		return "", err
	}

	t, err := f.resolve(input)
	if err != nil {
		return "", err
	}

	return f.FormatTime(t, sel), nil
}

// FormatTime renders an already parsed instant
func (f *Formatter) FormatTime(t time.Time, sel Selector) string {
	t = t.In(f.location)
	if sel == SelectorTime {
		return monday.Format(t, f.timeLayout, f.locale)
	}
	return monday.Format(t, f.dateTimeLayout, f.locale)
}

// Locale returns the resolved locale
func (f *Formatter) Locale() monday.Locale {
	return f.locale
}

func (f *Formatter) resolve(input string) (time.Time, error) {
	if strings.EqualFold(strings.TrimSpace(input), Now) {
		return f.clock(), nil
	}
	return ParseTimestamp(input, f.location)
}

// ParseTimestamp parses the textual and epoch-seconds forms the backend emits.
// Textual timestamps without a zone are read in loc.
func ParseTimestamp(input string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTimestamp)
	}
	if loc == nil {
		loc = time.Local
	}

	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, input)
		}
		whole, frac := math.Modf(secs)
		return time.Unix(int64(whole), int64(frac*1e9)).In(loc), nil
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, input)
}

// ResolveLocale maps a BCP 47 tag such as "nl-BE" or "en" onto a supported
// monday locale, falling back to en_US.
func ResolveLocale(tag string) monday.Locale {
	if strings.TrimSpace(tag) == "" {
		return DefaultLocale
	}

	parsed, err := language.Parse(tag)
	if err != nil {
		return DefaultLocale
	}

	base, _ := parsed.Base()
	region, _ := parsed.Region()
	candidate := monday.Locale(base.String() + "_" + region.String())

	for _, supported := range monday.ListLocales() {
		if supported == candidate {
			return candidate
		}
	}
	return DefaultLocale
}
