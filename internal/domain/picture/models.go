package picture

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Record represents one captured picture as reported by the photobooth backend
type Record struct {
	Name      string `json:"picture_name" validate:"required,max=255"`
	Timestamp string `json:"picture_timestamp" validate:"required"`
	DateTime  string `json:"picture_datetime"`
}

// PollResponse is the envelope returned by the new-pictures and single-picture endpoints
type PollResponse struct {
	NumberOfPictures int      `json:"number_of_pictures" validate:"min=0"`
	NewPictures      []Record `json:"new_pictures" validate:"dive"`
	Status           string   `json:"photobooth_status"`
	LastPicture      *Record  `json:"last_picture" validate:"required"`

	// Informational fields some backends add to the envelope
	TimeParam    string `json:"time_param,omitempty"`
	NowDateTime  string `json:"now_datetime,omitempty"`
	NowTimestamp string `json:"now_timestamp,omitempty"`
}

// ViewMode selects how new pictures are rendered on a page
type ViewMode string

const (
	ViewSlideshow ViewMode = "SLIDESHOW"
	ViewGallery   ViewMode = "GALLERY"
)

// WatermarkAll asks the backend for every picture it knows about
const WatermarkAll = "all"

// Domain errors
var (
	ErrInvalidRecord    = errors.New("invalid picture record")
	ErrInvalidResponse  = errors.New("invalid poll response")
	ErrUnknownViewMode  = errors.New("unknown view mode")
	ErrPictureNotFound  = errors.New("picture not found")
	ErrCacheUnavailable = errors.New("cache unavailable")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseViewMode parses a view mode case-insensitively
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(strings.ToUpper(strings.TrimSpace(s))) {
	case ViewSlideshow:
		return ViewSlideshow, nil
	case ViewGallery:
		return ViewGallery, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownViewMode, s)
	}
}

func (v ViewMode) String() string {
	return string(v)
}

// Validate validates a single picture record
func (r *Record) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRecord, describe(err))
	}
	return nil
}

// Validate validates the envelope and every record it carries.
// A response is rejected as a whole when any record is malformed.
func (p *PollResponse) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidResponse, describe(err))
	}
	return nil
}

// Watermark returns the timestamp the next poll should start from
func (p *PollResponse) Watermark() string {
	if p.LastPicture == nil {
		return ""
	}
	return p.LastPicture.Timestamp
}

// describe flattens validator errors into a short readable message
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
