// Package display holds the kiosk session state and turns picture records
// into the view model the page templates render.
package display

import (
	"fmt"
	"net/url"

	mapset "github.com/deckarep/golang-set/v2"

	"photobooth-display/internal/domain/picture"
	"photobooth-display/internal/timefmt"
)

// Action names in the order they are listed under a gallery cell
const (
	ActionShow     = "show"
	ActionMail     = "mail"
	ActionDownload = "download"
	ActionShowQRs  = "show_qrs"
	ActionPrint    = "print"
	ActionDelete   = "delete"

	ActionMailQR     = "mail_qr"
	ActionDownloadQR = "download_qr"
)

type actionSpec struct {
	name  string
	icon  string
	color string
}

var galleryActions = []actionSpec{
	{ActionShow, "fa-glasses", ""},
	{ActionMail, "fa-envelope", ""},
	{ActionDownload, "fa-download", ""},
	{ActionShowQRs, "fa-qrcode", ""},
	{ActionPrint, "fa-print", ""},
	{ActionDelete, "fa-trash", "red"},
}

// backendActions are the /f/{action}/picture/{name} routes the photobooth serves.
// show_qrs is a page of this server, not a backend route.
var backendActions = mapset.NewSet(
	ActionShow, ActionMail, ActionDownload, ActionPrint, ActionDelete,
	ActionMailQR, ActionDownloadQR,
)

// IsBackendAction reports whether action is a picture route of the backend
func IsBackendAction(action string) bool {
	return backendActions.Contains(action)
}

// Action is one link in a gallery cell's action cluster
type Action struct {
	ID    string
	Name  string
	Href  string
	Icon  string
	Color string
}

// Cell is one picture in the gallery
type Cell struct {
	ID          string
	Number      int
	Name        string
	ImageURL    string
	DateTime    string
	ColumnClass string
	Actions     []Action
}

// Row is a gallery row. Cells are kept newest first.
type Row struct {
	ID     string
	Number int
	Cells  []Cell
}

// Slide is one picture in the slideshow
type Slide struct {
	Number   int
	Name     string
	ImageURL string
	Caption  string
}

// Renderer builds the gallery or slideshow view model, one record at a time.
// It is not safe for concurrent use; State serialises access to it.
type Renderer struct {
	mode        picture.ViewMode
	columns     int
	columnClass string
	formatter   *timefmt.Formatter

	rows   []Row // newest first
	slides []Slide

	currentRow           int
	currentPictureNumber int
}

// NewRenderer creates a renderer for a view mode
func NewRenderer(mode picture.ViewMode, columns int, columnClass string, formatter *timefmt.Formatter) *Renderer {
	if columns < 1 {
		columns = 1
	}
	if formatter == nil {
		formatter = timefmt.New(timefmt.Options{})
	}
	return &Renderer{
		mode:        mode,
		columns:     columns,
		columnClass: columnClass,
		formatter:   formatter,
	}
}

// Render adds one record to the view. Records must be passed in arrival order.
func (r *Renderer) Render(rec picture.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	switch r.mode {
	case picture.ViewSlideshow:
		r.currentPictureNumber++
		r.slides = append(r.slides, Slide{
			Number:   r.currentPictureNumber,
			Name:     rec.Name,
			ImageURL: ShowURL(rec.Name),
			Caption:  rec.DateTime,
		})
	case picture.ViewGallery:
		// Counted before the increment so rows open at pictures 1, 1+columns, ...
		// Counting after it, as the first kiosk pages did, left the first
		// picture without a row.
		if r.currentPictureNumber%r.columns == 0 {
			r.currentRow++
			r.rows = append([]Row{{
				ID:     fmt.Sprintf("row_%d", r.currentRow),
				Number: r.currentRow,
			}}, r.rows...)
		}
		r.currentPictureNumber++
		newest := &r.rows[0]
		newest.Cells = append([]Cell{r.cell(rec)}, newest.Cells...)
	default:
		return fmt.Errorf("%w: %q", picture.ErrUnknownViewMode, r.mode)
	}

	return nil
}

func (r *Renderer) cell(rec picture.Record) Cell {
	n := r.currentPictureNumber

	dateTime := rec.DateTime
	if formatted, err := r.formatter.Format(rec.DateTime, string(timefmt.SelectorDateTime)); err == nil {
		dateTime = formatted
	}

	actions := make([]Action, 0, len(galleryActions))
	for _, a := range galleryActions {
		actions = append(actions, Action{
			ID:    fmt.Sprintf("%s_%d", a.name, n),
			Name:  a.name,
			Href:  ActionHref(a.name, rec.Name),
			Icon:  a.icon,
			Color: a.color,
		})
	}

	return Cell{
		ID:          fmt.Sprintf("picture_%d", n),
		Number:      n,
		Name:        rec.Name,
		ImageURL:    ShowURL(rec.Name),
		DateTime:    dateTime,
		ColumnClass: r.columnClass,
		Actions:     actions,
	}
}

// Mode returns the view mode the renderer was built for
func (r *Renderer) Mode() picture.ViewMode {
	return r.mode
}

// Counters returns the current row and picture counters
func (r *Renderer) Counters() (row, pictureNumber int) {
	return r.currentRow, r.currentPictureNumber
}

// Rows returns a copy of the gallery rows, newest first
func (r *Renderer) Rows() []Row {
	out := make([]Row, len(r.rows))
	for i, row := range r.rows {
		out[i] = row
		out[i].Cells = append([]Cell(nil), row.Cells...)
	}
	return out
}

// Slides returns a copy of the slides in arrival order
func (r *Renderer) Slides() []Slide {
	return append([]Slide(nil), r.slides...)
}

// SlideCount returns the number of slides rendered so far
func (r *Renderer) SlideCount() int {
	return len(r.slides)
}

// ShowURL is the backend URL serving the picture itself
func ShowURL(name string) string {
	return "/f/show/picture/" + url.PathEscape(name)
}

// MailQRURL is the backend URL of the mail QR code for a picture
func MailQRURL(name string) string {
	return "/f/" + ActionMailQR + "/picture/" + url.PathEscape(name)
}

// DownloadQRURL is the backend URL of the download QR code for a picture
func DownloadQRURL(name string) string {
	return "/f/" + ActionDownloadQR + "/picture/" + url.PathEscape(name)
}

// ActionHref returns the relative link of a per-picture action
func ActionHref(action, name string) string {
	if action == ActionShowQRs {
		return "show_qrs?picture=" + url.QueryEscape(name)
	}
	return "f/" + action + "/picture/" + url.PathEscape(name)
}
