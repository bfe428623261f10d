package web

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Navigation targets
const (
	PathIndex     = "/"
	PathSlideshow = "/slideshow"
	PathGallery   = "/gallery"
)

var (
	indexKeys     = mapset.NewSet("27", "escape", "esc")
	slideshowKeys = mapset.NewSet("13", "83", "enter", "s")
	galleryKeys   = mapset.NewSet("71", "g")
)

// NavigationFor maps a key (numeric key code or key name) to the page it
// opens. ok is false for keys that do nothing.
func NavigationFor(key string) (path string, ok bool) {
	k := normalizeKey(key)
	switch {
	case k == "":
		return "", false
	case indexKeys.Contains(k):
		return PathIndex, true
	case slideshowKeys.Contains(k):
		return PathSlideshow, true
	case galleryKeys.Contains(k):
		return PathGallery, true
	default:
		return "", false
	}
}

// normalizeKey folds case so "S" and "s" both map like key code 83
func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
