package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNavigationFor(t *testing.T) {
	tests := []struct {
		key    string
		path   string
		mapped bool
	}{
		{"27", PathIndex, true},
		{"Escape", PathIndex, true},
		{"13", PathSlideshow, true},
		{"Enter", PathSlideshow, true},
		{"83", PathSlideshow, true},
		{"s", PathSlideshow, true},
		{"S", PathSlideshow, true},
		{"71", PathGallery, true},
		{"g", PathGallery, true},
		{"G", PathGallery, true},
		{"65", "", false},
		{"a", "", false},
		{"", "", false},
		{"  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			path, ok := NavigationFor(tt.key)
			assert.Equal(t, tt.mapped, ok)
			assert.Equal(t, tt.path, path)
		})
	}
}
