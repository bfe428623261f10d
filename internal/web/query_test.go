package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryParam(t *testing.T) {
	tests := []struct {
		name      string
		rawQuery  string
		param     string
		wantValue string
		wantOK    bool
	}{
		{name: "simple value", rawQuery: "picture=abc123", param: "picture", wantValue: "abc123", wantOK: true},
		{name: "leading question mark", rawQuery: "?picture=abc123", param: "picture", wantValue: "abc123", wantOK: true},
		{name: "among others", rawQuery: "a=1&picture=IMG_0003.jpg&b=2", param: "picture", wantValue: "IMG_0003.jpg", wantOK: true},
		{name: "percent-decoded", rawQuery: "picture=IMG%200003.jpg", param: "picture", wantValue: "IMG 0003.jpg", wantOK: true},
		{name: "plus is a space", rawQuery: "picture=a+b", param: "picture", wantValue: "a b", wantOK: true},
		{name: "bare key", rawQuery: "picture", param: "picture", wantValue: "", wantOK: true},
		{name: "empty value", rawQuery: "picture=", param: "picture", wantValue: "", wantOK: true},
		{name: "first match wins", rawQuery: "picture=a&picture=b", param: "picture", wantValue: "a", wantOK: true},
		{name: "no match", rawQuery: "other=1", param: "picture", wantValue: "", wantOK: false},
		{name: "prefix is not a match", rawQuery: "pictures=1", param: "picture", wantValue: "", wantOK: false},
		{name: "empty query", rawQuery: "", param: "picture", wantValue: "", wantOK: false},
		{name: "bad escape kept raw", rawQuery: "picture=%zz", param: "picture", wantValue: "%zz", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := QueryParam(tt.rawQuery, tt.param)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}
