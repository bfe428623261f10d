// Package web holds the request-level helpers shared by the page handlers
package web

import (
	"net/url"
	"strings"
)

// QueryParam looks name up in a raw query string such as "picture=abc&x=1".
// A leading "?" is ignored. A bare key without "=" is present with an empty
// value. Values are percent-decoded; undecodable values are returned raw.
func QueryParam(rawQuery, name string) (string, bool) {
	rawQuery = strings.TrimPrefix(rawQuery, "?")
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if key != name {
			continue
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		return value, true
	}
	return "", false
}
