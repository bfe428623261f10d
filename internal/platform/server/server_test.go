package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"photobooth-display/internal/config"
)

func TestNew(t *testing.T) {
	handler := http.NotFoundHandler()

	tests := []struct {
		name      string
		host      string
		cfg       *config.ServerConfig
		wantAddr  string
		wantRead  time.Duration
		wantWrite time.Duration
		wantIdle  time.Duration
	}{
		{
			name:      "defaults",
			wantAddr:  ":8080",
			wantRead:  defaultReadTimeout,
			wantWrite: defaultWriteTimeout,
			wantIdle:  defaultIdleTimeout,
		},
		{
			name:      "configured",
			host:      "0.0.0.0",
			cfg:       &config.ServerConfig{ReadTimeout: time.Second, WriteTimeout: 2 * time.Second, IdleTimeout: 3 * time.Second},
			wantAddr:  "0.0.0.0:8080",
			wantRead:  time.Second,
			wantWrite: 2 * time.Second,
			wantIdle:  3 * time.Second,
		},
		{
			name:      "zero values keep defaults",
			host:      "localhost",
			cfg:       &config.ServerConfig{WriteTimeout: 5 * time.Second},
			wantAddr:  "localhost:8080",
			wantRead:  defaultReadTimeout,
			wantWrite: 5 * time.Second,
			wantIdle:  defaultIdleTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(tt.host, "8080", handler, tt.cfg)
			assert.Equal(t, tt.wantAddr, srv.Addr)
			assert.Equal(t, tt.wantRead, srv.ReadTimeout)
			assert.Equal(t, tt.wantWrite, srv.WriteTimeout)
			assert.Equal(t, tt.wantIdle, srv.IdleTimeout)
		})
	}
}
