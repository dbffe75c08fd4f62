// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quotable/quotable/internal/config"
)

func TestCheckWebSocketOrigin(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		allowed bool
	}{
		{name: "missing origin rejected", origins: []string{"*"}, origin: "", allowed: false},
		{name: "wildcard allows any", origins: []string{"*"}, origin: "http://anywhere.test", allowed: true},
		{name: "exact match allowed", origins: []string{"http://example.com"}, origin: "http://example.com", allowed: true},
		{name: "mismatch rejected", origins: []string{"http://example.com"}, origin: "http://evil.test", allowed: false},
		{name: "one of several", origins: []string{"http://a.test", "http://b.test"}, origin: "http://b.test", allowed: true},
		{name: "empty allow list rejects", origins: []string{}, origin: "http://example.com", allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Security.CORSOrigins = tt.origins
			h := NewHandler(nil, cfg, nil)

			r := httptest.NewRequest(http.MethodGet, "/ws/notifications", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}

			if got := h.checkWebSocketOrigin(r); got != tt.allowed {
				t.Errorf("checkWebSocketOrigin(origin=%q, allow=%v) = %v, want %v",
					tt.origin, tt.origins, got, tt.allowed)
			}
		})
	}
}

func TestCheckWebSocketOrigin_NilConfig(t *testing.T) {
	h := &Handler{}

	r := httptest.NewRequest(http.MethodGet, "/ws/notifications", nil)
	r.Header.Set("Origin", "http://example.com")
	if !h.checkWebSocketOrigin(r) {
		t.Error("Expected nil config to allow any non-empty origin")
	}

	r.Header.Del("Origin")
	if h.checkWebSocketOrigin(r) {
		t.Error("Expected missing origin rejected even with nil config")
	}
}

func TestNewHandler(t *testing.T) {
	cfg := testConfig()
	h := NewHandler(nil, cfg, nil)

	if h.config != cfg {
		t.Error("Expected config stored")
	}
	if h.notifier != nil {
		t.Error("Expected nil notifier with nil hub")
	}
	if h.startTime.IsZero() {
		t.Error("Expected startTime set")
	}
}

func TestGetUpgrader(t *testing.T) {
	h := NewHandler(nil, &config.Config{}, nil)
	up := h.getUpgrader()

	if up.ReadBufferSize != 1024 || up.WriteBufferSize != 1024 {
		t.Errorf("Unexpected buffer sizes: %d/%d", up.ReadBufferSize, up.WriteBufferSize)
	}
	if up.HandshakeTimeout <= 0 {
		t.Error("Expected a handshake timeout")
	}
	if up.CheckOrigin == nil {
		t.Error("Expected an origin check")
	}
}
