// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPISecurityHeaders(t *testing.T) {
	handler := APISecurityHeaders()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/quotes", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("Expected nosniff, got %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("Expected DENY, got %q", got)
	}
	if got := rec.Header().Get("Referrer-Policy"); got != "strict-origin-when-cross-origin" {
		t.Errorf("Unexpected Referrer-Policy: %q", got)
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("Expected no HSTS on plain HTTP")
	}
}

func TestAPISecurityHeaders_HSTSBehindProxy(t *testing.T) {
	handler := APISecurityHeaders()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/quotes", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("Expected HSTS behind a TLS-terminating proxy")
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	cm := NewChiMiddleware(&ChiMiddlewareConfig{
		RateLimitRequests: 1,
		RateLimitWindow:   time.Minute,
		RateLimitDisabled: true,
	})
	handler := cm.RateLimit()(okHandler())

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/quotes", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected no limiting when disabled, got %d on request %d", rec.Code, i)
		}
	}
}

func TestRateLimit_Exceeded(t *testing.T) {
	cm := NewChiMiddleware(&ChiMiddlewareConfig{
		RateLimitRequests: 2,
		RateLimitWindow:   time.Minute,
	})
	handler := cm.RateLimit()(okHandler())

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/quotes", nil)
		req.RemoteAddr = "10.1.2.3:1234"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 on the third request, got %d", last.Code)
	}

	var env envelope
	if err := jsonUnmarshal(last.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode 429 body: %v", err)
	}
	if env.Error == nil || env.Error.Code != "RATE_LIMIT_EXCEEDED" {
		t.Fatalf("Expected RATE_LIMIT_EXCEEDED envelope, got %+v", env.Error)
	}
}

func TestRateLimit_PerIP(t *testing.T) {
	cm := NewChiMiddleware(&ChiMiddlewareConfig{
		RateLimitRequests: 1,
		RateLimitWindow:   time.Minute,
	})
	handler := cm.RateLimit()(okHandler())

	// Exhaust the budget for one IP.
	req := httptest.NewRequest(http.MethodGet, "/quotes", nil)
	req.RemoteAddr = "10.0.0.1:1111"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected first request allowed, got %d", rec.Code)
	}

	// A different IP has its own budget.
	req = httptest.NewRequest(http.MethodGet, "/quotes", nil)
	req.RemoteAddr = "10.0.0.2:2222"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected independent budget per IP, got %d", rec.Code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	cm := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"http://example.com"},
		CORSAllowedMethods: []string{"GET", "POST"},
		CORSAllowedHeaders: []string{"Content-Type"},
	})
	handler := cm.CORS()(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/quotes", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Errorf("Expected allowed origin echoed, got %q", got)
	}
}

func TestDefaultChiMiddlewareConfig(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()

	if len(cfg.CORSAllowedOrigins) != 0 {
		t.Error("Expected no CORS origins by default")
	}
	if cfg.RateLimitRequests != 100 || cfg.RateLimitWindow != time.Minute {
		t.Errorf("Unexpected rate limit defaults: %d/%s", cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
	if cfg.RateLimitDisabled {
		t.Error("Expected rate limiting enabled by default")
	}
}
