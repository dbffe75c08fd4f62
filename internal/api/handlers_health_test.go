// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var data struct {
		Status            string `json:"status"`
		DatabaseConnected bool   `json:"database_connected"`
		Version           string `json:"version"`
	}
	decodeData(t, env, &data)
	if data.Status != "healthy" {
		t.Errorf("Expected healthy status, got %q", data.Status)
	}
	if !data.DatabaseConnected {
		t.Error("Expected database_connected true")
	}
	if data.Version == "" {
		t.Error("Expected a version string")
	}
}

func TestHealthLive(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet, "/health/live", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var data struct {
		Alive bool `json:"alive"`
	}
	decodeData(t, env, &data)
	if !data.Alive {
		t.Error("Expected alive true")
	}
}

func TestHealthReady(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet, "/health/ready", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if env.Status != "ready" {
		t.Errorf("Expected ready status, got %q", env.Status)
	}
}

func TestHealthReady_NoDatabase(t *testing.T) {
	cfg := testConfig()
	handler := NewHandler(nil, cfg, nil)
	router := SetupChi(handler, cfg)

	rec, env := doRequest(t, router, http.MethodGet, "/health/ready", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503 without a database, got %d", rec.Code)
	}
	if env.Status != "not_ready" {
		t.Errorf("Expected not_ready status, got %q", env.Status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("Expected Prometheus exposition output")
	}
}

func TestWebSocket_NilHub(t *testing.T) {
	cfg := testConfig()
	handler := NewHandler(nil, cfg, nil)
	router := SetupChi(handler, cfg)

	rec, env := doRequest(t, router, http.MethodGet, "/ws/notifications", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503 with nil hub, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "SERVICE_UNAVAILABLE" {
		t.Fatalf("Expected SERVICE_UNAVAILABLE, got %+v", env.Error)
	}
}
