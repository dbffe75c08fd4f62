// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/quotable/quotable/internal/config"
	"github.com/quotable/quotable/internal/database"
	"github.com/quotable/quotable/internal/logging"
	"github.com/quotable/quotable/internal/models"
	ws "github.com/quotable/quotable/internal/websocket"
)

//nolint:gochecknoinits // Silence logs during tests
func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

// testDBSemaphore limits concurrent database creation: too many concurrent
// DuckDB CGO calls can hang under CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	db, err := database.New(&config.DatabaseConfig{Path: "", MaxMemory: "1GB"})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:        "127.0.0.1",
			Port:        8000,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		API: config.APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
			MaxBodyBytes:    1 << 20,
		},
		Security: config.SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitDisabled: true,
		},
		Notifications: config.NotificationsConfig{
			Path:          "/ws/notifications",
			SendBuffer:    256,
			WriteTimeout:  10 * time.Second,
			PongTimeout:   60 * time.Second,
			MaxMessageLen: 4096,
		},
		Logging: config.LoggingConfig{Level: "error", Format: "json"},
	}
}

// newTestHandler builds a handler over a fresh in-memory database and a
// running notification hub.
func newTestHandler(t *testing.T) (*Handler, *ws.Hub) {
	t.Helper()

	db := setupTestDB(t)
	cfg := testConfig()

	hub := ws.NewHub(cfg.Notifications)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.RunWithContext(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return NewHandler(db, cfg, hub), hub
}

// newTestRouter builds the full chi router over a fresh handler.
func newTestRouter(t *testing.T) (http.Handler, *Handler) {
	t.Helper()
	handler, _ := newTestHandler(t)
	return SetupChi(handler, handler.config), handler
}

// envelope mirrors models.APIResponse with a raw data payload for
// per-test decoding.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

// doRequest executes one request against the router and decodes the
// response envelope.
func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code == http.StatusNoContent || rec.Body.Len() == 0 {
		return rec, nil
	}

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode response envelope (%d): %v\nbody: %s", rec.Code, err, rec.Body.String())
	}
	return rec, &env
}

// decodeData unmarshals the envelope data payload into dst.
func decodeData(t *testing.T, env *envelope, dst interface{}) {
	t.Helper()
	if env == nil {
		t.Fatal("Expected a response envelope, got none")
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("Failed to decode data payload: %v\ndata: %s", err, string(env.Data))
	}
}

// jsonUnmarshal decodes raw JSON, keeping test files off a direct codec
// import.
func jsonUnmarshal(data []byte, dst interface{}) error {
	return json.Unmarshal(data, dst)
}

// listPage mirrors models.ListResponse with raw results.
type listPage struct {
	Count    int64           `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  json.RawMessage `json:"results"`
}

// createAuthor inserts an author through the API and returns it.
func createAuthor(t *testing.T, router http.Handler, firstName, lastName, birthDate string) models.Author {
	t.Helper()

	rec, env := doRequest(t, router, http.MethodPost, "/authors", models.CreateAuthorRequest{
		FirstName: firstName,
		LastName:  lastName,
		BirthDate: birthDate,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 creating author, got %d: %s", rec.Code, rec.Body.String())
	}

	var author models.Author
	decodeData(t, env, &author)
	return author
}

// createTag inserts a tag through the API and returns it.
func createTag(t *testing.T, router http.Handler, name string) models.Tag {
	t.Helper()

	rec, env := doRequest(t, router, http.MethodPost, "/tags", models.CreateTagRequest{Name: name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 creating tag, got %d: %s", rec.Code, rec.Body.String())
	}

	var tag models.Tag
	decodeData(t, env, &tag)
	return tag
}

// createQuote inserts a quote through the API and returns it.
func createQuote(t *testing.T, router http.Handler, text, authorID string, tagIDs []string) models.Quote {
	t.Helper()

	rec, env := doRequest(t, router, http.MethodPost, "/quotes", models.CreateQuoteRequest{
		Text:     text,
		AuthorID: authorID,
		TagIDs:   tagIDs,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 creating quote, got %d: %s", rec.Code, rec.Body.String())
	}

	var quote models.Quote
	decodeData(t, env, &quote)
	return quote
}
