// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

// Package main is the entry point for the Quotable server.
//
// Quotable is a quotes service: a REST API over authors, tags, and quotes
// backed by DuckDB, plus a websocket room that notifies connected clients
// whenever a quote is created.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered settings from defaults, config.yaml, and
//     environment variables (Koanf v2)
//  2. Database: embedded DuckDB with the authors/tags/quotes schema
//  3. WebSocket Hub: the realtime notification room
//  4. HTTP Server: chi router with the REST API, health probes, and
//     Prometheus metrics
//
// The hub and the HTTP server run under a suture supervisor tree, so a
// crash in one restarts that service without taking down the other.
//
// # Configuration
//
// Highest priority wins:
//   - Environment variables (HTTP_PORT, DUCKDB_PATH, CORS_ORIGINS, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops
// accepting connections, waits for in-flight requests up to the shutdown
// timeout, disconnects websocket clients, and closes the database.
//
// # Example Usage
//
// Development with an in-memory database:
//
//	export DUCKDB_PATH=""
//	export DISABLE_RATE_LIMIT=true
//	./quotable
//
// Production:
//
//	export DUCKDB_PATH=/data/quotable.duckdb
//	export CORS_ORIGINS=https://quotes.example.com
//	export ENVIRONMENT=production
//	./quotable
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quotable/quotable/internal/api"
	"github.com/quotable/quotable/internal/config"
	"github.com/quotable/quotable/internal/database"
	"github.com/quotable/quotable/internal/logging"
	"github.com/quotable/quotable/internal/supervisor"
	"github.com/quotable/quotable/internal/supervisor/services"
	ws "github.com/quotable/quotable/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("environment", cfg.Server.Environment).
		Str("ws_path", cfg.Notifications.Path).
		Msg("Starting Quotable")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	hub := ws.NewHub(cfg.Notifications)
	handler := api.NewHandler(db, cfg, hub)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.SetupChi(handler, cfg),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}
