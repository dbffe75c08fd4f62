// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quotable/quotable/internal/config"
	"github.com/quotable/quotable/internal/database"
	"github.com/quotable/quotable/internal/logging"
	"github.com/quotable/quotable/internal/metrics"
	ws "github.com/quotable/quotable/internal/websocket"
)

// NotificationPublisher is the seam between the HTTP layer and the
// notification room. Quote creation publishes through this interface so
// handlers never depend on the hub concretely.
type NotificationPublisher interface {
	BroadcastNotification(text string, extra map[string]string)
}

// Handler holds dependencies for all HTTP handlers.
type Handler struct {
	db        *database.DB
	config    *config.Config
	hub       *ws.Hub
	notifier  NotificationPublisher
	startTime time.Time
}

// NewHandler creates a handler with its dependencies. hub may be nil, in
// which case the websocket endpoint responds 503 and quote creation skips
// the notification.
func NewHandler(db *database.DB, cfg *config.Config, hub *ws.Hub) *Handler {
	h := &Handler{
		db:        db,
		config:    cfg,
		hub:       hub,
		startTime: time.Now(),
	}
	if hub != nil {
		h.notifier = hub
	}
	return h
}

// getUpgrader returns a websocket upgrader with origin checking against the
// configured CORS origins.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      h.checkWebSocketOrigin,
	}
}

// checkWebSocketOrigin validates the Origin header against the configured
// allow list. Requests without an Origin header are rejected: browsers
// always send one, and non-browser clients must identify themselves.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().
		Str("origin", sanitizeLogValue(origin)).
		Msg("Rejected websocket connection from disallowed origin")
	return false
}

// WebSocketNotifications upgrades the connection and attaches the client to
// the notification room. The client is registered with the hub before its
// pumps start so no broadcast can race past an accepted connection.
func (h *Handler) WebSocketNotifications(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE",
			"Notification room is not available", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		metrics.WSErrors.WithLabelValues("upgrade_failed").Inc()
		logging.Err(err).Msg("Websocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn)
	h.hub.Register <- client
	client.Start()

	logging.Debug().
		Uint64("client_id", client.ID()).
		Str("remote_addr", sanitizeLogValue(r.RemoteAddr)).
		Msg("Websocket client connected")
}
