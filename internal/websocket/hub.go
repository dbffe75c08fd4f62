// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

// Package websocket implements the notification room: a single process-wide
// group of connected sockets that all receive the same broadcast events.
package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/quotable/quotable/internal/config"
	"github.com/quotable/quotable/internal/logging"
	"github.com/quotable/quotable/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	// This is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Event types delivered to room members.
const (
	MessageTypeNotification = "notification"
	MessageTypeError        = "error"
)

// ErrorReasonReceiveUnsupported is the fixed reason broadcast when a client
// sends anything to the room. The room is send-only from the server's
// perspective; inbound payloads are rejected by policy.
const ErrorReasonReceiveUnsupported = "You cannot send anything to this room!"

// Message is a single room event. Events serialize as flat JSON objects:
//
//	{"type": "notification", "text": "Created new quote", "quote_id": "..."}
//	{"type": "error", "reason": "You cannot send anything to this room!"}
type Message map[string]string

// NewNotification builds a notification event with optional extra fields
// merged into the top-level object.
func NewNotification(text string, extra map[string]string) Message {
	msg := Message{
		"type": MessageTypeNotification,
		"text": text,
	}
	for k, v := range extra {
		if k == "type" || k == "text" {
			continue
		}
		msg[k] = v
	}
	return msg
}

// NewError builds an error event with a fixed reason.
func NewError(reason string) Message {
	return Message{
		"type":   MessageTypeError,
		"reason": reason,
	}
}

// Hub maintains the set of active clients and broadcasts events to them.
// Membership is ephemeral: clients are added on connect and removed on
// disconnect or send failure, never persisted.
type Hub struct {
	cfg        config.NotificationsConfig
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub(cfg config.NotificationsConfig) *Hub {
	return &Hub{
		cfg:        cfg,
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext starts the hub with context support for graceful shutdown.
// This method is designed for use with suture supervision.
//
// When the context is canceled:
//  1. All connected clients are gracefully closed
//  2. The method returns ctx.Err()
//
// DETERMINISM: Uses priority-based selection to ensure predictable behavior:
//   - Priority 1: Context cancellation (shutdown)
//   - Priority 2: Client lifecycle events (Register/Unregister)
//   - Priority 3: Broadcast messages
//
// Lifecycle events are drained before broadcasts so client state is always
// consistent before an event fans out.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// Priority 1: Check for shutdown (highest priority, non-blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		// Priority 2: Handle client lifecycle events (non-blocking check)
		select {
		case client := <-h.Register:
			h.registerClient(client)
			continue
		case client := <-h.Unregister:
			h.unregisterClient(client)
			continue
		default:
			// No lifecycle events pending
		}

		// Priority 3: Handle broadcast messages or wait for any event (blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("websocket client joined notification room")
}

// unregisterClient removes a client from the room. Removing an
// already-removed client is a no-op.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("websocket client left notification room")
}

// logGracefulShutdown closes all clients and logs structured shutdown
// information. ctx.Err() is not logged as an error because cancellation is
// expected during graceful shutdown.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	reason := getShutdownReason(ctx)
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(reason)).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

// getShutdownReason determines the shutdown reason from the context error.
func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.Canceled:
		return ShutdownReasonContextCanceled
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// broadcastToClients sends an event to every current room member in a
// deterministic order.
//
// DETERMINISM: Clients are sorted by their monotonically assigned ID so
// delivery order is reproducible in tests. A member whose send buffer is
// full is dropped from the room; other members still receive the event.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	// Track clients to remove (can't modify map during iteration)
	var toRemove []*Client

	for _, client := range clients {
		select {
		case client.send <- message:
			metrics.WSMessagesSent.Inc()
		default:
			// Channel full or closed, mark for removal
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		metrics.NotificationsDropped.Inc()
		logging.Warn().Uint64("client_id", client.id).Msg("dropping slow websocket client")
	}
	if len(toRemove) > 0 {
		metrics.WSConnections.Set(float64(len(h.clients)))
	}
}

// closeAllClients closes all connected clients in ID order.
// Called during shutdown to ensure clean termination.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WSConnections.Set(0)
	logging.Info().Msg("closed all websocket clients during shutdown")
}

// BroadcastNotification publishes a notification event to every current
// room member. Fire-and-forget: the event is dropped with a warning when
// the broadcast queue is full, and delivery failures never propagate to
// the caller.
func (h *Hub) BroadcastNotification(text string, extra map[string]string) {
	message := NewNotification(text, extra)

	select {
	case h.broadcast <- message:
		metrics.NotificationsBroadcast.Inc()
	default:
		metrics.NotificationsDropped.Inc()
		logging.Warn().Str("text", text).Msg("broadcast channel full, dropping notification")
	}
}

// BroadcastError publishes an error event room-wide, including to the
// member that triggered it.
func (h *Hub) BroadcastError(reason string) {
	message := NewError(reason)

	select {
	case h.broadcast <- message:
	default:
		logging.Warn().Str("reason", reason).Msg("broadcast channel full, dropping error event")
	}
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
