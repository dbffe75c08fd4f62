// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package websocket

import (
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quotable/quotable/internal/logging"
	"github.com/quotable/quotable/internal/metrics"
)

// clientIDCounter generates unique, monotonically increasing IDs for
// clients, giving broadcasts a stable iteration order.
var clientIDCounter atomic.Uint64

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	id   uint64
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

// NewClient creates a new Client with a unique monotonic ID. The caller must
// register the client with the hub BEFORE calling Start, otherwise an event
// broadcast between accept and registration would be missed.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	sendBuffer := hub.cfg.SendBuffer
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	return &Client{
		id:   clientIDCounter.Add(1),
		hub:  hub,
		conn: conn,
		send: make(chan Message, sendBuffer),
	}
}

// ID returns the client's unique identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// readPump consumes frames from the websocket connection. The room is
// send-only: every inbound payload, whatever its content, is answered with
// a room-wide error broadcast. The pump exits on any read error, which
// unregisters the client.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close() // Explicitly ignore error - best-effort cleanup
	}()

	maxLen := c.hub.cfg.MaxMessageLen
	if maxLen <= 0 {
		maxLen = 4096
	}
	c.conn.SetReadLimit(maxLen)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.pongWait())); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait()))
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Msg("unexpected websocket close error")
			}
			break
		}

		// Inbound messages are rejected by policy, with the error event
		// broadcast to the whole room including the sender.
		metrics.WSMessagesReceived.Inc()
		c.hub.BroadcastError(ErrorReasonReceiveUnsupported)
	}
}

// writePump pumps events from the hub to the websocket connection and keeps
// the connection alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod())
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Explicitly ignore error - best-effort cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait())); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logging.Error().Err(err).Msg("failed to write close message")
				}
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				logging.Error().Err(err).Msg("failed to write JSON message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait())); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) writeWait() time.Duration {
	if c.hub.cfg.WriteTimeout > 0 {
		return c.hub.cfg.WriteTimeout
	}
	return 10 * time.Second
}

func (c *Client) pongWait() time.Duration {
	if c.hub.cfg.PongTimeout > 0 {
		return c.hub.cfg.PongTimeout
	}
	return 60 * time.Second
}

func (c *Client) pingPeriod() time.Duration {
	return (c.pongWait() * 9) / 10
}
