// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

// Package services wraps application components as suture services.
package services

import (
	"context"
)

// ContextHub matches *websocket.Hub's RunWithContext method, keeping this
// package free of a websocket import.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// WebSocketHubService wraps the notification hub as a supervised service.
// The hub's RunWithContext already follows the suture.Service pattern, so
// the wrapper only delegates and names the service for logging.
type WebSocketHubService struct {
	hub  ContextHub
	name string
}

// NewWebSocketHubService creates a hub service wrapper.
func NewWebSocketHubService(hub ContextHub) *WebSocketHubService {
	return &WebSocketHubService{
		hub:  hub,
		name: "websocket-hub",
	}
}

// Serve implements suture.Service. Returns ctx.Err() on normal shutdown
// after the hub has closed all clients.
func (w *WebSocketHubService) Serve(ctx context.Context) error {
	return w.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer; suture uses it in log messages.
func (w *WebSocketHubService) String() string {
	return w.name
}
