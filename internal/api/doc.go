// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

// Package api implements the HTTP surface: REST handlers for quotes,
// authors, and tags, the websocket notification endpoint, health probes,
// and the chi router with its middleware stack.
//
// All endpoints respond with the standard envelope
// {status, data, metadata, error?}; list endpoints place a
// {count, next, previous, results} page inside data. Domain errors from
// the database layer are translated to HTTP status codes in errors.go.
package api
