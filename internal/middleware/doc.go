// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

// Package middleware provides HTTP middleware shared by all API routes:
// request ID propagation, structured request logging, Prometheus
// instrumentation, and gzip response compression. All middleware use the
// standard func(http.Handler) http.Handler form so they compose with
// chi's Use chain.
package middleware
