// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

/*
Package metrics provides Prometheus metrics collection and export for observability.

The package exposes instrumentation for:
  - API endpoint latency and throughput
  - DuckDB query performance
  - WebSocket connection counts and notification delivery

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8000/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Active requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

Database Metrics:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
    Labels: operation, table

WebSocket Metrics:
  - websocket_connections: Active connections (gauge)
  - websocket_messages_sent_total: Messages sent (counter)
  - websocket_messages_received_total: Messages received (counter)
  - websocket_errors_total: Errors by type (counter)
  - notifications_broadcast_total: Notifications broadcast to the room (counter)
  - notifications_dropped_total: Notifications dropped on a full queue (counter)

# Usage Example

Recording metrics from a handler:

	start := time.Now()
	// ... serve the request ...
	metrics.RecordAPIRequest(r.Method, routePattern, strconv.Itoa(status), time.Since(start))

All metric recording functions are safe for concurrent use. Endpoint labels use
the chi route pattern (e.g. /quotes/{quote_id}) rather than the raw URL path to
keep cardinality bounded.
*/
package metrics
