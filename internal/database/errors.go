// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package database

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/quotable/quotable/internal/logging"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("record not found")

// ConflictError reports a uniqueness constraint violation, keyed by the
// field (or field group) that collided.
type ConflictError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflictError builds a ConflictError for the given field.
func NewConflictError(field, format string, args ...interface{}) *ConflictError {
	return &ConflictError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AsConflict extracts a *ConflictError from an error chain.
func AsConflict(err error) (*ConflictError, bool) {
	var conflict *ConflictError
	ok := errors.As(err, &conflict)
	return conflict, ok
}

// isUniqueViolation reports whether err looks like a DuckDB unique
// constraint violation. Uniqueness is pre-checked inside transactions, so
// this is only a backstop for races between concurrent writers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "Constraint Error")
}

// closeWithLog closes a resource and logs any error.
// Use this where close errors should be acknowledged but not fail the operation.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // Explicitly ignore error - cleanup is best-effort
	}
}

type rollbacker interface {
	Rollback() error
}

// rollbackOnError rolls back the transaction when err is non-nil, logging
// rollback failures without masking the original error.
func rollbackOnError(tx rollbacker, err error) {
	if err == nil {
		return
	}
	if rbErr := tx.Rollback(); rbErr != nil {
		logging.Error().Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
	}
}
