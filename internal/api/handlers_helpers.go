// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/quotable/quotable/internal/logging"
	"github.com/quotable/quotable/internal/models"
	"github.com/quotable/quotable/internal/validation"
)

// sanitizeLogValue removes control characters from strings to prevent log
// injection. Newlines, carriage returns, and other control characters could
// otherwise allow forged log entries.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.Header().Set("Vary", "Accept-Encoding")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	etag := generateETag(data)
	w.Header().Set("ETag", etag)

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag creates a simple ETag from data using FNV-1a hash
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", sanitizeLogValue(code)).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondErrorDetails sends an error response carrying structured details,
// typically field-level validation output.
func respondErrorDetails(w http.ResponseWriter, status int, apiErr *models.APIError) {
	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: apiErr,
	})
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes, or a models.APIError if validation fails.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// decodeJSONBody decodes a JSON request body into dst, applying the
// configured request size limit. A false return means the error response
// has already been written.
func (h *Handler) decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	maxBytes := int64(1 << 20)
	if h.config != nil && h.config.API.MaxBodyBytes > 0 {
		maxBytes = int64(h.config.API.MaxBodyBytes)
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", err)
		return false
	}
	return true
}

// getIntParam extracts an integer query parameter with a default value
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// parseCommaSeparated parses a comma-separated string into a slice
func parseCommaSeparated(value string) []string {
	if value == "" {
		return nil
	}

	var result []string
	parts := strings.Split(value, ",")
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// pagination holds the validated limit/offset of a list request.
type pagination struct {
	Limit  int
	Offset int
}

// parsePagination reads limit and offset query parameters, clamping them to
// the configured bounds. Negative or unparseable values fall back to the
// defaults.
func (h *Handler) parsePagination(r *http.Request) pagination {
	defaultLimit := 20
	maxLimit := 100
	if h.config != nil {
		if h.config.API.DefaultPageSize > 0 {
			defaultLimit = h.config.API.DefaultPageSize
		}
		if h.config.API.MaxPageSize > 0 {
			maxLimit = h.config.API.MaxPageSize
		}
	}

	limit := getIntParam(r, "limit", defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset := getIntParam(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	return pagination{Limit: limit, Offset: offset}
}

// listResponse assembles the paginated collection payload with absolute
// next/previous links derived from the incoming request URL.
func listResponse(r *http.Request, results interface{}, count int64, page pagination) *models.ListResponse {
	resp := &models.ListResponse{
		Count:   count,
		Results: results,
	}

	if int64(page.Offset+page.Limit) < count {
		next := pageURL(r, page.Limit, page.Offset+page.Limit)
		resp.Next = &next
	}
	if page.Offset > 0 {
		prevOffset := page.Offset - page.Limit
		if prevOffset < 0 {
			prevOffset = 0
		}
		prev := pageURL(r, page.Limit, prevOffset)
		resp.Previous = &prev
	}

	return resp
}

// pageURL rebuilds the request URL as an absolute URL with the given limit
// and offset, preserving all other query parameters.
func pageURL(r *http.Request, limit, offset int) string {
	u := *r.URL
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	} else {
		q.Del("offset")
	}
	u.RawQuery = q.Encode()

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	u.Scheme = scheme
	u.Host = r.Host

	return u.String()
}
