// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quotable/quotable/internal/database"
	"github.com/quotable/quotable/internal/logging"
	"github.com/quotable/quotable/internal/metrics"
	"github.com/quotable/quotable/internal/models"
)

// ListQuotes handles GET /quotes with the declared filter parameters
// (tags, author_id, search, ordering) plus limit/offset paging.
func (h *Handler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	page := h.parsePagination(r)

	filter := database.QuoteFilter{
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	applyQuoteFilters(r, &filter)

	quotes, count, err := h.db.ListQuotes(r.Context(), filter)
	if err != nil {
		respondDomainError(w, err, "Quote not found")
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   listResponse(r, quotes, count, page),
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// CreateQuote handles POST /quotes. On success a single notification is
// published to the websocket room, after the database commit.
func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateQuoteRequest
	if !h.decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	quote := &models.Quote{
		Text:     req.Text,
		AuthorID: req.AuthorID,
	}
	if err := h.db.CreateQuote(r.Context(), quote, req.TagIDs); err != nil {
		respondDomainError(w, err, "Quote not found")
		return
	}

	metrics.QuotesCreated.Inc()
	if h.notifier != nil {
		h.notifier.BroadcastNotification("Created new quote", map[string]string{
			"quote_id": quote.ID,
		})
	}
	logger := logging.Ctx(r.Context())
	logger.Info().
		Str("quote_id", quote.ID).
		Str("author_id", quote.AuthorID).
		Msg("Quote created")

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   quote,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// GetQuote handles GET /quotes/{quote_id}.
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "quote_id")

	quote, err := h.db.GetQuote(r.Context(), id)
	if err != nil {
		respondDomainError(w, err, "Quote not found")
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   quote,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// UpdateQuote handles PATCH /quotes/{quote_id}: nil fields are left
// unchanged; a non-nil tag_ids replaces the whole tag set. No notification
// is published for updates.
func (h *Handler) UpdateQuote(w http.ResponseWriter, r *http.Request) {
	h.updateQuote(w, r, false)
}

// ReplaceQuote handles PUT /quotes/{quote_id}: text and author_id are
// required, and an omitted tag_ids clears the tag set.
func (h *Handler) ReplaceQuote(w http.ResponseWriter, r *http.Request) {
	h.updateQuote(w, r, true)
}

func (h *Handler) updateQuote(w http.ResponseWriter, r *http.Request, replace bool) {
	start := time.Now()
	id := chi.URLParam(r, "quote_id")

	var req models.UpdateQuoteRequest
	if !h.decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}
	if replace && (req.Text == nil || req.AuthorID == nil) {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"text and author_id are required", nil)
		return
	}

	update := database.QuoteUpdate{
		Text:     req.Text,
		AuthorID: req.AuthorID,
		TagIDs:   req.TagIDs,
	}
	if replace && req.TagIDs == nil {
		empty := []string{}
		update.TagIDs = &empty
	}

	quote, err := h.db.UpdateQuote(r.Context(), id, update)
	if err != nil {
		respondDomainError(w, err, "Quote not found")
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   quote,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// DeleteQuote handles DELETE /quotes/{quote_id}.
func (h *Handler) DeleteQuote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "quote_id")

	if err := h.db.DeleteQuote(r.Context(), id); err != nil {
		respondDomainError(w, err, "Quote not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetQuoteTags handles GET /quotes/{quote_id}/tags, returning the tags
// attached to one quote.
func (h *Handler) GetQuoteTags(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "quote_id")

	tags, err := h.db.GetQuoteTags(r.Context(), id)
	if err != nil {
		respondDomainError(w, err, "Quote not found")
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   tags,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
