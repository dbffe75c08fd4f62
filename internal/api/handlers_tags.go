// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quotable/quotable/internal/models"
)

// ListTags handles GET /tags. Supports search across id and name, plus
// limit/offset paging. Tags are ordered by name.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	page := h.parsePagination(r)
	search := r.URL.Query().Get("search")

	tags, count, err := h.db.ListTags(r.Context(), search, page.Limit, page.Offset)
	if err != nil {
		respondDomainError(w, err, "Tag not found")
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   listResponse(r, tags, count, page),
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// CreateTag handles POST /tags. Tag names are unique and case-sensitive.
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateTagRequest
	if !h.decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	tag := &models.Tag{Name: req.Name}
	if err := h.db.CreateTag(r.Context(), tag); err != nil {
		respondDomainError(w, err, "Tag not found")
		return
	}

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   tag,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// GetTag handles GET /tags/{tag_id}.
func (h *Handler) GetTag(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "tag_id")

	tag, err := h.db.GetTag(r.Context(), id)
	if err != nil {
		respondDomainError(w, err, "Tag not found")
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   tag,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// UpdateTag handles PATCH /tags/{tag_id}: a nil name is left unchanged.
func (h *Handler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	h.updateTag(w, r, false)
}

// ReplaceTag handles PUT /tags/{tag_id}: name is required.
func (h *Handler) ReplaceTag(w http.ResponseWriter, r *http.Request) {
	h.updateTag(w, r, true)
}

func (h *Handler) updateTag(w http.ResponseWriter, r *http.Request, replace bool) {
	start := time.Now()
	id := chi.URLParam(r, "tag_id")

	var req models.UpdateTagRequest
	if !h.decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}
	if replace && req.Name == nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "name is required", nil)
		return
	}

	tag, err := h.db.UpdateTag(r.Context(), id, req.Name)
	if err != nil {
		respondDomainError(w, err, "Tag not found")
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   tag,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// DeleteTag handles DELETE /tags/{tag_id}. Quotes carrying the tag remain,
// only the association rows are removed.
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tag_id")

	if err := h.db.DeleteTag(r.Context(), id); err != nil {
		respondDomainError(w, err, "Tag not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
