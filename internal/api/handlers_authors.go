// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quotable/quotable/internal/database"
	"github.com/quotable/quotable/internal/models"
)

// ListAuthors handles GET /authors. Supports search across id, first name,
// and last name, plus limit/offset paging.
func (h *Handler) ListAuthors(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	page := h.parsePagination(r)
	search := r.URL.Query().Get("search")

	authors, count, err := h.db.ListAuthors(r.Context(), search, page.Limit, page.Offset)
	if err != nil {
		respondDomainError(w, err, "Author not found")
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   listResponse(r, authors, count, page),
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// CreateAuthor handles POST /authors.
func (h *Handler) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateAuthorRequest
	if !h.decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	birthDate, err := models.ParseDate(req.BirthDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "birth_date must be a valid YYYY-MM-DD date", err)
		return
	}

	author := &models.Author{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BirthDate: birthDate,
	}
	if req.DeathDate != nil {
		deathDate, err := models.ParseDate(*req.DeathDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "death_date must be a valid YYYY-MM-DD date", err)
			return
		}
		author.DeathDate = &deathDate
	}

	if err := h.db.CreateAuthor(r.Context(), author); err != nil {
		respondDomainError(w, err, "Author not found")
		return
	}

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   author,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// GetAuthor handles GET /authors/{author_id}.
func (h *Handler) GetAuthor(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "author_id")

	author, err := h.db.GetAuthor(r.Context(), id)
	if err != nil {
		respondDomainError(w, err, "Author not found")
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   author,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// UpdateAuthor handles PATCH /authors/{author_id}: nil fields are left
// unchanged.
func (h *Handler) UpdateAuthor(w http.ResponseWriter, r *http.Request) {
	h.updateAuthor(w, r, false)
}

// ReplaceAuthor handles PUT /authors/{author_id}: first_name and birth_date
// are required, and omitted optional fields are reset.
func (h *Handler) ReplaceAuthor(w http.ResponseWriter, r *http.Request) {
	h.updateAuthor(w, r, true)
}

func (h *Handler) updateAuthor(w http.ResponseWriter, r *http.Request, replace bool) {
	start := time.Now()
	id := chi.URLParam(r, "author_id")

	var req models.UpdateAuthorRequest
	if !h.decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}
	if replace && (req.FirstName == nil || req.BirthDate == nil) {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"first_name and birth_date are required", nil)
		return
	}

	update := database.AuthorUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.BirthDate != nil {
		birthDate, err := models.ParseDate(*req.BirthDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "birth_date must be a valid YYYY-MM-DD date", err)
			return
		}
		update.BirthDate = &birthDate
	}
	if req.DeathDate != nil {
		deathDate, err := models.ParseDate(*req.DeathDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "death_date must be a valid YYYY-MM-DD date", err)
			return
		}
		update.DeathDate = &deathDate
	}
	if replace {
		// PUT replaces the whole resource: absent optional fields reset.
		if req.LastName == nil {
			empty := ""
			update.LastName = &empty
		}
		update.ClearDeathDate = req.DeathDate == nil
	}

	author, err := h.db.UpdateAuthor(r.Context(), id, update)
	if err != nil {
		respondDomainError(w, err, "Author not found")
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   author,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// DeleteAuthor handles DELETE /authors/{author_id}. Deleting an author
// removes the author's quotes as well.
func (h *Handler) DeleteAuthor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "author_id")

	if err := h.db.DeleteAuthor(r.Context(), id); err != nil {
		respondDomainError(w, err, "Author not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
