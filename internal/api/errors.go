// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package api

import (
	"errors"
	"net/http"

	"github.com/quotable/quotable/internal/database"
	"github.com/quotable/quotable/internal/models"
)

// respondDomainError translates database-layer errors into HTTP responses:
//
//   - ErrNotFound       -> 404 NOT_FOUND
//   - ConflictError     -> 400 CONFLICT (uniqueness violation, field in details)
//   - RelationError     -> 400 VALIDATION_ERROR (unknown author_id / tag_ids)
//   - anything else     -> 500 DATABASE_ERROR
//
// notFoundMessage names the resource for the 404 case.
func respondDomainError(w http.ResponseWriter, err error, notFoundMessage string) {
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", notFoundMessage, nil)
		return
	}

	if conflict, ok := database.AsConflict(err); ok {
		respondErrorDetails(w, http.StatusBadRequest, &models.APIError{
			Code:    "CONFLICT",
			Message: conflict.Message,
			Details: map[string]interface{}{
				"field": conflict.Field,
			},
		})
		return
	}

	if relation, ok := database.AsRelation(err); ok {
		respondErrorDetails(w, http.StatusBadRequest, &models.APIError{
			Code:    "VALIDATION_ERROR",
			Message: relation.Message,
			Details: map[string]interface{}{
				"field": relation.Field,
			},
		})
		return
	}

	respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "A database error occurred", err)
}
