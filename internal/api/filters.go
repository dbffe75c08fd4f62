// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package api

import (
	"net/http"
	"time"

	"github.com/quotable/quotable/internal/database"
	"github.com/quotable/quotable/internal/models"
)

// FieldFilter declares one filterable query parameter: the parameter name
// on the wire and a description of the predicate it produces. Declared
// filters accept comma-separated value lists matching ANY of the values;
// parameters that are not declared are ignored.
type FieldFilter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// quoteFilterSchema enumerates the declared filter parameters for the quote
// collection. The map in applyQuoteFilters must stay in sync with this list.
var quoteFilterSchema = []FieldFilter{
	{
		Name:        "tags",
		Type:        "string list",
		Description: "Comma-separated tag ids; matches quotes carrying any of them",
	},
	{
		Name:        "author_id",
		Type:        "string list",
		Description: "Comma-separated author ids; exact match on the quote's author",
	},
	{
		Name:        "search",
		Type:        "string",
		Description: "Case-insensitive substring across quote id, text, and author name",
	},
	{
		Name:        "ordering",
		Type:        "string",
		Description: "created_at or -created_at (default -created_at)",
	},
}

// applyQuoteFilters reads the declared filter parameters from the request
// into a database.QuoteFilter. Each multi-value parameter is split on
// commas with empties dropped; an absent or empty parameter leaves its
// dimension unfiltered. Undeclared query parameters are ignored.
func applyQuoteFilters(r *http.Request, filter *database.QuoteFilter) {
	query := r.URL.Query()

	multiFilters := map[string]*[]string{
		"tags":      &filter.TagIDs,
		"author_id": &filter.AuthorIDs,
	}
	for param, target := range multiFilters {
		if values := parseCommaSeparated(query.Get(param)); len(values) > 0 {
			*target = values
		}
	}

	filter.Search = query.Get("search")
	filter.Ordering = query.Get("ordering")
}

// SchemaParameters returns the declared quote filter descriptors.
func SchemaParameters() []FieldFilter {
	schema := make([]FieldFilter, len(quoteFilterSchema))
	copy(schema, quoteFilterSchema)
	return schema
}

// QuoteFilterSchema handles GET /quotes/schema/filters. It enumerates the
// declared filter parameters as a documentation aid for API consumers.
func (h *Handler) QuoteFilterSchema(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"filters": SchemaParameters(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
