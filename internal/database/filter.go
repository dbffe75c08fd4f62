// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package database

import (
	"fmt"
)

// QuoteFilter contains filter parameters for quote listing queries.
//
// All fields are optional and combine using AND logic. Multi-select fields
// (slices) use OR logic within the field: TagIDs match quotes carrying ANY
// of the given tags.
//
// Filter Dimensions:
//   - TagIDs: quotes carrying any of these tag ids
//   - AuthorIDs: quotes owned by any of these authors
//   - Search: case-insensitive substring across quote id, text, and the
//     author's first/last name
//   - Ordering: "created_at" or "-created_at" (default "-created_at")
//   - Limit/Offset: result paging
//
// SQL Generation:
// buildQuoteWhereClause() turns the filter into a parameterized WHERE clause
// with a "1=1" base for safe concatenation:
//
//	WHERE 1=1 AND q.author_id IN (?, ?)
//	  AND q.id IN (SELECT quote_id FROM quote_tags WHERE tag_id IN (?))
//	  AND (CAST(q.id AS VARCHAR) ILIKE ? OR q.text ILIKE ? OR ...)
//
// QuoteFilter is immutable after creation and safe for concurrent reads.
type QuoteFilter struct {
	TagIDs    []string
	AuthorIDs []string
	Search    string
	Ordering  string
	Limit     int
	Offset    int
}

// appendInClause is a generic helper for building SQL IN clauses.
//
// Example:
//
//	appendInClause("q.author_id", ids, &clauses, &args)
//	// Adds: "q.author_id IN (?, ?)" to clauses
//	// Adds: ids... to args
func appendInClause(columnName string, values []string, whereClauses *[]string, args *[]interface{}) {
	if len(values) == 0 {
		return
	}

	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		*args = append(*args, v)
	}

	*whereClauses = append(*whereClauses, fmt.Sprintf("%s IN (%s)", columnName, join(placeholders, ", ")))
}

// buildQuoteFilterConditions builds WHERE clause conditions and args from a
// QuoteFilter. The table aliases q (quotes) and a (authors) must be present
// in the enclosing query.
func buildQuoteFilterConditions(filter QuoteFilter) ([]string, []interface{}) {
	whereClauses := []string{}
	args := []interface{}{}

	appendInClause("q.author_id", filter.AuthorIDs, &whereClauses, &args)

	// Tag membership goes through the join table: a quote matches when it
	// carries ANY of the requested tags.
	if len(filter.TagIDs) > 0 {
		placeholders := make([]string, len(filter.TagIDs))
		for i, id := range filter.TagIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		whereClauses = append(whereClauses,
			fmt.Sprintf("q.id IN (SELECT quote_id FROM quote_tags WHERE tag_id IN (%s))", join(placeholders, ", ")))
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		whereClauses = append(whereClauses,
			"(CAST(q.id AS VARCHAR) ILIKE ? OR q.text ILIKE ? OR a.first_name ILIKE ? OR a.last_name ILIKE ?)")
		args = append(args, pattern, pattern, pattern, pattern)
	}

	return whereClauses, args
}

// buildQuoteWhereClause builds a WHERE clause string with "1=1" base for
// safe concatenation.
//
// Example:
//
//	whereClause, args := buildQuoteWhereClause(filter)
//	query := fmt.Sprintf("SELECT ... FROM quotes q JOIN authors a ON ... WHERE %s", whereClause)
func buildQuoteWhereClause(filter QuoteFilter) (string, []interface{}) {
	clauses, args := buildQuoteFilterConditions(filter)

	if len(clauses) == 0 {
		return "1=1", args
	}

	return "1=1 AND " + join(clauses, " AND "), args
}

// orderingClause maps the public ordering value to a SQL ORDER BY fragment.
// Unknown values fall back to newest-first. The quote id is a secondary key
// for stable paging.
func orderingClause(ordering string) string {
	if ordering == "created_at" {
		return "q.created_at ASC, q.id ASC"
	}
	return "q.created_at DESC, q.id DESC"
}

// join concatenates strings with a separator.
func join(strs []string, sep string) string {
	result := ""
	for i, s := range strs {
		if i > 0 {
			result += sep
		}
		result += s
	}
	return result
}
