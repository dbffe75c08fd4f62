// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quotable/quotable/internal/models"
)

// RelationError reports a reference to a missing related row, keyed by the
// request field that carried the bad id.
type RelationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *RelationError) Error() string {
	return e.Message
}

// AsRelation extracts a *RelationError from an error chain.
func AsRelation(err error) (*RelationError, bool) {
	var relation *RelationError
	ok := errors.As(err, &relation)
	return relation, ok
}

// QuoteUpdate carries partial quote changes. Nil fields are left unchanged;
// a non-nil TagIDs replaces the full tag set. CreatedAt is immutable.
type QuoteUpdate struct {
	Text     *string
	AuthorID *string
	TagIDs   *[]string
}

// CreateQuote inserts a new quote with its tag associations. The referenced
// author and tags must exist; a missing reference returns a RelationError.
// CreatedAt is server-assigned. On success the quote's Author and Tags
// fields are populated.
func (db *DB) CreateQuote(ctx context.Context, quote *models.Quote, tagIDs []string) (err error) {
	if quote.ID == "" {
		quote.ID = uuid.New().String()
	}
	quote.CreatedAt = time.Now().UTC()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { rollbackOnError(tx, err) }()

	author, err := lookupAuthor(ctx, tx, quote.AuthorID)
	if err != nil {
		return err
	}
	tags, err := lookupTags(ctx, tx, tagIDs)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO quotes (id, text, created_at, author_id) VALUES (?, ?, ?, ?)`,
		quote.ID, quote.Text, quote.CreatedAt, quote.AuthorID)
	if err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}

	for _, tag := range tags {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO quote_tags (quote_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
			quote.ID, tag.ID)
		if err != nil {
			return fmt.Errorf("failed to insert quote tag row: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit quote insert: %w", err)
	}

	quote.Author = author
	quote.Tags = tags
	return nil
}

// GetQuote fetches a single quote with its author and tags.
// Returns ErrNotFound when the id matches no row.
func (db *DB) GetQuote(ctx context.Context, id string) (*models.Quote, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT CAST(q.id AS VARCHAR), q.text, q.created_at,
		        CAST(a.id AS VARCHAR), a.first_name, a.last_name, a.birth_date, a.death_date
		 FROM quotes q JOIN authors a ON q.author_id = a.id
		 WHERE q.id = ?`, id)

	quote, err := scanQuote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query quote: %w", err)
	}

	tagsByQuote, err := db.loadQuoteTags(ctx, []string{quote.ID})
	if err != nil {
		return nil, err
	}
	quote.Tags = tagsByQuote[quote.ID]

	return quote, nil
}

// ListQuotes returns a page of quotes matching the filter, with the total
// count. Each returned quote carries its author and tags.
func (db *DB) ListQuotes(ctx context.Context, filter QuoteFilter) ([]models.Quote, int64, error) {
	whereClause, args := buildQuoteWhereClause(filter)

	countQuery := fmt.Sprintf(
		`SELECT COUNT(*) FROM quotes q JOIN authors a ON q.author_id = a.id WHERE %s`, whereClause)
	var count int64
	if err := db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count quotes: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT CAST(q.id AS VARCHAR), q.text, q.created_at,
		        CAST(a.id AS VARCHAR), a.first_name, a.last_name, a.birth_date, a.death_date
		 FROM quotes q JOIN authors a ON q.author_id = a.id
		 WHERE %s ORDER BY %s LIMIT ? OFFSET ?`,
		whereClause, orderingClause(filter.Ordering))
	rows, err := db.conn.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer closeWithLog(rows, "quote rows")

	quotes := []models.Quote{}
	ids := []string{}
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, *quote)
		ids = append(ids, quote.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("quote row iteration failed: %w", err)
	}

	tagsByQuote, err := db.loadQuoteTags(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range quotes {
		quotes[i].Tags = tagsByQuote[quotes[i].ID]
	}

	return quotes, count, nil
}

// UpdateQuote applies a partial update and returns the fresh quote.
// CreatedAt never changes; a non-nil TagIDs replaces the whole tag set.
func (db *DB) UpdateQuote(ctx context.Context, id string, update QuoteUpdate) (quote *models.Quote, err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { rollbackOnError(tx, err) }()

	quote = &models.Quote{}
	err = tx.QueryRowContext(ctx,
		`SELECT CAST(id AS VARCHAR), text, created_at, CAST(author_id AS VARCHAR)
		 FROM quotes WHERE id = ?`, id).
		Scan(&quote.ID, &quote.Text, &quote.CreatedAt, &quote.AuthorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query quote: %w", err)
	}

	if update.Text != nil {
		quote.Text = *update.Text
	}
	if update.AuthorID != nil {
		quote.AuthorID = *update.AuthorID
	}

	author, err := lookupAuthor(ctx, tx, quote.AuthorID)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE quotes SET text = ?, author_id = ? WHERE id = ?`,
		quote.Text, quote.AuthorID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update quote: %w", err)
	}

	if update.TagIDs != nil {
		tags, lookupErr := lookupTags(ctx, tx, *update.TagIDs)
		if lookupErr != nil {
			err = lookupErr
			return nil, err
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM quote_tags WHERE quote_id = ?`, id)
		if err != nil {
			return nil, fmt.Errorf("failed to clear quote tag rows: %w", err)
		}
		for _, tag := range tags {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO quote_tags (quote_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
				id, tag.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to insert quote tag row: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit quote update: %w", err)
	}

	quote.Author = author
	tagsByQuote, err := db.loadQuoteTags(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	quote.Tags = tagsByQuote[id]

	return quote, nil
}

// DeleteQuote removes a quote and its tag join rows. Tags themselves are
// left untouched. Returns ErrNotFound when the id matches no row.
func (db *DB) DeleteQuote(ctx context.Context, id string) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { rollbackOnError(tx, err) }()

	_, err = tx.ExecContext(ctx, `DELETE FROM quote_tags WHERE quote_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete quote tag rows: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM quotes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		err = ErrNotFound
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit quote delete: %w", err)
	}
	return nil
}

// GetQuoteTags returns the tags attached to one quote, ordered by name.
// Returns ErrNotFound when the quote id matches no row.
func (db *DB) GetQuoteTags(ctx context.Context, quoteID string) ([]models.Tag, error) {
	var exists int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quotes WHERE id = ?`, quoteID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check quote existence: %w", err)
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT CAST(t.id AS VARCHAR), t.name
		 FROM tags t JOIN quote_tags qt ON t.id = qt.tag_id
		 WHERE qt.quote_id = ? ORDER BY t.name`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote tags: %w", err)
	}
	defer closeWithLog(rows, "quote tag rows")

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("quote tag row iteration failed: %w", err)
	}

	return tags, nil
}

// loadQuoteTags batch-loads the tag sets for a page of quote ids.
// Every requested id gets an entry, so quotes without tags serialize as [].
func (db *DB) loadQuoteTags(ctx context.Context, quoteIDs []string) (map[string][]models.Tag, error) {
	result := make(map[string][]models.Tag, len(quoteIDs))
	for _, id := range quoteIDs {
		result[id] = []models.Tag{}
	}
	if len(quoteIDs) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(quoteIDs))
	args := make([]interface{}, len(quoteIDs))
	for i, id := range quoteIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(
		`SELECT CAST(qt.quote_id AS VARCHAR), CAST(t.id AS VARCHAR), t.name
		 FROM quote_tags qt JOIN tags t ON qt.tag_id = t.id
		 WHERE qt.quote_id IN (%s) ORDER BY t.name`, join(placeholders, ", "))
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote tags: %w", err)
	}
	defer closeWithLog(rows, "quote tag rows")

	for rows.Next() {
		var quoteID string
		var tag models.Tag
		if err := rows.Scan(&quoteID, &tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("failed to scan quote tag: %w", err)
		}
		result[quoteID] = append(result[quoteID], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("quote tag row iteration failed: %w", err)
	}

	return result, nil
}

// lookupAuthor verifies the referenced author exists inside the transaction
// and returns it.
func lookupAuthor(ctx context.Context, q querier, authorID string) (*models.Author, error) {
	row := q.QueryRowContext(ctx,
		`SELECT CAST(id AS VARCHAR), first_name, last_name, birth_date, death_date
		 FROM authors WHERE id = ?`, authorID)
	author, err := scanAuthor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &RelationError{Field: "author_id", Message: fmt.Sprintf("author %s does not exist", authorID)}
		}
		return nil, fmt.Errorf("failed to query author: %w", err)
	}
	return author, nil
}

// lookupTags verifies every referenced tag exists inside the transaction
// and returns them in the requested order.
func lookupTags(ctx context.Context, q querier, tagIDs []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(tagIDs))
	for _, id := range tagIDs {
		var tag models.Tag
		err := q.QueryRowContext(ctx,
			`SELECT CAST(id AS VARCHAR), name FROM tags WHERE id = ?`, id).
			Scan(&tag.ID, &tag.Name)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, &RelationError{Field: "tag_ids", Message: fmt.Sprintf("tag %s does not exist", id)}
			}
			return nil, fmt.Errorf("failed to query tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func scanQuote(row rowScanner) (*models.Quote, error) {
	var (
		quote     models.Quote
		author    models.Author
		birthDate time.Time
		deathDate sql.NullTime
	)
	err := row.Scan(&quote.ID, &quote.Text, &quote.CreatedAt,
		&author.ID, &author.FirstName, &author.LastName, &birthDate, &deathDate)
	if err != nil {
		return nil, err
	}
	author.BirthDate = models.Date{Time: birthDate}
	if deathDate.Valid {
		author.DeathDate = &models.Date{Time: deathDate.Time}
	}
	author.FullName = author.DisplayName()
	quote.AuthorID = author.ID
	quote.Author = &author
	quote.Tags = []models.Tag{}
	return &quote, nil
}
