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

// AuthorUpdate carries partial author changes. Nil fields are left
// unchanged; ClearDeathDate removes an existing death date.
type AuthorUpdate struct {
	FirstName      *string
	LastName       *string
	BirthDate      *models.Date
	DeathDate      *models.Date
	ClearDeathDate bool
}

// CreateAuthor inserts a new author. The (first_name, last_name, birth_date)
// triple must be unique; a collision returns a ConflictError.
func (db *DB) CreateAuthor(ctx context.Context, author *models.Author) (err error) {
	if author.ID == "" {
		author.ID = uuid.New().String()
	}
	author.FullName = author.DisplayName()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { rollbackOnError(tx, err) }()

	exists, err := authorTripleExists(ctx, tx, author.FirstName, author.LastName, author.BirthDate.Time, "")
	if err != nil {
		return err
	}
	if exists {
		return NewConflictError("first_name",
			"author %q with birth date %s already exists", author.DisplayName(), author.BirthDate.Format(models.DateOnly))
	}

	var deathDate interface{}
	if author.DeathDate != nil {
		deathDate = author.DeathDate.Time
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO authors (id, first_name, last_name, birth_date, death_date) VALUES (?, ?, ?, ?, ?)`,
		author.ID, author.FirstName, author.LastName, author.BirthDate.Time, deathDate)
	if err != nil {
		if isUniqueViolation(err) {
			return NewConflictError("first_name",
				"author %q with birth date %s already exists", author.DisplayName(), author.BirthDate.Format(models.DateOnly))
		}
		return fmt.Errorf("failed to insert author: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit author insert: %w", err)
	}
	return nil
}

// GetAuthor fetches a single author by id. Returns ErrNotFound when the id
// matches no row.
func (db *DB) GetAuthor(ctx context.Context, id string) (*models.Author, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT CAST(id AS VARCHAR), first_name, last_name, birth_date, death_date
		 FROM authors WHERE id = ?`, id)

	author, err := scanAuthor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query author: %w", err)
	}
	return author, nil
}

// ListAuthors returns a page of authors ordered by id, with the total count
// of rows matching the search term.
func (db *DB) ListAuthors(ctx context.Context, search string, limit, offset int) ([]models.Author, int64, error) {
	whereClause := "1=1"
	args := []interface{}{}
	if search != "" {
		pattern := "%" + search + "%"
		whereClause += " AND (CAST(id AS VARCHAR) ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?)"
		args = append(args, pattern, pattern, pattern)
	}

	var count int64
	countQuery := "SELECT COUNT(*) FROM authors WHERE " + whereClause
	if err := db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count authors: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT CAST(id AS VARCHAR), first_name, last_name, birth_date, death_date
		 FROM authors WHERE %s ORDER BY id LIMIT ? OFFSET ?`, whereClause)
	rows, err := db.conn.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query authors: %w", err)
	}
	defer closeWithLog(rows, "author rows")

	authors := []models.Author{}
	for rows.Next() {
		author, err := scanAuthor(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, *author)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("author row iteration failed: %w", err)
	}

	return authors, count, nil
}

// UpdateAuthor applies a partial update and returns the fresh row.
// The uniqueness triple is re-checked against the updated values.
func (db *DB) UpdateAuthor(ctx context.Context, id string, update AuthorUpdate) (author *models.Author, err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { rollbackOnError(tx, err) }()

	row := tx.QueryRowContext(ctx,
		`SELECT CAST(id AS VARCHAR), first_name, last_name, birth_date, death_date
		 FROM authors WHERE id = ?`, id)
	author, err = scanAuthor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query author: %w", err)
	}

	if update.FirstName != nil {
		author.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		author.LastName = *update.LastName
	}
	if update.BirthDate != nil {
		author.BirthDate = *update.BirthDate
	}
	if update.ClearDeathDate {
		author.DeathDate = nil
	} else if update.DeathDate != nil {
		author.DeathDate = update.DeathDate
	}
	author.FullName = author.DisplayName()

	exists, err := authorTripleExists(ctx, tx, author.FirstName, author.LastName, author.BirthDate.Time, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewConflictError("first_name",
			"author %q with birth date %s already exists", author.DisplayName(), author.BirthDate.Format(models.DateOnly))
	}

	var deathDate interface{}
	if author.DeathDate != nil {
		deathDate = author.DeathDate.Time
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE authors SET first_name = ?, last_name = ?, birth_date = ?, death_date = ? WHERE id = ?`,
		author.FirstName, author.LastName, author.BirthDate.Time, deathDate, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, NewConflictError("first_name",
				"author %q with birth date %s already exists", author.DisplayName(), author.BirthDate.Format(models.DateOnly))
		}
		return nil, fmt.Errorf("failed to update author: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit author update: %w", err)
	}
	return author, nil
}

// DeleteAuthor removes an author and cascades to its quotes (and their tag
// join rows). Returns ErrNotFound when the id matches no row.
func (db *DB) DeleteAuthor(ctx context.Context, id string) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { rollbackOnError(tx, err) }()

	// Cascade order: join rows, quotes, author.
	_, err = tx.ExecContext(ctx,
		`DELETE FROM quote_tags WHERE quote_id IN (SELECT id FROM quotes WHERE author_id = ?)`, id)
	if err != nil {
		return fmt.Errorf("failed to delete quote tag rows: %w", err)
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM quotes WHERE author_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete author quotes: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM authors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete author: %w", err)
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
		return fmt.Errorf("failed to commit author delete: %w", err)
	}
	return nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// authorTripleExists checks the (first_name, last_name, birth_date)
// uniqueness invariant, optionally excluding one author id (for updates).
func authorTripleExists(ctx context.Context, q querier, firstName, lastName string, birthDate time.Time, excludeID string) (bool, error) {
	query := `SELECT COUNT(*) FROM authors WHERE first_name = ? AND last_name = ? AND birth_date = ?`
	args := []interface{}{firstName, lastName, birthDate}
	if excludeID != "" {
		query += ` AND id <> ?`
		args = append(args, excludeID)
	}

	var count int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check author uniqueness: %w", err)
	}
	return count > 0, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAuthor(row rowScanner) (*models.Author, error) {
	var (
		author    models.Author
		birthDate time.Time
		deathDate sql.NullTime
	)
	if err := row.Scan(&author.ID, &author.FirstName, &author.LastName, &birthDate, &deathDate); err != nil {
		return nil, err
	}
	author.BirthDate = models.Date{Time: birthDate}
	if deathDate.Valid {
		author.DeathDate = &models.Date{Time: deathDate.Time}
	}
	author.FullName = author.DisplayName()
	return &author, nil
}
