// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/quotable/quotable/internal/models"
)

// CreateTag inserts a new tag. Names are unique and case-sensitive; a
// collision returns a ConflictError.
func (db *DB) CreateTag(ctx context.Context, tag *models.Tag) (err error) {
	if tag.ID == "" {
		tag.ID = uuid.New().String()
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { rollbackOnError(tx, err) }()

	exists, err := tagNameExists(ctx, tx, tag.Name, "")
	if err != nil {
		return err
	}
	if exists {
		return NewConflictError("name", "tag %q already exists", tag.Name)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO tags (id, name) VALUES (?, ?)`, tag.ID, tag.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return NewConflictError("name", "tag %q already exists", tag.Name)
		}
		return fmt.Errorf("failed to insert tag: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tag insert: %w", err)
	}
	return nil
}

// GetTag fetches a single tag by id. Returns ErrNotFound when the id
// matches no row.
func (db *DB) GetTag(ctx context.Context, id string) (*models.Tag, error) {
	var tag models.Tag
	err := db.conn.QueryRowContext(ctx,
		`SELECT CAST(id AS VARCHAR), name FROM tags WHERE id = ?`, id).
		Scan(&tag.ID, &tag.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query tag: %w", err)
	}
	return &tag, nil
}

// ListTags returns a page of tags ordered by name, with the total count of
// rows matching the search term.
func (db *DB) ListTags(ctx context.Context, search string, limit, offset int) ([]models.Tag, int64, error) {
	whereClause := "1=1"
	args := []interface{}{}
	if search != "" {
		pattern := "%" + search + "%"
		whereClause += " AND (CAST(id AS VARCHAR) ILIKE ? OR name ILIKE ?)"
		args = append(args, pattern, pattern)
	}

	var count int64
	countQuery := "SELECT COUNT(*) FROM tags WHERE " + whereClause
	if err := db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count tags: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT CAST(id AS VARCHAR), name FROM tags WHERE %s ORDER BY name LIMIT ? OFFSET ?`, whereClause)
	rows, err := db.conn.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query tags: %w", err)
	}
	defer closeWithLog(rows, "tag rows")

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, 0, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("tag row iteration failed: %w", err)
	}

	return tags, count, nil
}

// UpdateTag renames a tag and returns the fresh row.
func (db *DB) UpdateTag(ctx context.Context, id string, name *string) (tag *models.Tag, err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { rollbackOnError(tx, err) }()

	tag = &models.Tag{}
	err = tx.QueryRowContext(ctx,
		`SELECT CAST(id AS VARCHAR), name FROM tags WHERE id = ?`, id).
		Scan(&tag.ID, &tag.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query tag: %w", err)
	}

	if name == nil || *name == tag.Name {
		// Nothing to change.
		if err = tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit tag update: %w", err)
		}
		return tag, nil
	}

	exists, err := tagNameExists(ctx, tx, *name, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewConflictError("name", "tag %q already exists", *name)
	}

	_, err = tx.ExecContext(ctx, `UPDATE tags SET name = ? WHERE id = ?`, *name, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, NewConflictError("name", "tag %q already exists", *name)
		}
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}
	tag.Name = *name

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tag update: %w", err)
	}
	return tag, nil
}

// DeleteTag removes a tag and its join rows. Quotes referencing the tag are
// left untouched. Returns ErrNotFound when the id matches no row.
func (db *DB) DeleteTag(ctx context.Context, id string) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { rollbackOnError(tx, err) }()

	_, err = tx.ExecContext(ctx, `DELETE FROM quote_tags WHERE tag_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tag join rows: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
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
		return fmt.Errorf("failed to commit tag delete: %w", err)
	}
	return nil
}

// tagNameExists checks the unique tag name invariant, optionally excluding
// one tag id (for renames).
func tagNameExists(ctx context.Context, q querier, name, excludeID string) (bool, error) {
	query := `SELECT COUNT(*) FROM tags WHERE name = ?`
	args := []interface{}{name}
	if excludeID != "" {
		query += ` AND id <> ?`
		args = append(args, excludeID)
	}

	var count int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check tag uniqueness: %w", err)
	}
	return count > 0, nil
}
