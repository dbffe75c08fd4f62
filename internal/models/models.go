// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

// Package models defines the domain entities and shared API response types.
package models

import (
	"time"
)

// DateOnly is the wire format for birth and death dates.
const DateOnly = "2006-01-02"

// Date is a calendar date without a time component. It marshals to and from
// the "YYYY-MM-DD" wire format.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "YYYY-MM-DD" string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateOnly, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// MarshalJSON renders the date as a quoted "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateOnly) + `"`), nil
}

// UnmarshalJSON parses a quoted "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Author is a quote author. The (FirstName, LastName, BirthDate) triple is
// unique across all authors.
type Author struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
	BirthDate Date   `json:"birth_date"`
	DeathDate *Date  `json:"death_date"`
}

// DisplayName derives the author's full name: "first last", or just "first"
// when the last name is empty.
func (a *Author) DisplayName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// Tag is a label attached to quotes. Names are unique and case-sensitive.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Quote is a quotation attributed to an author, carrying zero or more tags.
// CreatedAt is server-assigned and immutable; Text must contain at least
// three word tokens.
type Quote struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	AuthorID  string    `json:"author_id"`
	Author    *Author   `json:"author,omitempty"`
	Tags      []Tag     `json:"tags"`
}

// CreateAuthorRequest is the payload for POST /authors.
type CreateAuthorRequest struct {
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"omitempty,max=100"`
	BirthDate string  `json:"birth_date" validate:"required,datetime=2006-01-02"`
	DeathDate *string `json:"death_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateAuthorRequest is the payload for PATCH/PUT /authors/{author_id}.
// Nil fields are left unchanged on PATCH; PUT requires first_name and
// birth_date at the handler level.
type UpdateAuthorRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	BirthDate *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	DeathDate *string `json:"death_date" validate:"omitempty,datetime=2006-01-02"`
}

// CreateTagRequest is the payload for POST /tags.
type CreateTagRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

// UpdateTagRequest is the payload for PATCH/PUT /tags/{tag_id}.
type UpdateTagRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=50"`
}

// CreateQuoteRequest is the payload for POST /quotes.
type CreateQuoteRequest struct {
	Text     string   `json:"text" validate:"required,minwords=3"`
	AuthorID string   `json:"author_id" validate:"required,uuid4"`
	TagIDs   []string `json:"tag_ids" validate:"omitempty,dive,uuid4"`
}

// UpdateQuoteRequest is the payload for PATCH/PUT /quotes/{quote_id}.
// CreatedAt is immutable and not accepted here.
type UpdateQuoteRequest struct {
	Text     *string   `json:"text" validate:"omitempty,minwords=3"`
	AuthorID *string   `json:"author_id" validate:"omitempty,uuid4"`
	TagIDs   *[]string `json:"tag_ids" validate:"omitempty,dive,uuid4"`
}
