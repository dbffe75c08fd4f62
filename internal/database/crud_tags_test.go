// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quotable/quotable/internal/models"
)

func TestCreateAndGetTag(t *testing.T) {
	db := setupTestDB(t)

	tag := mustCreateTag(t, db, "wisdom")
	if tag.ID == "" {
		t.Fatal("CreateTag did not assign an id")
	}

	got, err := db.GetTag(context.Background(), tag.ID)
	if err != nil {
		t.Fatalf("GetTag failed: %v", err)
	}
	if got.Name != "wisdom" {
		t.Errorf("Name = %q, want wisdom", got.Name)
	}
}

func TestCreateTagDuplicateName(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	mustCreateTag(t, db, "humor")

	err := db.CreateTag(ctx, &models.Tag{Name: "humor"})
	conflict, ok := AsConflict(err)
	if !ok {
		t.Fatalf("error = %v, want ConflictError", err)
	}
	if conflict.Field != "name" {
		t.Errorf("conflict field = %q, want name", conflict.Field)
	}

	// Tag names are case-sensitive: "Humor" is a different tag.
	if err := db.CreateTag(ctx, &models.Tag{Name: "Humor"}); err != nil {
		t.Errorf("CreateTag with different case failed: %v", err)
	}
}

func TestUpdateTag(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tag := mustCreateTag(t, db, "humour")
	mustCreateTag(t, db, "wisdom")

	name := "humor"
	updated, err := db.UpdateTag(ctx, tag.ID, &name)
	if err != nil {
		t.Fatalf("UpdateTag failed: %v", err)
	}
	if updated.Name != "humor" {
		t.Errorf("Name = %q, want humor", updated.Name)
	}

	// Renaming onto an existing name conflicts.
	taken := "wisdom"
	if _, err := db.UpdateTag(ctx, tag.ID, &taken); err == nil {
		t.Error("expected conflict renaming onto existing tag name")
	}

	// Nil name is a no-op.
	same, err := db.UpdateTag(ctx, tag.ID, nil)
	if err != nil {
		t.Fatalf("UpdateTag no-op failed: %v", err)
	}
	if same.Name != "humor" {
		t.Errorf("no-op changed name to %q", same.Name)
	}
}

func TestDeleteTagLeavesQuotes(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	author := mustCreateAuthor(t, db, "Oscar", "Wilde", models.NewDate(1854, time.October, 16))
	tag := mustCreateTag(t, db, "wit")
	quote := mustCreateQuote(t, db, "Be yourself; everyone else is already taken.", author.ID, tag.ID)

	if err := db.DeleteTag(ctx, tag.ID); err != nil {
		t.Fatalf("DeleteTag failed: %v", err)
	}

	got, err := db.GetQuote(ctx, quote.ID)
	if err != nil {
		t.Fatalf("quote did not survive tag delete: %v", err)
	}
	if len(got.Tags) != 0 {
		t.Errorf("quote still carries %d tags after tag delete", len(got.Tags))
	}
}

func TestDeleteTagNotFound(t *testing.T) {
	db := setupTestDB(t)

	err := db.DeleteTag(context.Background(), "00000000-0000-4000-8000-000000000000")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteTag error = %v, want ErrNotFound", err)
	}
}

func TestListTagsOrderedByName(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	mustCreateTag(t, db, "wisdom")
	mustCreateTag(t, db, "humor")
	mustCreateTag(t, db, "life")

	tags, count, err := db.ListTags(ctx, "", 10, 0)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	want := []string{"humor", "life", "wisdom"}
	for i, name := range want {
		if tags[i].Name != name {
			t.Errorf("tags[%d] = %q, want %q", i, tags[i].Name, name)
		}
	}

	found, count, err := db.ListTags(ctx, "hum", 10, 0)
	if err != nil {
		t.Fatalf("ListTags search failed: %v", err)
	}
	if count != 1 || found[0].Name != "humor" {
		t.Errorf("search = %v (count %d), want single humor", found, count)
	}
}
