// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package api

import (
	"net/http"
	"testing"

	"github.com/quotable/quotable/internal/models"
)

func TestCreateTag(t *testing.T) {
	router, _ := newTestRouter(t)

	tag := createTag(t, router, "wisdom")
	if tag.ID == "" {
		t.Error("Expected a generated tag id")
	}
	if tag.Name != "wisdom" {
		t.Errorf("Expected name %q, got %q", "wisdom", tag.Name)
	}
}

func TestCreateTag_DuplicateName(t *testing.T) {
	router, _ := newTestRouter(t)

	createTag(t, router, "wisdom")

	rec, env := doRequest(t, router, http.MethodPost, "/tags", models.CreateTagRequest{Name: "wisdom"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for duplicate tag, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "CONFLICT" {
		t.Fatalf("Expected CONFLICT, got %+v", env.Error)
	}

	// Names are case-sensitive: different casing is a different tag.
	rec, _ = doRequest(t, router, http.MethodPost, "/tags", models.CreateTagRequest{Name: "Wisdom"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 for differently-cased name, got %d", rec.Code)
	}
}

func TestCreateTag_EmptyName(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodPost, "/tags", models.CreateTagRequest{Name: ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("Expected VALIDATION_ERROR, got %+v", env.Error)
	}
}

func TestGetTag_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet, "/tags/00000000-0000-0000-0000-000000000000", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Fatalf("Expected NOT_FOUND, got %+v", env.Error)
	}
}

func TestListTags_OrderedByName(t *testing.T) {
	router, _ := newTestRouter(t)

	createTag(t, router, "wit")
	createTag(t, router, "aphorism")
	createTag(t, router, "life")

	rec, env := doRequest(t, router, http.MethodGet, "/tags", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var page listPage
	decodeData(t, env, &page)
	if page.Count != 3 {
		t.Fatalf("Expected count 3, got %d", page.Count)
	}

	var tags []models.Tag
	if err := jsonUnmarshal(page.Results, &tags); err != nil {
		t.Fatalf("Failed to decode results: %v", err)
	}
	want := []string{"aphorism", "life", "wit"}
	for i, name := range want {
		if tags[i].Name != name {
			t.Errorf("Expected tag %d to be %q, got %q", i, name, tags[i].Name)
		}
	}
}

func TestListTags_Search(t *testing.T) {
	router, _ := newTestRouter(t)

	createTag(t, router, "wisdom")
	createTag(t, router, "wit")
	createTag(t, router, "life")

	rec, env := doRequest(t, router, http.MethodGet, "/tags?search=wi", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var page listPage
	decodeData(t, env, &page)
	if page.Count != 2 {
		t.Errorf("Expected count 2, got %d", page.Count)
	}
}

func TestUpdateTag(t *testing.T) {
	router, _ := newTestRouter(t)

	tag := createTag(t, router, "wisdom")

	newName := "deep-thoughts"
	rec, env := doRequest(t, router, http.MethodPatch, "/tags/"+tag.ID, models.UpdateTagRequest{Name: &newName})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated models.Tag
	decodeData(t, env, &updated)
	if updated.Name != newName {
		t.Errorf("Expected name %q, got %q", newName, updated.Name)
	}
}

func TestUpdateTag_RenameToExistingName(t *testing.T) {
	router, _ := newTestRouter(t)

	createTag(t, router, "wisdom")
	tag := createTag(t, router, "wit")

	target := "wisdom"
	rec, env := doRequest(t, router, http.MethodPatch, "/tags/"+tag.ID, models.UpdateTagRequest{Name: &target})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "CONFLICT" {
		t.Fatalf("Expected CONFLICT, got %+v", env.Error)
	}
}

func TestReplaceTag_RequiresName(t *testing.T) {
	router, _ := newTestRouter(t)

	tag := createTag(t, router, "wisdom")

	rec, env := doRequest(t, router, http.MethodPut, "/tags/"+tag.ID, models.UpdateTagRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("Expected VALIDATION_ERROR, got %+v", env.Error)
	}
}

func TestDeleteTag_QuotesSurvive(t *testing.T) {
	router, _ := newTestRouter(t)

	author := createAuthor(t, router, "Oscar", "Wilde", "1854-10-16")
	tag := createTag(t, router, "wit")
	quote := createQuote(t, router, "I can resist everything except temptation", author.ID, []string{tag.ID})

	rec, _ := doRequest(t, router, http.MethodDelete, "/tags/"+tag.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}

	rec, env := doRequest(t, router, http.MethodGet, "/quotes/"+quote.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected quote to survive tag deletion, got %d", rec.Code)
	}

	var survived models.Quote
	decodeData(t, env, &survived)
	if len(survived.Tags) != 0 {
		t.Errorf("Expected no tags after deletion, got %+v", survived.Tags)
	}
}
