// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package validation

import (
	"strings"
	"testing"
)

func TestWordCount(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"   ", 0},
		{"...!!!", 0},
		{"one", 1},
		{"one two", 2},
		{"one two three", 3},
		{"To be, or not to be", 6},
		{"don't panic", 3}, // apostrophe splits into "don" and "t"
		{"snake_case counts as one", 4},
		{"  leading and trailing  ", 3},
		{"punctuation, everywhere; still: works!", 4},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := WordCount(tt.input); got != tt.want {
				t.Errorf("WordCount(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMinWordsValidator(t *testing.T) {
	type quoteText struct {
		Text string `validate:"required,minwords=3"`
	}

	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"three words pass", "live laugh love", false},
		{"many words pass", "the quick brown fox jumps over the lazy dog", false},
		{"two words fail", "too short", true},
		{"one word fails", "nope", true},
		{"empty fails", "", true},
		{"punctuation only fails", "!!! ??? ...", true},
		{"three words with punctuation pass", "Yes, it works.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&quoteText{Text: tt.text})
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			}
		})
	}
}

func TestMinWordsErrorMessage(t *testing.T) {
	type quoteText struct {
		Text string `validate:"minwords=3"`
	}

	err := ValidateStruct(&quoteText{Text: "too short"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "at least 3 words") {
		t.Errorf("Message = %q, want mention of minimum word count", apiErr.Message)
	}
	if apiErr.Details["field"] != "Text" {
		t.Errorf("Details.field = %v, want Text", apiErr.Details["field"])
	}
}

func TestValidateStructMultipleErrors(t *testing.T) {
	type createQuote struct {
		Text     string `validate:"required,minwords=3"`
		AuthorID string `validate:"required,uuid4"`
	}

	err := ValidateStruct(&createQuote{})
	if err == nil {
		t.Fatal("expected validation error")
	}

	if len(err.Errors()) != 2 {
		t.Fatalf("got %d errors, want 2", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Details.fields has unexpected type %T", apiErr.Details["fields"])
	}
	if len(fields) != 2 {
		t.Errorf("got %d field entries, want 2", len(fields))
	}
}

func TestValidateStructPasses(t *testing.T) {
	type createAuthor struct {
		FirstName string `validate:"required,max=50"`
		LastName  string `validate:"required,max=50"`
		BirthDate string `validate:"required,datetime=2006-01-02"`
	}

	req := createAuthor{FirstName: "Mark", LastName: "Twain", BirthDate: "1835-11-30"}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("ValidateStruct() = %v, want nil", err)
	}

	req.BirthDate = "not-a-date"
	if err := ValidateStruct(&req); err == nil {
		t.Error("expected error for malformed birth date")
	}
}
