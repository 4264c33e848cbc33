package normalize

import (
	"reflect"
	"testing"

	"github.com/jurisgraph/jurisgraph/pkg/types"
)

func TestScalar(t *testing.T) {
	tests := []struct {
		name     string
		in       any
		expected string
	}{
		{"plain string", "State v. Smith", "State v. Smith"},
		{"trims whitespace", "  Smith  ", "Smith"},
		{"nil", nil, ""},
		{"nan sentinel", "nan", ""},
		{"NaN sentinel case-insensitive", "NaN", ""},
		{"null sentinel", "null", ""},
		{"none sentinel", "None", ""},
		{"empty list sentinel", "[]", ""},
		{"escapes embedded quotes", `The "Special" Bench`, `The \"Special\" Bench`},
		{"numeric value", 2015, "2015"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Scalar(tt.in); got != tt.expected {
				t.Errorf("Scalar(%v) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}

func TestListField(t *testing.T) {
	tests := []struct {
		name     string
		in       any
		expected []string
	}{
		{"nil", nil, nil},
		{"native string slice", []string{"A", "B"}, []string{"A", "B"}},
		{"native any slice", []any{"A", "B"}, []string{"A", "B"}},
		{"json array string", `["Justice Rao", "Justice Mehta"]`, []string{"Justice Rao", "Justice Mehta"}},
		{"json array drops nan", `["A","nan","B"]`, []string{"A", "B"}},
		{"dict wrapper", `{"cited_cases": ["X v Y", "P v Q"]}`, []string{"X v Y", "P v Q"}},
		{"headless dict wrapper", `'cited_cases': ["X v Y"]`, []string{"X v Y"}},
		{"comma separated", "A. Kumar, B. Singh", []string{"A. Kumar", "B. Singh"}},
		{"single value", "Solo Advocate", []string{"Solo Advocate"}},
		{"single quoted value", `"Solo Advocate"`, []string{"Solo Advocate"}},
		{"nan sentinel", "nan", nil},
		{"empty list literal", "[]", nil},
		{"empty string", "", nil},
		{"duplicates preserved", []string{"A", "A"}, []string{"A", "A"}},
		{"elements trimmed", `[" A ", "B "]`, []string{"A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ListField(tt.in, nil)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ListField(%v) = %#v, want %#v", tt.in, got, tt.expected)
			}
		})
	}
}

// Broken escaping shows up in older scraped rows; the quoted-substring
// fallback should still recover the parseable elements.
func TestListFieldMalformed(t *testing.T) {
	got := ListField(`["State v. Smith", "Unterminated "quote case", "P v Q"]`, nil)
	if len(got) == 0 {
		t.Fatal("expected quoted-substring fallback to recover elements")
	}
	if got[0] != "State v. Smith" {
		t.Errorf("first element = %q, want %q", got[0], "State v. Smith")
	}
}

func TestListFieldUnterminatedQuote(t *testing.T) {
	// A truncated list literal must degrade, never panic or error the batch.
	got := ListField(`[Unterminated "quote`, nil)
	for _, item := range got {
		if item == "" {
			t.Errorf("empty element survived cleaning: %#v", got)
		}
	}
}

func TestYear(t *testing.T) {
	intp := func(n int) *int { return &n }
	tests := []struct {
		name     string
		in       any
		expected *int
	}{
		{"nil", nil, nil},
		{"int", 2015, intp(2015)},
		{"float64", float64(1998), intp(1998)},
		{"numeric string", "2003", intp(2003)},
		{"float string", "bad year", nil},
		{"nan string", "nan", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Year(tt.in)
			switch {
			case got == nil && tt.expected == nil:
			case got == nil || tt.expected == nil:
				t.Errorf("Year(%v) = %v, want %v", tt.in, got, tt.expected)
			case *got != *tt.expected:
				t.Errorf("Year(%v) = %d, want %d", tt.in, *got, *tt.expected)
			}
		})
	}
}

func TestRecord(t *testing.T) {
	doc := types.SourceDocument{
		StoreID: "es-123",
		Fields: map[string]any{
			"doc_id":               "D-42",
			"title":                "  State v. Smith  ",
			"year":                 "2015",
			"outcome":              "allowed",
			"case_duration":        "2 years",
			"judges":               `["Justice Rao"]`,
			"citations":            []string{"P v Q"},
			"petitioner_advocates": "A. Kumar, B. Singh",
			"respondant_advocates": "nan",
		},
	}

	rec, err := Record(doc, nil)
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if rec.DocID != "D-42" {
		t.Errorf("DocID = %q, want D-42", rec.DocID)
	}
	if rec.Title != "State v. Smith" {
		t.Errorf("Title = %q, want State v. Smith", rec.Title)
	}
	if rec.Year == nil || *rec.Year != 2015 {
		t.Errorf("Year = %v, want 2015", rec.Year)
	}
	if len(rec.PetitionerAdvocates) != 2 {
		t.Errorf("PetitionerAdvocates = %v, want 2 entries", rec.PetitionerAdvocates)
	}
	if rec.RespondantAdvocates != nil {
		t.Errorf("RespondantAdvocates = %v, want nil", rec.RespondantAdvocates)
	}
}

func TestRecordDocIDFallback(t *testing.T) {
	rec, err := Record(types.SourceDocument{StoreID: "es-9", Fields: map[string]any{"title": "X"}}, nil)
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if rec.DocID != "es-9" {
		t.Errorf("DocID = %q, want store id fallback es-9", rec.DocID)
	}
}

func TestRecordMissingTitle(t *testing.T) {
	rec, err := Record(types.SourceDocument{Fields: map[string]any{"doc_id": "D-1", "title": "nan"}}, nil)
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if rec.Title != "Untitled" {
		t.Errorf("Title = %q, want Untitled", rec.Title)
	}
}

func TestRecordNoIdentity(t *testing.T) {
	_, err := Record(types.SourceDocument{Fields: map[string]any{"title": "X"}}, nil)
	if err != types.ErrEmptyDocID {
		t.Errorf("expected ErrEmptyDocID, got %v", err)
	}
}
