// Package testsupport provides fixture helpers shared by engine tests:
// canned form documents and JSON fixture loaders.
package testsupport

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/goliatone/go-formedit/pkg/document"
)

// SampleForm builds a small document covering the shapes most tests need:
// two inputs, a group with one child, and a page break before a final field.
// Field ids are stable so assertions can reference them directly.
func SampleForm() document.Form {
	return document.Form{
		ID:     "form-1",
		Title:  "Customer survey",
		Status: document.StatusDraft,
		Fields: []document.Field{
			{ID: "f-name", Type: document.FieldTypeShortText, Label: "Name", Required: true, Order: 0},
			{ID: "f-color", Type: document.FieldTypeChoiceSingle, Label: "Favourite colour", Order: 1,
				Options: map[string]any{"choices": []any{"red", "green", "blue"}}},
			{ID: "f-group", Type: document.FieldTypeGroup, Label: "Address", Order: 2},
			{ID: "f-street", Type: document.FieldTypeShortText, Label: "Street", Order: 3, GroupID: "f-group"},
			{ID: "f-break", Type: document.FieldTypePageBreak, Order: 4},
			{ID: "f-rating", Type: document.FieldTypeRating, Label: "Rating", Order: 5,
				Options: map[string]any{"max": float64(5)}},
		},
		Pages: []document.PageSettings{{Title: "About you"}, {Title: "Feedback"}},
	}
}

// FieldOfType returns a minimal field of the given type with a blank id, as
// an editor's palette would hand to AddField.
func FieldOfType(fieldType document.FieldType, label string) document.Field {
	return document.Field{Type: fieldType, Label: label}
}

// OrderValues extracts the order slice of a field list in id order of the
// given ids, failing the test on an unknown id.
func OrderValues(t *testing.T, form document.Form, ids ...string) []int {
	t.Helper()
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		field := form.FieldByID(id)
		if field == nil {
			t.Fatalf("field %q not found", id)
		}
		out = append(out, field.Order)
	}
	return out
}

// MustLoadForm loads a JSON fixture into a Form.
func MustLoadForm(t *testing.T, path string) document.Form {
	t.Helper()
	form, err := LoadForm(path)
	if err != nil {
		t.Fatalf("load form: %v", err)
	}
	return form
}

// LoadForm reads a JSON fixture into a Form, returning an error for callers
// managing setup outside of *testing.T.
func LoadForm(path string) (document.Form, error) {
	if path == "" {
		return document.Form{}, errors.New("testsupport: form path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return document.Form{}, fmt.Errorf("testsupport: read form: %w", err)
	}
	var out document.Form
	if err := json.Unmarshal(data, &out); err != nil {
		return document.Form{}, fmt.Errorf("testsupport: unmarshal form: %w", err)
	}
	return out, nil
}
