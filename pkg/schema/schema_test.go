package schema_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formedit/pkg/document"
	"github.com/goliatone/go-formedit/pkg/schema"
	"github.com/goliatone/go-formedit/pkg/testsupport"
)

func TestForFormSkipsLayoutFields(t *testing.T) {
	t.Parallel()

	got := schema.ForForm(testsupport.SampleForm())

	if !got.Type.Is("object") {
		t.Fatalf("schema type = %v, want object", got.Type)
	}
	for _, layoutID := range []string{"f-group", "f-break"} {
		if _, ok := got.Properties[layoutID]; ok {
			t.Fatalf("layout field %q leaked into the submission schema", layoutID)
		}
	}
	for _, inputID := range []string{"f-name", "f-color", "f-street", "f-rating"} {
		if _, ok := got.Properties[inputID]; !ok {
			t.Fatalf("input field %q missing from the submission schema", inputID)
		}
	}
	if diff := cmp.Diff([]string{"f-name"}, got.Required); diff != "" {
		t.Fatalf("required (-want +got):\n%s", diff)
	}
}

func TestForFieldChoiceEnums(t *testing.T) {
	t.Parallel()

	single := document.Field{
		ID:   "c1",
		Type: document.FieldTypeChoiceSingle,
		Options: map[string]any{
			"choices": []any{"red", "green"},
		},
	}
	got := schema.ForField(single)
	if !got.Type.Is("string") {
		t.Fatalf("choice-single type = %v, want string", got.Type)
	}
	if diff := cmp.Diff([]any{"red", "green"}, got.Enum); diff != "" {
		t.Fatalf("enum (-want +got):\n%s", diff)
	}

	multi := single
	multi.Type = document.FieldTypeChoiceMulti
	got = schema.ForField(multi)
	if !got.Type.Is("array") {
		t.Fatalf("choice-multi type = %v, want array", got.Type)
	}
	if got.Items == nil || got.Items.Value == nil {
		t.Fatalf("choice-multi has no items schema")
	}
	if diff := cmp.Diff([]any{"red", "green"}, got.Items.Value.Enum); diff != "" {
		t.Fatalf("items enum (-want +got):\n%s", diff)
	}
}

func TestForFieldRatingBounds(t *testing.T) {
	t.Parallel()

	field := document.Field{
		ID:      "r1",
		Type:    document.FieldTypeRating,
		Options: map[string]any{"max": float64(10)},
	}
	got := schema.ForField(field)
	if !got.Type.Is("integer") {
		t.Fatalf("rating type = %v, want integer", got.Type)
	}
	if got.Min == nil || *got.Min != 1 || got.Max == nil || *got.Max != 10 {
		t.Fatalf("rating bounds = %v..%v, want 1..10", got.Min, got.Max)
	}
}

func TestForFieldValidationMapping(t *testing.T) {
	t.Parallel()

	field := document.Field{
		ID:   "t1",
		Type: document.FieldTypeShortText,
		Validation: map[string]any{
			"minLength": float64(2),
			"maxLength": float64(64),
			"pattern":   "^[a-z]+$",
		},
	}
	got := schema.ForField(field)
	if got.MinLength != 2 {
		t.Fatalf("minLength = %d, want 2", got.MinLength)
	}
	if got.MaxLength == nil || *got.MaxLength != 64 {
		t.Fatalf("maxLength = %v, want 64", got.MaxLength)
	}
	if got.Pattern != "^[a-z]+$" {
		t.Fatalf("pattern = %q", got.Pattern)
	}
}
