// Package schema exports a JSON Schema describing the submission payload of
// a form document: one property per input field keyed by field id, with
// required flags, enum options for choice fields, and validation bounds.
// Layout fields (headings, dividers, groups, page breaks) contribute nothing.
package schema

import (
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formedit/pkg/document"
)

// ForForm builds the submission schema for a form. The result is a plain
// object schema; group nesting is flattened because submissions are keyed by
// field id, not by position.
func ForForm(f document.Form) *openapi3.Schema {
	out := &openapi3.Schema{
		Type:        &openapi3.Types{openapi3.TypeObject},
		Title:       f.Title,
		Description: f.Description,
		Properties:  openapi3.Schemas{},
	}

	for _, field := range document.Flatten(f.Fields) {
		if field.Type.IsLayout() {
			continue
		}
		out.Properties[field.ID] = openapi3.NewSchemaRef("", ForField(field))
		if field.Required {
			out.Required = append(out.Required, field.ID)
		}
	}
	sort.Strings(out.Required)
	return out
}

// ForField maps a single input field onto its value schema.
func ForField(field document.Field) *openapi3.Schema {
	schema := &openapi3.Schema{
		Title:       field.Label,
		Description: stringOption(field, "description"),
	}

	switch field.Type {
	case document.FieldTypeNumber:
		schema.Type = &openapi3.Types{openapi3.TypeNumber}
	case document.FieldTypeRating:
		schema.Type = &openapi3.Types{openapi3.TypeInteger}
		min := float64(1)
		max := numberOption(field, "max", 5)
		schema.Min = &min
		schema.Max = &max
	case document.FieldTypeDate:
		schema.Type = &openapi3.Types{openapi3.TypeString}
		schema.Format = "date"
	case document.FieldTypeChoiceSingle:
		schema.Type = &openapi3.Types{openapi3.TypeString}
		schema.Enum = choiceOptions(field)
	case document.FieldTypeChoiceMulti:
		schema.Type = &openapi3.Types{openapi3.TypeArray}
		items := &openapi3.Schema{
			Type: &openapi3.Types{openapi3.TypeString},
			Enum: choiceOptions(field),
		}
		schema.Items = openapi3.NewSchemaRef("", items)
	default:
		schema.Type = &openapi3.Types{openapi3.TypeString}
	}

	applyValidation(schema, field.Validation)
	return schema
}

func applyValidation(schema *openapi3.Schema, validation map[string]any) {
	if len(validation) == 0 {
		return
	}
	if v, ok := toFloat(validation["min"]); ok {
		schema.Min = &v
	}
	if v, ok := toFloat(validation["max"]); ok {
		schema.Max = &v
	}
	if v, ok := toFloat(validation["minLength"]); ok && v >= 0 {
		schema.MinLength = uint64(v)
	}
	if v, ok := toFloat(validation["maxLength"]); ok && v >= 0 {
		length := uint64(v)
		schema.MaxLength = &length
	}
	if pattern, ok := validation["pattern"].(string); ok && pattern != "" {
		schema.Pattern = pattern
	}
}

// choiceOptions reads the "choices" option, tolerating both []any and
// []string shapes (documents decoded from JSON carry []any).
func choiceOptions(field document.Field) []any {
	switch raw := field.Options["choices"].(type) {
	case []any:
		return append([]any(nil), raw...)
	case []string:
		out := make([]any, 0, len(raw))
		for _, choice := range raw {
			out = append(out, choice)
		}
		return out
	default:
		return nil
	}
}

func stringOption(field document.Field, key string) string {
	if v, ok := field.Options[key].(string); ok {
		return v
	}
	return ""
}

func numberOption(field document.Field, key string, fallback float64) float64 {
	if v, ok := toFloat(field.Options[key]); ok {
		return v
	}
	return fallback
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
