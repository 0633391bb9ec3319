// Package document re-exports the canonical form-document model and its
// ordering operations. The implementation lives in internal/document; this
// adapter is the surface embedders and the session package import.
package document

import internaldocument "github.com/goliatone/go-formedit/internal/document"

// FieldType re-exports the internal field-type enumeration.
type FieldType = internaldocument.FieldType

const (
	FieldTypeShortText    = internaldocument.FieldTypeShortText
	FieldTypeLongText     = internaldocument.FieldTypeLongText
	FieldTypeNumber       = internaldocument.FieldTypeNumber
	FieldTypeChoiceSingle = internaldocument.FieldTypeChoiceSingle
	FieldTypeChoiceMulti  = internaldocument.FieldTypeChoiceMulti
	FieldTypeDate         = internaldocument.FieldTypeDate
	FieldTypeRating       = internaldocument.FieldTypeRating
	FieldTypeHeading      = internaldocument.FieldTypeHeading
	FieldTypeParagraph    = internaldocument.FieldTypeParagraph
	FieldTypeDivider      = internaldocument.FieldTypeDivider
	FieldTypePageBreak    = internaldocument.FieldTypePageBreak
	FieldTypeGroup        = internaldocument.FieldTypeGroup
	FieldTypeSubmit       = internaldocument.FieldTypeSubmit
)

// Status re-exports the publication lifecycle enumeration.
type Status = internaldocument.Status

const (
	StatusDraft     = internaldocument.StatusDraft
	StatusPublished = internaldocument.StatusPublished
	StatusArchived  = internaldocument.StatusArchived
)

type Form = internaldocument.Form
type Field = internaldocument.Field
type FieldPatch = internaldocument.FieldPatch
type FieldCondition = internaldocument.FieldCondition
type PageSettings = internaldocument.PageSettings

// TempIDPrefix marks client-side document ids with no server counterpart.
const TempIDPrefix = internaldocument.TempIDPrefix

// IsTemporaryID reports whether id is a client-side placeholder.
func IsTemporaryID(id string) bool { return internaldocument.IsTemporaryID(id) }

// NewFieldID mints a unique field identifier.
func NewFieldID() string { return internaldocument.NewFieldID() }

// Clone returns a deep copy of the form.
func Clone(f Form) Form { return internaldocument.Clone(f) }

// CloneField returns a deep copy of a single field.
func CloneField(f Field) Field { return internaldocument.CloneField(f) }

// AddField inserts a field after the anchor (or at the end) and returns the
// derived form plus the inserted field.
func AddField(f Form, fieldData Field, insertAfterID string) (Form, Field) {
	return internaldocument.AddField(f, fieldData, insertAfterID)
}

// InsertFields splices a batch after the anchor without group inheritance.
func InsertFields(f Form, fields []Field, insertAfterID string) (Form, []Field) {
	return internaldocument.InsertFields(f, fields, insertAfterID)
}

// UpdateField merges a partial update into the matching field.
func UpdateField(f Form, id string, patch FieldPatch) Form {
	return internaldocument.UpdateField(f, id, patch)
}

// DeleteField removes a field together with its descendant closure.
func DeleteField(f Form, id string) Form { return internaldocument.DeleteField(f, id) }

// DeleteFields removes several fields and their closures in one mutation.
func DeleteFields(f Form, ids []string) Form { return internaldocument.DeleteFields(f, ids) }

// DuplicateField clones a field under a fresh id immediately after the source.
func DuplicateField(f Form, id string) (Form, Field) {
	return internaldocument.DuplicateField(f, id)
}

// ReorderFields moves a field within the order-sorted flat list.
func ReorderFields(f Form, fromIndex, toIndex int) Form {
	return internaldocument.ReorderFields(f, fromIndex, toIndex)
}

// Descendants returns every field id whose group chain resolves to rootID.
func Descendants(fields []Field, rootID string) []string {
	return internaldocument.Descendants(fields, rootID)
}

// Flatten produces the depth-first ordering renderers and pagination consume.
func Flatten(fields []Field) []Field { return internaldocument.Flatten(fields) }

// SplitIntoPages partitions a flattened list into pages at page-break fields.
func SplitIntoPages(fields []Field) [][]Field {
	return internaldocument.SplitIntoPages(fields)
}
