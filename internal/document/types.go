package document

import (
	"strings"

	"github.com/goliatone/go-formedit/pkg/logic"
)

// FieldType enumerates the kinds of fields a form document can hold. Input
// types collect a value from respondents; layout types only shape the
// rendered document.
type FieldType string

const (
	FieldTypeShortText    FieldType = "short-text"
	FieldTypeLongText     FieldType = "long-text"
	FieldTypeNumber       FieldType = "number"
	FieldTypeChoiceSingle FieldType = "choice-single"
	FieldTypeChoiceMulti  FieldType = "choice-multi"
	FieldTypeDate         FieldType = "date"
	FieldTypeRating       FieldType = "rating"
	FieldTypeHeading      FieldType = "heading"
	FieldTypeParagraph    FieldType = "paragraph"
	FieldTypeDivider      FieldType = "divider"
	FieldTypePageBreak    FieldType = "page-break"
	FieldTypeGroup        FieldType = "group"
	FieldTypeSubmit       FieldType = "submit"
)

// IsLayout reports whether the type is presentational only and never collects
// a submission value.
func (t FieldType) IsLayout() bool {
	switch t {
	case FieldTypeHeading, FieldTypeParagraph, FieldTypeDivider,
		FieldTypePageBreak, FieldTypeGroup, FieldTypeSubmit:
		return true
	}
	return false
}

// Status tracks the publication lifecycle of a form.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Field models a single element inside the flat, ordered field list. Order is
// a dense zero-based index unique across the whole list; GroupID, when set,
// references a field of type group that acts as this field's parent.
type Field struct {
	ID          string         `json:"id"`
	Type        FieldType      `json:"type"`
	Label       string         `json:"label,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	Required    bool           `json:"required"`
	Options     map[string]any `json:"options,omitempty"`
	Validation  map[string]any `json:"validation,omitempty"`
	Order       int            `json:"order"`
	GroupID     string         `json:"groupId,omitempty"`
}

// FieldCondition is the legacy flat field-pair visibility condition kept for
// documents authored before logic rules existed. Structural mutations prune
// entries whose source or target field no longer exists.
type FieldCondition struct {
	ID       string `json:"id"`
	FieldID  string `json:"fieldId"`
	Operator string `json:"operator"`
	Value    string `json:"value,omitempty"`
	TargetID string `json:"targetId"`
}

// PageSettings carries per-page display metadata. The slice on Form always
// has exactly pageCount entries; structural mutations truncate or pad it.
type PageSettings struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Form is the canonical in-memory representation of a form document: an
// ordered flat field list plus logic rules, legacy conditions, and display
// settings. Operations in this package treat it as an immutable value and
// return derived copies.
type Form struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Fields      []Field          `json:"fields"`
	Rules       []logic.Rule     `json:"rules,omitempty"`
	Conditions  []FieldCondition `json:"conditions,omitempty"`
	Pages       []PageSettings   `json:"pages,omitempty"`
	Display     map[string]any   `json:"display,omitempty"`
	Status      Status           `json:"status"`
}

// TempIDPrefix marks document ids that only exist client-side; a form with a
// temporary id has no server-side counterpart and never joins a sync room.
const TempIDPrefix = "tmp-"

// IsTemporaryID reports whether id is a client-side placeholder.
func IsTemporaryID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// FieldByID returns a pointer to the field with the given id, or nil when the
// id is unknown. The pointer aliases the receiver's slice; callers that hold
// snapshots must copy before mutating.
func (f *Form) FieldByID(id string) *Field {
	for i := range f.Fields {
		if f.Fields[i].ID == id {
			return &f.Fields[i]
		}
	}
	return nil
}

// PageCount is the number of pages the document renders as: one more than the
// number of page-break fields.
func (f *Form) PageCount() int {
	count := 1
	for i := range f.Fields {
		if f.Fields[i].Type == FieldTypePageBreak {
			count++
		}
	}
	return count
}
