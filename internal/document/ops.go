package document

import (
	"sort"

	"github.com/google/uuid"
	"github.com/mohae/deepcopy"
)

// Operations in this file follow one contract: they take the current Form and
// return a derived copy, never mutating the input, so History snapshots stay
// valid. Operations that target a non-existent id return the input unchanged;
// stale references from async races must not corrupt state.

// NewFieldID mints a unique field identifier.
func NewFieldID() string {
	return uuid.NewString()
}

// Clone returns a deep copy of the form, sharing no maps or slices with the
// input.
func Clone(f Form) Form {
	return deepcopy.Copy(f).(Form)
}

// CloneField returns a deep copy of a single field.
func CloneField(f Field) Field {
	return deepcopy.Copy(f).(Field)
}

// AddField inserts fieldData into the document. When insertAfterID names an
// existing field the new field lands immediately after it; otherwise it lands
// at the document end. An anchor that belongs to a group pulls the new field
// into the same group. A blank id is replaced with a fresh one. The returned
// field is the inserted copy after normalization.
func AddField(f Form, fieldData Field, insertAfterID string) (Form, Field) {
	out := Clone(f)
	field := CloneField(fieldData)
	if field.ID == "" {
		field.ID = NewFieldID()
	}
	sanitizeField(&field)

	insertAt := len(out.Fields)
	if anchor := out.FieldByID(insertAfterID); anchor != nil {
		insertAt = anchor.Order + 1
		if anchor.GroupID != "" {
			field.GroupID = anchor.GroupID
		}
	}

	for i := range out.Fields {
		if out.Fields[i].Order >= insertAt {
			out.Fields[i].Order++
		}
	}
	field.Order = insertAt
	out.Fields = append(out.Fields, field)

	out = normalize(out)
	inserted := out.FieldByID(field.ID)
	return out, *inserted
}

// InsertFields splices a batch of fields into the document immediately after
// the anchor (or at the end), preserving each field's given group membership
// rather than inheriting the anchor's, in one structural mutation. Blank ids
// get fresh ones. The returned slice holds the inserted copies in insertion
// order, after normalization.
func InsertFields(f Form, fields []Field, insertAfterID string) (Form, []Field) {
	if len(fields) == 0 {
		return f, nil
	}
	out := Clone(f)

	insertAt := len(out.Fields)
	if anchor := out.FieldByID(insertAfterID); anchor != nil {
		insertAt = anchor.Order + 1
	}
	for i := range out.Fields {
		if out.Fields[i].Order >= insertAt {
			out.Fields[i].Order += len(fields)
		}
	}

	ids := make([]string, 0, len(fields))
	for i, fieldData := range fields {
		field := CloneField(fieldData)
		if field.ID == "" {
			field.ID = NewFieldID()
		}
		sanitizeField(&field)
		field.Order = insertAt + i
		out.Fields = append(out.Fields, field)
		ids = append(ids, field.ID)
	}

	out = normalize(out)
	inserted := make([]Field, 0, len(ids))
	for _, id := range ids {
		inserted = append(inserted, *out.FieldByID(id))
	}
	return out, inserted
}

// FieldPatch is a partial field update. Nil pointers leave the current value
// untouched; Options and Validation entries merge key by key into the
// existing maps.
type FieldPatch struct {
	Type        *FieldType
	Label       *string
	Placeholder *string
	Required    *bool
	GroupID     *string
	Options     map[string]any
	Validation  map[string]any
}

// UpdateField merges a partial update into the matching field. Ordering is
// untouched. Unknown ids are a no-op.
func UpdateField(f Form, id string, patch FieldPatch) Form {
	if f.FieldByID(id) == nil {
		return f
	}
	out := Clone(f)
	field := out.FieldByID(id)

	if patch.Type != nil {
		field.Type = *patch.Type
	}
	if patch.Label != nil {
		field.Label = *patch.Label
	}
	if patch.Placeholder != nil {
		field.Placeholder = *patch.Placeholder
	}
	if patch.Required != nil {
		field.Required = *patch.Required
	}
	if patch.GroupID != nil {
		field.GroupID = *patch.GroupID
	}
	if len(patch.Options) > 0 {
		if field.Options == nil {
			field.Options = make(map[string]any, len(patch.Options))
		}
		for k, v := range patch.Options {
			field.Options[k] = v
		}
	}
	if len(patch.Validation) > 0 {
		if field.Validation == nil {
			field.Validation = make(map[string]any, len(patch.Validation))
		}
		for k, v := range patch.Validation {
			field.Validation[k] = v
		}
	}
	sanitizeField(field)
	return normalize(out)
}

// DeleteField removes the field and its descendant closure: every field whose
// groupId chain transitively resolves to id. Unknown ids are a no-op.
func DeleteField(f Form, id string) Form {
	return DeleteFields(f, []string{id})
}

// DeleteFields removes multiple fields, each expanded to its descendant
// closure, in a single structural mutation. Unknown ids are skipped; when no
// id resolves, the input is returned unchanged.
func DeleteFields(f Form, ids []string) Form {
	doomed := make(map[string]bool)
	for _, id := range ids {
		if f.FieldByID(id) == nil {
			continue
		}
		doomed[id] = true
		for _, desc := range Descendants(f.Fields, id) {
			doomed[desc] = true
		}
	}
	if len(doomed) == 0 {
		return f
	}

	out := Clone(f)
	kept := out.Fields[:0]
	for _, field := range out.Fields {
		if !doomed[field.ID] {
			kept = append(kept, field)
		}
	}
	out.Fields = kept
	return normalize(out)
}

// Descendants returns the ids of every field whose groupId chain resolves to
// rootID, in no particular order. Cycles terminate the walk.
func Descendants(fields []Field, rootID string) []string {
	children := make(map[string][]string, len(fields))
	for _, field := range fields {
		if field.GroupID != "" {
			children[field.GroupID] = append(children[field.GroupID], field.ID)
		}
	}

	var out []string
	seen := map[string]bool{rootID: true}
	queue := append([]string(nil), children[rootID]...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
		queue = append(queue, children[id]...)
	}
	return out
}

// DuplicateField deep-clones the field under a new id and inserts the clone
// immediately after the source. Descendants of a group are not duplicated.
// Unknown ids are a no-op with a zero Field.
func DuplicateField(f Form, id string) (Form, Field) {
	source := f.FieldByID(id)
	if source == nil {
		return f, Field{}
	}
	clone := CloneField(*source)
	clone.ID = NewFieldID()
	return AddField(f, clone, id)
}

// ReorderFields moves the element at fromIndex of the order-sorted flat list
// to toIndex and renumbers to match list position. Moves are only legal
// within a single group scope: when the field displaced at the destination
// belongs to a different group than the moved field the call is a no-op, so a
// group's children cannot be scattered across foreign ranges. Out-of-range
// indices are a no-op.
func ReorderFields(f Form, fromIndex, toIndex int) Form {
	n := len(f.Fields)
	if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n || fromIndex == toIndex {
		return f
	}

	out := Clone(f)
	list := sortedByOrder(out.Fields)
	if list[fromIndex].GroupID != list[toIndex].GroupID {
		return f
	}

	moved := list[fromIndex]
	list = append(list[:fromIndex], list[fromIndex+1:]...)
	list = append(list, Field{})
	copy(list[toIndex+1:], list[toIndex:])
	list[toIndex] = moved

	for i := range list {
		list[i].Order = i
	}
	out.Fields = list
	return normalize(out)
}

// normalize restores the structural invariants every mutation must leave
// behind: dense zero-based order, no dangling or cyclic group references, no
// legacy conditions pointing at removed fields, and a page-settings list
// sized to the page count.
func normalize(f Form) Form {
	f.Fields = sortedByOrder(f.Fields)
	for i := range f.Fields {
		f.Fields[i].Order = i
	}

	byID := make(map[string]*Field, len(f.Fields))
	for i := range f.Fields {
		byID[f.Fields[i].ID] = &f.Fields[i]
	}
	for i := range f.Fields {
		gid := f.Fields[i].GroupID
		if gid == "" {
			continue
		}
		parent, ok := byID[gid]
		if !ok || parent.Type != FieldTypeGroup || gid == f.Fields[i].ID {
			f.Fields[i].GroupID = ""
		}
	}
	// A group chain that leads back to its own start would make a group its
	// own ancestor; the member whose chain returns to itself loses its
	// reference, which breaks the cycle for everything pointing into it.
	for i := range f.Fields {
		seen := map[string]bool{f.Fields[i].ID: true}
		gid := f.Fields[i].GroupID
		for gid != "" {
			if gid == f.Fields[i].ID {
				f.Fields[i].GroupID = ""
				break
			}
			if seen[gid] {
				break
			}
			seen[gid] = true
			parent := byID[gid]
			if parent == nil {
				break
			}
			gid = parent.GroupID
		}
	}

	if len(f.Conditions) > 0 {
		kept := f.Conditions[:0]
		for _, cond := range f.Conditions {
			if _, ok := byID[cond.FieldID]; !ok {
				continue
			}
			if _, ok := byID[cond.TargetID]; !ok {
				continue
			}
			kept = append(kept, cond)
		}
		f.Conditions = kept
	}

	pages := f.PageCount()
	for len(f.Pages) < pages {
		f.Pages = append(f.Pages, PageSettings{})
	}
	if len(f.Pages) > pages {
		f.Pages = f.Pages[:pages]
	}

	return f
}

func sortedByOrder(fields []Field) []Field {
	out := append([]Field(nil), fields...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}
