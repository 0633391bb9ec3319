package session

import (
	"sort"

	"github.com/goliatone/go-formedit/pkg/document"
)

// Selection is a read-only view of the current selection state: one primary
// field id (empty for none) plus the ordered additional multi-select ids.
// The primary never appears inside Additional.
type Selection struct {
	Primary    string
	Additional []string
}

// Selection returns the current selection state.
func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Selection{
		Primary:    s.primary,
		Additional: append([]string(nil), s.extra...),
	}
}

// SelectField makes id the primary selection, clears every additional
// selection, and optionally raises the one-shot autofocus flag for the
// rendering layer. Unknown ids are a no-op, like every other stale-id
// operation; ClearSelection is the explicit way to deselect.
func (s *Session) SelectField(id string, autoFocus bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form.FieldByID(id) == nil {
		return
	}
	s.primary = id
	s.extra = nil
	s.autoFocus = autoFocus
}

// ToggleFieldSelection implements additive multi-select. Toggling the current
// primary promotes the first additional selection (or clears when there is
// none); toggling an already-additional id removes it; toggling a fresh id
// adds it to the additional set, or makes it primary when nothing is
// selected. Unknown ids are a no-op.
func (s *Session) ToggleFieldSelection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form.FieldByID(id) == nil {
		return
	}
	switch {
	case id == s.primary:
		if len(s.extra) > 0 {
			s.primary = s.extra[0]
			s.extra = append([]string(nil), s.extra[1:]...)
		} else {
			s.primary = ""
		}
	case containsID(s.extra, id):
		kept := s.extra[:0]
		for _, other := range s.extra {
			if other != id {
				kept = append(kept, other)
			}
		}
		s.extra = kept
	case s.primary == "":
		s.primary = id
	default:
		s.extra = append(s.extra, id)
	}
	s.autoFocus = false
}

// ClearSelection drops the primary and every additional selection.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.primary = ""
	s.extra = nil
	s.autoFocus = false
}

// ConsumeAutoFocus returns the autofocus flag and clears it; the rendering
// layer reads it exactly once after a SelectField call requested focus.
func (s *Session) ConsumeAutoFocus() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.autoFocus
	s.autoFocus = false
	return out
}

// DeleteSelectedFields removes the primary and every additional selection,
// each expanded to its descendant closure, as one document mutation with a
// single History entry, then clears the selection.
func (s *Session) DeleteSelectedFields() {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.selectedIDsLocked()
	if len(ids) == 0 {
		return
	}
	next := document.DeleteFields(s.form, ids)
	if len(s.form.Fields) > 0 && len(next.Fields) == len(s.form.Fields) && &next.Fields[0] == &s.form.Fields[0] {
		// Every selected id was stale; nothing to record.
		s.primary = ""
		s.extra = nil
		s.autoFocus = false
		return
	}
	s.primary = ""
	s.extra = nil
	s.autoFocus = false
	s.commitLocked(next)
}

// CopyFields deep-copies the selected fields, sorted by order, into the
// clipboard. The clipboard is independent of the live document from this
// moment on. An empty selection leaves the clipboard untouched.
func (s *Session) CopyFields() {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := s.selectedFieldsLocked()
	if len(copied) == 0 {
		return
	}
	s.clipboard = copied
}

// CutFields is copy followed by delete-selected, one History entry.
func (s *Session) CutFields() {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := s.selectedFieldsLocked()
	if len(copied) == 0 {
		return
	}
	s.clipboard = copied
	next := document.DeleteFields(s.form, s.selectedIDsLocked())
	s.primary = ""
	s.extra = nil
	s.autoFocus = false
	s.commitLocked(next)
}

// PasteFields inserts the clipboard contents immediately after the current
// primary selection (or at the document end), each under a fresh id with its
// group membership stripped, and selects the pasted fields (first primary,
// rest additional). Pasting repeatedly yields structurally distinct copies.
// The inserted fields are returned in insertion order.
func (s *Session) PasteFields() []document.Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clipboard) == 0 {
		return nil
	}

	batch := make([]document.Field, 0, len(s.clipboard))
	for _, clip := range s.clipboard {
		field := document.CloneField(clip)
		field.ID = document.NewFieldID()
		field.GroupID = ""
		batch = append(batch, field)
	}

	next, inserted := document.InsertFields(s.form, batch, s.primary)
	s.primary = inserted[0].ID
	s.extra = nil
	for _, field := range inserted[1:] {
		s.extra = append(s.extra, field.ID)
	}
	s.autoFocus = false
	s.commitLocked(next)
	return inserted
}

// Clipboard returns a deep copy of the clipboard contents.
func (s *Session) Clipboard() []document.Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]document.Field, 0, len(s.clipboard))
	for _, field := range s.clipboard {
		out = append(out, document.CloneField(field))
	}
	return out
}

func (s *Session) selectedIDsLocked() []string {
	var ids []string
	if s.primary != "" {
		ids = append(ids, s.primary)
	}
	ids = append(ids, s.extra...)
	return ids
}

// selectedFieldsLocked resolves the selection to order-sorted deep copies,
// skipping ids that no longer exist.
func (s *Session) selectedFieldsLocked() []document.Field {
	var out []document.Field
	for _, id := range s.selectedIDsLocked() {
		if field := s.form.FieldByID(id); field != nil {
			out = append(out, document.CloneField(*field))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// dropSelectionOfMissingLocked prunes selection entries that no longer
// resolve after a delete, undo, or remote replacement.
func (s *Session) dropSelectionOfMissingLocked(form document.Form) {
	if s.primary != "" && form.FieldByID(s.primary) == nil {
		s.primary = ""
	}
	kept := s.extra[:0]
	for _, id := range s.extra {
		if form.FieldByID(id) != nil {
			kept = append(kept, id)
		}
	}
	s.extra = kept
	if s.primary == "" && len(s.extra) > 0 {
		s.primary = s.extra[0]
		s.extra = append([]string(nil), s.extra[1:]...)
	}
}

func containsID(ids []string, id string) bool {
	for _, other := range ids {
		if other == id {
			return true
		}
	}
	return false
}
