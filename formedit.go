// Package formedit is the form-document editing engine: an in-memory form
// model with ordering and nesting invariants, a bounded undo history,
// clipboard and multi-selection operations, a conditional-visibility
// evaluator, and last-writer-wins snapshot sync between concurrent editors.
// The root package aliases the most used types and wires the load/save
// boundary to a session.
package formedit

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-formedit/pkg/collab"
	"github.com/goliatone/go-formedit/pkg/document"
	"github.com/goliatone/go-formedit/pkg/logic"
	"github.com/goliatone/go-formedit/pkg/session"
	"github.com/goliatone/go-formedit/pkg/store"
)

// Form aliases the canonical document type.
type Form = document.Form

// Field aliases a single form element.
type Field = document.Field

// FieldPatch aliases a partial field update.
type FieldPatch = document.FieldPatch

// Rule aliases a conditional-visibility rule.
type Rule = logic.Rule

// Session aliases the editing session object.
type Session = session.Session

// SessionOptions aliases session configuration.
type SessionOptions = session.Options

// Envelope aliases the sync snapshot envelope.
type Envelope = collab.Envelope

// NewForm returns an empty draft document under a temporary id; it gains a
// persistent id on first save.
func NewForm(title string) Form {
	return Form{
		ID:     document.TempIDPrefix + uuid.NewString(),
		Title:  title,
		Status: document.StatusDraft,
	}
}

// NewSession constructs an offline session owning the given document.
func NewSession(form Form, opts SessionOptions) *Session {
	return session.New(form, opts)
}

// OpenSession loads a document from the store, seeds a session with a single
// history entry, and joins the document's room. A join failure is returned
// alongside the usable session so callers can keep editing offline and retry.
func OpenSession(ctx context.Context, st store.Store, id string, opts SessionOptions) (*Session, error) {
	form, err := st.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("formedit: open %q: %w", id, err)
	}
	s := session.New(form, opts)
	if err := s.Connect(); err != nil {
		return s, fmt.Errorf("formedit: join room %q: %w", id, err)
	}
	return s, nil
}

// SaveSession persists the session's current document. A temporary id turns
// into the persisted one, history resets to a single entry reflecting the
// stored document, and the session joins its room under the real id.
func SaveSession(ctx context.Context, st store.Store, s *Session) (Form, error) {
	persisted, err := st.Save(ctx, s.Form())
	if err != nil {
		return Form{}, err
	}
	if err := s.AdoptPersisted(persisted); err != nil {
		return persisted, fmt.Errorf("formedit: join room %q: %w", persisted.ID, err)
	}
	return persisted, nil
}
