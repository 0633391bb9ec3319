// Package session implements the form-document editing engine as an explicit,
// constructible object owning its own Form, History, Selection, and sync
// channel. Multiple sessions (tabs, tests) share no hidden global state.
//
// All mutating operations run synchronously to completion and follow one
// pipeline: derive the next Form, record a History snapshot, broadcast the
// snapshot to the document's room. Operations that target a stale id are
// silent no-ops; the document is left structurally valid after every call.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formedit/pkg/collab"
	"github.com/goliatone/go-formedit/pkg/document"
	"github.com/goliatone/go-formedit/pkg/history"
	"github.com/goliatone/go-formedit/pkg/logic"
)

// Options configures a session.
type Options struct {
	// HistoryLimit bounds the undo buffer; zero means history.DefaultLimit.
	HistoryLimit int
	// Join opens the room channel for a document id. Nil sessions edit
	// offline. Documents with temporary ids never join regardless.
	Join collab.JoinFunc
	// OnSyncError receives broadcast failures. Transport errors never block
	// or corrupt local editing; when nil they are dropped.
	OnSyncError func(error)
}

// Session is one editor's live handle on a form document.
type Session struct {
	id   string
	opts Options

	mu        sync.Mutex
	form      document.Form
	history   *history.History
	channel   collab.Channel
	version   uint64
	applied   map[string]uint64
	primary   string
	extra     []string
	clipboard []document.Field
	autoFocus bool
}

// New creates a session owning the given document and seeds History with a
// single entry, as on load. The session starts offline; call Connect to join
// the document's room.
func New(form document.Form, opts Options) *Session {
	s := &Session{
		id:      uuid.NewString(),
		opts:    opts,
		form:    document.Clone(form),
		history: history.New(opts.HistoryLimit),
		applied: make(map[string]uint64),
	}
	s.history.Reset(s.form)
	return s
}

// ID identifies this session inside its room.
func (s *Session) ID() string { return s.id }

// Form returns a deep copy of the current document.
func (s *Session) Form() document.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return document.Clone(s.form)
}

// Connect joins the room for the current document id and starts applying
// inbound snapshots. Temporary ids have no server-side counterpart and stay
// offline without error, as do sessions constructed without a Join function.
// A transport failure is returned to the caller; local editing and undo/redo
// keep working regardless.
func (s *Session) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectLocked()
}

func (s *Session) connectLocked() error {
	if s.opts.Join == nil || s.channel != nil || document.IsTemporaryID(s.form.ID) || s.form.ID == "" {
		return nil
	}
	channel, err := s.opts.Join(s.form.ID)
	if err != nil {
		return err
	}
	s.channel = channel
	go s.pump(channel)
	return nil
}

// Close leaves the room. The session remains usable offline.
func (s *Session) Close() error {
	s.mu.Lock()
	channel := s.channel
	s.channel = nil
	s.mu.Unlock()
	if channel == nil {
		return nil
	}
	return channel.Close()
}

func (s *Session) pump(channel collab.Channel) {
	for env := range channel.Receive() {
		s.ApplyRemote(env)
	}
}

// AdoptPersisted replaces the document with its just-persisted counterpart:
// the persisted id supersedes a local temporary one and History resets to a
// single entry reflecting the stored document. When the id became real the
// session joins its room; the join error, if any, is returned and leaves the
// session editable offline.
func (s *Session) AdoptPersisted(form document.Form) error {
	s.mu.Lock()
	s.form = document.Clone(form)
	s.history.Reset(s.form)
	s.dropSelectionOfMissingLocked(s.form)
	err := s.connectLocked()
	s.mu.Unlock()
	return err
}

// AddField inserts a field after the anchor (or at the document end when the
// anchor is empty or unknown) and returns the inserted field.
func (s *Session) AddField(fieldData document.Field, insertAfterID string) document.Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, inserted := document.AddField(s.form, fieldData, insertAfterID)
	s.commitLocked(next)
	return inserted
}

// UpdateField merges a partial update into the matching field. Unknown ids
// are a no-op and leave History untouched.
func (s *Session) UpdateField(id string, patch document.FieldPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form.FieldByID(id) == nil {
		return
	}
	s.commitLocked(document.UpdateField(s.form, id, patch))
}

// DeleteField removes a field and its descendant closure. Unknown ids are a
// no-op.
func (s *Session) DeleteField(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form.FieldByID(id) == nil {
		return
	}
	next := document.DeleteField(s.form, id)
	s.dropSelectionOfMissingLocked(next)
	s.commitLocked(next)
}

// DuplicateField clones a field immediately after its source and makes the
// clone the primary selection. Unknown ids are a no-op with a zero Field.
func (s *Session) DuplicateField(id string) document.Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form.FieldByID(id) == nil {
		return document.Field{}
	}
	next, clone := document.DuplicateField(s.form, id)
	s.primary = clone.ID
	s.extra = nil
	s.autoFocus = false
	s.commitLocked(next)
	return clone
}

// ReorderFields moves the element at fromIndex of the order-sorted flat list
// to toIndex. Moves that would change the field's group scope, and
// out-of-range indices, are no-ops.
func (s *Session) ReorderFields(fromIndex, toIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := document.ReorderFields(s.form, fromIndex, toIndex)
	// Rejected moves return the input form unchanged, sharing its backing
	// array; they must not spend a History entry.
	if len(next.Fields) == 0 || &next.Fields[0] == &s.form.Fields[0] {
		return
	}
	s.commitLocked(next)
}

// SetTitle replaces the document title.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := document.Clone(s.form)
	next.Title = title
	s.commitLocked(next)
}

// SetStatus moves the document through its publication lifecycle.
func (s *Session) SetStatus(status document.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := document.Clone(s.form)
	next.Status = status
	s.commitLocked(next)
}

// UpdatePageSettings replaces the settings of one page. Out-of-range indices
// are a no-op.
func (s *Session) UpdatePageSettings(page int, settings document.PageSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page < 0 || page >= len(s.form.Pages) {
		return
	}
	next := document.Clone(s.form)
	next.Pages[page] = settings
	s.commitLocked(next)
}

// Undo steps the document back one history entry, broadcasts the restored
// snapshot so remote peers converge to the undone state, and reports whether
// anything changed.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	restored, ok := s.history.Undo()
	if !ok {
		return false
	}
	s.form = restored
	s.dropSelectionOfMissingLocked(s.form)
	s.broadcastLocked()
	return true
}

// Redo steps the document forward one history entry and broadcasts it.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	restored, ok := s.history.Redo()
	if !ok {
		return false
	}
	s.form = restored
	s.dropSelectionOfMissingLocked(s.form)
	s.broadcastLocked()
	return true
}

// CanUndo reports whether an older snapshot exists.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether a redoable future exists.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// HistoryLen exposes the number of retained snapshots.
func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}

// ApplyRemote replaces the local document wholesale with a snapshot received
// from the room. Envelopes from this session, for another document, or not
// newer than the last applied version from the same origin are ignored. The
// receiving session's History gains no entry: current state changes, the
// undo stack does not.
func (s *Session) ApplyRemote(env collab.Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if env.Origin == s.id {
		return
	}
	if env.DocumentID != "" && env.DocumentID != s.form.ID {
		return
	}
	if last, ok := s.applied[env.Origin]; ok && env.Version <= last {
		return
	}
	s.applied[env.Origin] = env.Version
	s.form = document.Clone(env.Form)
	s.dropSelectionOfMissingLocked(s.form)
}

// HiddenFields evaluates the document's logic rules against the given field
// values and returns the set of hidden field ids, including fields implicitly
// hidden because their group chain resolves to a hidden field. Stateless and
// safe to call redundantly.
func (s *Session) HiddenFields(values map[string]any) map[string]bool {
	s.mu.Lock()
	rules := append([]logic.Rule(nil), s.form.Rules...)
	parents := make(map[string]string, len(s.form.Fields))
	for _, field := range s.form.Fields {
		if field.GroupID != "" {
			parents[field.ID] = field.GroupID
		}
	}
	s.mu.Unlock()

	return logic.HiddenWithDescendants(logic.Evaluate(rules, values), parents)
}

// commitLocked is the single mutation pipeline: adopt the derived form,
// record exactly one History entry per logical user action, broadcast the
// snapshot. Callers guard the no-op cases before deriving.
func (s *Session) commitLocked(next document.Form) {
	s.form = next
	s.history.Record(s.form)
	s.broadcastLocked()
}

func (s *Session) broadcastLocked() {
	if s.channel == nil {
		return
	}
	s.version++
	err := s.channel.Broadcast(collab.Envelope{
		DocumentID: s.form.ID,
		Origin:     s.id,
		Version:    s.version,
		SentAt:     time.Now(),
		Form:       document.Clone(s.form),
	})
	if err != nil && s.opts.OnSyncError != nil {
		s.opts.OnSyncError(err)
	}
}
