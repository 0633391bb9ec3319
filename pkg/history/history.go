// Package history implements the bounded linear undo buffer for form
// documents: an ordered list of deep-copied snapshots with a current index.
package history

import (
	"time"

	"github.com/goliatone/go-formedit/pkg/document"
)

// DefaultLimit bounds the buffer to the most recent entries; older snapshots
// are silently evicted.
const DefaultLimit = 50

// Entry is one snapshot of the document at a point in time.
type Entry struct {
	Form document.Form
	At   time.Time
}

// History is the classic linear undo buffer: recording a mutation truncates
// every entry after the current index before appending, so a redone future is
// unrecoverable once a new change lands. The zero value is not usable; use
// New.
type History struct {
	entries []Entry
	index   int
	limit   int
	now     func() time.Time
}

// New returns an empty history bounded to limit entries. A non-positive limit
// falls back to DefaultLimit.
func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{index: -1, limit: limit, now: time.Now}
}

// Reset discards all entries and seeds the buffer with a single snapshot,
// as happens when a document is first loaded or re-persisted.
func (h *History) Reset(f document.Form) {
	h.entries = h.entries[:0]
	h.index = -1
	h.Record(f)
}

// Record truncates the redo tail, appends a deep copy of the document, and
// moves the index to the new last entry. When the buffer would exceed its
// bound the oldest entry is dropped and the index adjusted.
func (h *History) Record(f document.Form) {
	h.entries = append(h.entries[:h.index+1], Entry{
		Form: document.Clone(f),
		At:   h.now(),
	})
	if len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		h.entries = append(h.entries[:0], h.entries[drop:]...)
	}
	h.index = len(h.entries) - 1
}

// Undo steps the index back one entry and returns a deep copy of the
// snapshot there. At the oldest entry (or on an empty buffer) it reports
// false and changes nothing.
func (h *History) Undo() (document.Form, bool) {
	if !h.CanUndo() {
		return document.Form{}, false
	}
	h.index--
	return document.Clone(h.entries[h.index].Form), true
}

// Redo steps the index forward one entry and returns a deep copy of the
// snapshot there. At the newest entry it reports false and changes nothing.
func (h *History) Redo() (document.Form, bool) {
	if !h.CanRedo() {
		return document.Form{}, false
	}
	h.index++
	return document.Clone(h.entries[h.index].Form), true
}

// CanUndo reports whether an older snapshot exists.
func (h *History) CanUndo() bool { return h.index > 0 }

// CanRedo reports whether a truncatable future exists.
func (h *History) CanRedo() bool { return h.index >= 0 && h.index < len(h.entries)-1 }

// Len is the number of retained entries.
func (h *History) Len() int { return len(h.entries) }

// Index is the current position, or -1 when the buffer is empty.
func (h *History) Index() int { return h.index }

// Current returns a deep copy of the snapshot at the current index.
func (h *History) Current() (document.Form, bool) {
	if h.index < 0 || h.index >= len(h.entries) {
		return document.Form{}, false
	}
	return document.Clone(h.entries[h.index].Form), true
}
