package history_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formedit/pkg/document"
	"github.com/goliatone/go-formedit/pkg/history"
)

func formTitled(title string) document.Form {
	return document.Form{ID: "form-1", Title: title}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	t.Parallel()

	h := history.New(0)
	before := formTitled("before")
	after := formTitled("after")
	h.Reset(before)
	h.Record(after)

	restored, ok := h.Undo()
	if !ok {
		t.Fatalf("undo failed")
	}
	if diff := cmp.Diff(before, restored); diff != "" {
		t.Fatalf("undo result (-want +got):\n%s", diff)
	}

	redone, ok := h.Redo()
	if !ok {
		t.Fatalf("redo failed")
	}
	if diff := cmp.Diff(after, redone); diff != "" {
		t.Fatalf("redo result (-want +got):\n%s", diff)
	}
}

func TestUndoAtOldestEntryIsNoop(t *testing.T) {
	t.Parallel()

	h := history.New(0)
	h.Reset(formTitled("only"))

	if _, ok := h.Undo(); ok {
		t.Fatalf("undo succeeded with a single entry")
	}
	if _, ok := h.Redo(); ok {
		t.Fatalf("redo succeeded at the newest entry")
	}
	if h.Index() != 0 || h.Len() != 1 {
		t.Fatalf("index/len = %d/%d, want 0/1", h.Index(), h.Len())
	}
}

func TestRecordTruncatesRedoTail(t *testing.T) {
	t.Parallel()

	h := history.New(0)
	h.Reset(formTitled("v1"))
	h.Record(formTitled("v2"))
	h.Record(formTitled("v3"))

	if _, ok := h.Undo(); !ok {
		t.Fatalf("undo failed")
	}
	h.Record(formTitled("v2b"))

	if _, ok := h.Redo(); ok {
		t.Fatalf("redo recovered a truncated future")
	}
	current, _ := h.Current()
	if current.Title != "v2b" {
		t.Fatalf("current = %q, want v2b", current.Title)
	}
	if h.Len() != 3 {
		t.Fatalf("len = %d, want 3 (v1, v2, v2b)", h.Len())
	}
}

func TestEvictionKeepsIndexValid(t *testing.T) {
	t.Parallel()

	limit := 5
	h := history.New(limit)
	for i := 0; i < limit*3; i++ {
		h.Record(formTitled(fmt.Sprintf("v%d", i)))
	}

	if h.Len() != limit {
		t.Fatalf("len = %d, want %d", h.Len(), limit)
	}
	if h.Index() != limit-1 {
		t.Fatalf("index = %d, want %d", h.Index(), limit-1)
	}

	// Only the newest entries survive; undoing to the floor lands on the
	// oldest retained snapshot.
	var last document.Form
	for {
		restored, ok := h.Undo()
		if !ok {
			break
		}
		last = restored
	}
	if want := fmt.Sprintf("v%d", limit*3-limit); last.Title != want {
		t.Fatalf("oldest retained = %q, want %q", last.Title, want)
	}
}

func TestSnapshotsAreDeepCopies(t *testing.T) {
	t.Parallel()

	form := document.Form{
		ID: "form-1",
		Fields: []document.Field{
			{ID: "a", Type: document.FieldTypeShortText, Order: 0, Options: map[string]any{"k": "v"}},
		},
	}
	h := history.New(0)
	h.Reset(form)

	// Mutating the caller's form must not reach the stored snapshot.
	form.Fields[0].Label = "mutated"
	form.Fields[0].Options["k"] = "mutated"

	current, _ := h.Current()
	if current.Fields[0].Label == "mutated" || current.Fields[0].Options["k"] == "mutated" {
		t.Fatalf("history snapshot shares memory with the live document")
	}
}

func TestResetSeedsSingleEntry(t *testing.T) {
	t.Parallel()

	h := history.New(0)
	h.Record(formTitled("v1"))
	h.Record(formTitled("v2"))

	h.Reset(formTitled("persisted"))
	if h.Len() != 1 || h.Index() != 0 {
		t.Fatalf("len/index after reset = %d/%d, want 1/0", h.Len(), h.Index())
	}
	if h.CanUndo() || h.CanRedo() {
		t.Fatalf("reset history should have nothing to undo or redo")
	}
}
