package formedit_test

import (
	"context"
	"testing"

	formedit "github.com/goliatone/go-formedit"
	"github.com/goliatone/go-formedit/pkg/collab"
	"github.com/goliatone/go-formedit/pkg/document"
	"github.com/goliatone/go-formedit/pkg/store"
)

func TestDraftSaveOpenLifecycle(t *testing.T) {
	t.Parallel()

	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	hub := collab.NewHub()
	ctx := context.Background()

	draft := formedit.NewForm("Feedback form")
	if !document.IsTemporaryID(draft.ID) {
		t.Fatalf("new form id = %q, want a temporary id", draft.ID)
	}

	s := formedit.NewSession(draft, formedit.SessionOptions{Join: hub.Join})
	if err := s.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	s.AddField(formedit.Field{Type: document.FieldTypeShortText, Label: "Name"}, "")
	s.AddField(formedit.Field{Type: document.FieldTypeRating, Label: "Score"}, "")

	persisted, err := formedit.SaveSession(ctx, st, s)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if document.IsTemporaryID(persisted.ID) {
		t.Fatalf("persisted id is still temporary: %q", persisted.ID)
	}
	if s.HistoryLen() != 1 {
		t.Fatalf("history len after save = %d, want 1", s.HistoryLen())
	}

	reopened, err := formedit.OpenSession(ctx, st, persisted.ID, formedit.SessionOptions{Join: hub.Join})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	defer reopened.Close()
	defer s.Close()

	form := reopened.Form()
	if len(form.Fields) != 2 {
		t.Fatalf("reopened field count = %d, want 2", len(form.Fields))
	}
	if form.Fields[0].Label != "Name" || form.Fields[1].Label != "Score" {
		t.Fatalf("reopened fields out of order: %+v", form.Fields)
	}

	if _, err := formedit.OpenSession(ctx, st, "missing", formedit.SessionOptions{}); err == nil {
		t.Fatalf("opening an unknown document succeeded")
	}
}
