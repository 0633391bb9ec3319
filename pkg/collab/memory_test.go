package collab_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-formedit/pkg/collab"
	"github.com/goliatone/go-formedit/pkg/document"
)

func receiveOne(t *testing.T, ch collab.Channel) collab.Envelope {
	t.Helper()
	select {
	case env, ok := <-ch.Receive():
		if !ok {
			t.Fatalf("receive stream closed")
		}
		return env
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for envelope")
		return collab.Envelope{}
	}
}

func TestHubFansOutToOtherMembers(t *testing.T) {
	t.Parallel()

	hub := collab.NewHub()
	a, err := hub.Join("doc-1")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	b, err := hub.Join("doc-1")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	other, err := hub.Join("doc-2")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	env := collab.Envelope{
		Origin:  "session-a",
		Version: 1,
		Form:    document.Form{ID: "doc-1", Title: "hello"},
	}
	if err := a.Broadcast(env); err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	got := receiveOne(t, b)
	if got.Form.Title != "hello" || got.DocumentID != "doc-1" {
		t.Fatalf("unexpected envelope: %+v", got)
	}

	// The origin never hears its own broadcast; other rooms hear nothing.
	select {
	case env := <-a.Receive():
		t.Fatalf("origin received its own broadcast: %+v", env)
	case env := <-other.Receive():
		t.Fatalf("foreign room received the broadcast: %+v", env)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubRequiresDocumentID(t *testing.T) {
	t.Parallel()

	if _, err := collab.NewHub().Join(""); err == nil {
		t.Fatalf("expected an error joining a room without a document id")
	}
}

func TestClosedChannelStopsReceiving(t *testing.T) {
	t.Parallel()

	hub := collab.NewHub()
	a, _ := hub.Join("doc-1")
	b, _ := hub.Join("doc-1")

	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok := <-b.Receive(); ok {
		t.Fatalf("closed channel still delivers")
	}
	if err := a.Broadcast(collab.Envelope{Origin: "a"}); err != nil {
		t.Fatalf("broadcast after peer close: %v", err)
	}
	if err := b.Broadcast(collab.Envelope{Origin: "b"}); err == nil {
		t.Fatalf("broadcast on a closed channel should fail")
	}
}
