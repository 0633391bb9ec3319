// Package collab propagates document snapshots between editing sessions
// through a logical room keyed by document id. The policy is intentionally
// last-writer-wins at document granularity: a received snapshot replaces
// local state wholesale, with no merge and no per-field diffing. Envelopes
// carry a per-origin version number so stale deliveries can be dropped, but
// concurrent edits from different sessions can still clobber one another.
package collab

import (
	"time"

	"github.com/goliatone/go-formedit/pkg/document"
)

// Envelope is the unit of exchange inside a room: the full document plus the
// origin session id and that origin's monotonically increasing version.
type Envelope struct {
	DocumentID string        `json:"documentId"`
	Origin     string        `json:"origin"`
	Version    uint64        `json:"version"`
	SentAt     time.Time     `json:"sentAt"`
	Form       document.Form `json:"form"`
}

// Channel is one session's handle on a room. Broadcast publishes to every
// other member; Receive delivers envelopes published by them, in transport
// order, with no acknowledgement or retry. Close leaves the room and closes
// the receive stream.
type Channel interface {
	Broadcast(env Envelope) error
	Receive() <-chan Envelope
	Close() error
}

// JoinFunc opens a channel on the room for a document id. Implementations:
// Hub.Join for in-process fan-out, Dial for the websocket hub.
type JoinFunc func(documentID string) (Channel, error)
