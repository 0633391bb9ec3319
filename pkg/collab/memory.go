package collab

import (
	"fmt"
	"sync"
)

// Hub is an in-process room registry. Every channel joined for the same
// document id sees the others' broadcasts. It backs tests and single-process
// multi-session setups; cross-process setups use the websocket hub command.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*memoryChannel]bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*memoryChannel]bool)}
}

// Join adds a member to the room for documentID and returns its channel.
func (h *Hub) Join(documentID string) (Channel, error) {
	if documentID == "" {
		return nil, fmt.Errorf("collab: document id is required to join a room")
	}
	ch := &memoryChannel{
		hub:        h,
		documentID: documentID,
		inbox:      make(chan Envelope, 16),
	}
	h.mu.Lock()
	room, ok := h.rooms[documentID]
	if !ok {
		room = make(map[*memoryChannel]bool)
		h.rooms[documentID] = room
	}
	room[ch] = true
	h.mu.Unlock()
	return ch, nil
}

func (h *Hub) broadcast(from *memoryChannel, env Envelope) {
	h.mu.RLock()
	members := make([]*memoryChannel, 0, len(h.rooms[from.documentID]))
	for member := range h.rooms[from.documentID] {
		if member != from {
			members = append(members, member)
		}
	}
	h.mu.RUnlock()

	for _, member := range members {
		member.deliver(env)
	}
}

func (h *Hub) leave(ch *memoryChannel) {
	h.mu.Lock()
	if room, ok := h.rooms[ch.documentID]; ok {
		delete(room, ch)
		if len(room) == 0 {
			delete(h.rooms, ch.documentID)
		}
	}
	h.mu.Unlock()
}

type memoryChannel struct {
	hub        *Hub
	documentID string
	inbox      chan Envelope

	closeMu sync.Mutex
	closed  bool
}

func (c *memoryChannel) Broadcast(env Envelope) error {
	c.closeMu.Lock()
	closed := c.closed
	c.closeMu.Unlock()
	if closed {
		return fmt.Errorf("collab: channel for %q is closed", c.documentID)
	}
	env.DocumentID = c.documentID
	c.hub.broadcast(c, env)
	return nil
}

func (c *memoryChannel) Receive() <-chan Envelope { return c.inbox }

func (c *memoryChannel) Close() error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.hub.leave(c)
	close(c.inbox)
	return nil
}

// deliver drops the envelope when the member's inbox is full or closed; the
// room offers no delivery guarantee and a slow consumer converges on the next
// snapshot it does observe.
func (c *memoryChannel) deliver(env Envelope) {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.inbox <- env:
	default:
	}
}
