package collab

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// wsChannel adapts one websocket connection to a hub room into the Channel
// interface. Writes are serialized by a mutex; a single read pump decodes
// inbound envelopes until the connection drops.
type wsChannel struct {
	conn       *websocket.Conn
	documentID string
	inbox      chan Envelope

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// Dial connects to a hub at baseURL (http, https, ws, or wss scheme) and
// joins the room for documentID.
func Dial(baseURL, documentID string) (Channel, error) {
	if documentID == "" {
		return nil, fmt.Errorf("collab: document id is required to join a room")
	}
	endpoint, err := roomURL(baseURL, documentID)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("collab: dial room %q: %w", documentID, err)
	}

	ch := &wsChannel{
		conn:       conn,
		documentID: documentID,
		inbox:      make(chan Envelope, 16),
	}
	go ch.readPump()
	return ch, nil
}

func (c *wsChannel) Broadcast(env Envelope) error {
	env.DocumentID = c.documentID
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteJSON(env); err != nil {
		return fmt.Errorf("collab: broadcast to room %q: %w", c.documentID, err)
	}
	return nil
}

func (c *wsChannel) Receive() <-chan Envelope { return c.inbox }

func (c *wsChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

// readPump decodes envelopes until the connection errors, then closes the
// inbox so consumers observe the end of the stream. Malformed frames
// terminate the pump; the transport offers no recovery beyond redialing.
func (c *wsChannel) readPump() {
	defer func() {
		c.Close()
		close(c.inbox)
	}()
	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			return
		}
		select {
		case c.inbox <- env:
		default:
			// Slow consumer: drop, the next snapshot supersedes this one.
		}
	}
}

func roomURL(baseURL, documentID string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("collab: parse hub url: %w", err)
	}
	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("collab: unsupported hub scheme %q", parsed.Scheme)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/rooms/" + url.PathEscape(documentID)
	return parsed.String(), nil
}
