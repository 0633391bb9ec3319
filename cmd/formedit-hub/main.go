// Command formedit-hub relays form-document snapshots between editing
// sessions. Each websocket connection joins the room for one document id;
// every frame a member sends is forwarded to the other members of the same
// room, in transport order, with no acknowledgement or replay.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formedit/pkg/collab"
)

type config struct {
	Addr            string `yaml:"addr"`
	ReadBufferSize  int    `yaml:"read_buffer_size"`
	WriteBufferSize int    `yaml:"write_buffer_size"`
	Release         bool   `yaml:"release"`
}

func defaultConfig() config {
	return config{
		Addr:            ":8087",
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	var (
		configFlag = flag.String("config", "", "Path to a YAML config file")
		addrFlag   = flag.String("addr", "", "Listen address (overrides config)")
	)
	flag.Parse()

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *addrFlag != "" {
		cfg.Addr = *addrFlag
	}
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	h := newHub(cfg)
	r := gin.Default()
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "rooms": h.roomCount()})
	})
	r.GET("/rooms/:id", h.serveRoom)

	log.Printf("formedit-hub listening on %s", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

type hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	rooms    map[string]map[*client]bool
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func newHub(cfg config) *hub {
	return &hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true // origin policy belongs to the fronting proxy
			},
		},
		rooms: make(map[string]map[*client]bool),
	}
}

func (h *hub) serveRoom(c *gin.Context) {
	roomID := c.Param("id")
	if roomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room id required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("upgrade failed for room %s: %v", roomID, err)
		return
	}

	member := &client{conn: conn}
	h.join(roomID, member)
	log.Printf("member joined room %s", roomID)

	defer func() {
		h.leave(roomID, member)
		conn.Close()
		log.Printf("member left room %s", roomID)
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		// Decode to enforce the envelope shape and pin the room's document
		// id; a malformed frame drops without killing the connection.
		var env collab.Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			log.Printf("room %s: dropping malformed frame: %v", roomID, err)
			continue
		}
		env.DocumentID = roomID
		frame, err := json.Marshal(env)
		if err != nil {
			continue
		}
		h.relay(roomID, member, frame)
	}
}

func (h *hub) join(roomID string, member *client) {
	h.mu.Lock()
	room, ok := h.rooms[roomID]
	if !ok {
		room = make(map[*client]bool)
		h.rooms[roomID] = room
	}
	room[member] = true
	h.mu.Unlock()
}

func (h *hub) leave(roomID string, member *client) {
	h.mu.Lock()
	if room, ok := h.rooms[roomID]; ok {
		delete(room, member)
		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
	h.mu.Unlock()
}

// relay forwards a frame to every room member except its origin. Write
// failures only disconnect the failing member.
func (h *hub) relay(roomID string, from *client, frame []byte) {
	h.mu.RLock()
	members := make([]*client, 0, len(h.rooms[roomID]))
	for member := range h.rooms[roomID] {
		if member != from {
			members = append(members, member)
		}
	}
	h.mu.RUnlock()

	for _, member := range members {
		member.mu.Lock()
		err := member.conn.WriteMessage(websocket.TextMessage, frame)
		member.mu.Unlock()
		if err != nil {
			log.Printf("room %s: write failed, dropping member: %v", roomID, err)
			h.leave(roomID, member)
			member.conn.Close()
		}
	}
}

func (h *hub) roomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}
