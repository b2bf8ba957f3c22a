package notify

import (
	"encoding/json"
	"sync"

	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/logging"
)

// Event is the realtime envelope pushed over a socket.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Client is one live socket connection. Send is a bounded buffer drained by
// the connection's write pump; a full buffer drops the event rather than
// blocking the publisher.
type Client struct {
	UserID string
	Role   string
	Send   chan []byte

	mu    sync.Mutex
	rooms map[string]struct{}
}

func NewClient(userID, role string) *Client {
	return &Client{
		UserID: userID,
		Role:   role,
		Send:   make(chan []byte, 32),
		rooms:  make(map[string]struct{}),
	}
}

func (c *Client) join(room string) {
	c.mu.Lock()
	c.rooms[room] = struct{}{}
	c.mu.Unlock()
}

func (c *Client) leave(room string) {
	c.mu.Lock()
	delete(c.rooms, room)
	c.mu.Unlock()
}

func (c *Client) in(room string) bool {
	c.mu.Lock()
	_, ok := c.rooms[room]
	c.mu.Unlock()
	return ok
}

// Hub is the online-connection table. Delivery is at-most-once and
// best-effort: a user without a live connection simply misses the event;
// there is no store-and-forward queue.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	byUser  map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		byUser:  make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.byUser[c.UserID] == nil {
		h.byUser[c.UserID] = make(map[*Client]struct{})
	}
	h.byUser[c.UserID][c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		delete(h.byUser[c.UserID], c)
		if len(h.byUser[c.UserID]) == 0 {
			delete(h.byUser, c.UserID)
		}
		close(c.Send)
	}
	h.mu.Unlock()
}

func (h *Hub) Join(c *Client, room string)  { c.join(room) }
func (h *Hub) Leave(c *Client, room string) { c.leave(room) }

// Online reports whether the user has at least one live connection.
func (h *Hub) Online(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID]) > 0
}

// ToUser pushes an event to every live connection of one user.
func (h *Hub) ToUser(userID, event string, data any) {
	msg, ok := marshal(event, data)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byUser[userID] {
		offer(c, msg)
	}
}

// ToRole broadcasts to every connection authenticated with the given role.
func (h *Hub) ToRole(role, event string, data any) {
	msg, ok := marshal(event, data)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.Role == role {
			offer(c, msg)
		}
	}
}

// ToRoom pushes to every connection subscribed to the topic.
func (h *Hub) ToRoom(room, event string, data any) {
	msg, ok := marshal(event, data)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.in(room) {
			offer(c, msg)
		}
	}
}

func marshal(event string, data any) ([]byte, bool) {
	msg, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		logging.New("hub").Error("event marshal failed", "event", event, "error", err)
		return nil, false
	}
	return msg, true
}

// offer is a non-blocking send; slow consumers lose events.
func offer(c *Client, msg []byte) {
	select {
	case c.Send <- msg:
	default:
		logging.New("hub").Warn("dropping event for slow client", "user_id", c.UserID)
	}
}
