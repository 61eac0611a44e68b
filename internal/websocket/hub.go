package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"shadowcal/internal/model"
)

// Message is the real-time feed entry broadcast to connected clients after a
// transaction is applied.
type Message struct {
	Type     string    `json:"type"`
	Kind     string    `json:"kind"`
	Class    string    `json:"class"`
	ObjectID model.Ref `json:"objectId"`
	Actor    model.Ref `json:"actor,omitempty"`
	Derived  bool      `json:"derived"`
}

// FromTransaction builds the feed entry for an applied transaction. Derived
// marks reconciler output as opposed to client input.
func FromTransaction(tx model.Transaction, derived bool) Message {
	return Message{
		Type:     fmt.Sprintf("%s_%s", tx.ObjectClass, tx.Kind),
		Kind:     string(tx.Kind),
		Class:    string(tx.ObjectClass),
		ObjectID: tx.ObjectID,
		Actor:    tx.Actor,
		Derived:  derived,
	}
}

// Hub maintains the set of active WebSocket clients and broadcasts messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client buffer full — drop message to avoid blocking
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
