package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Message is a change notification pushed to the roommates of a household,
// or to a single user when HouseholdID is unset.
type Message struct {
	Type        string         `json:"type"`
	Entity      string         `json:"entity"`
	Action      string         `json:"action"`
	HouseholdID uuid.UUID      `json:"household_id"`
	ID          uuid.UUID      `json:"id"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action string, householdID, id uuid.UUID, extra map[string]any) Message {
	return Message{
		Type:        fmt.Sprintf("%s_%s", entity, action),
		Entity:      entity,
		Action:      action,
		HouseholdID: householdID,
		ID:          id,
		Extra:       extra,
	}
}

// Hub maintains the set of active WebSocket clients and routes messages to
// the clients subscribed to a household.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
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

// Subscribe adds householdID to every connection of userID.
func (h *Hub) Subscribe(userID, householdID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.userID == userID {
			c.households[householdID] = struct{}{}
		}
	}
}

// Unsubscribe removes householdID from every connection of userID.
func (h *Hub) Unsubscribe(userID, householdID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.userID == userID {
			delete(c.households, householdID)
		}
	}
}

// Broadcast sends msg to every client subscribed to msg.HouseholdID.
func (h *Hub) Broadcast(msg Message) {
	h.deliver(msg, func(c *Client) bool {
		_, ok := c.households[msg.HouseholdID]
		return ok
	})
}

// Notify sends msg to every connection of userID, whatever it subscribes to.
func (h *Hub) Notify(userID uuid.UUID, msg Message) {
	h.deliver(msg, func(c *Client) bool { return c.userID == userID })
}

func (h *Hub) deliver(msg Message, match func(*Client) bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if !match(c) {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.logger.Warn("client buffer full, dropping message", "user_id", c.userID, "type", msg.Type)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
