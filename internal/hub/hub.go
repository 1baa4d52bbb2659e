package hub

import (
	"encoding/json"
	"sync"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client represents a single client connection (one open notification stream).
// It's essentially a channel that the SSE handler will listen to.
type Client chan []byte

// Hub manages notification streams, keyed by recipient user ID.
// A user may hold several connections at once (multiple tabs/devices).
type Hub struct {
	recipients map[uint]map[Client]bool
	mu         sync.RWMutex
}

// GlobalHub is the singleton instance of our Hub.
var GlobalHub = NewHub()

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		recipients: make(map[uint]map[Client]bool),
	}
}

// Subscribe adds a new client connection for a user.
func (h *Hub) Subscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.recipients[userID]; !ok {
		h.recipients[userID] = make(map[Client]bool)
	}
	h.recipients[userID][client] = true
}

// Unsubscribe removes a client connection for a user.
func (h *Hub) Unsubscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.recipients[userID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client) // Close the channel to signal the SSE handler to stop.
			if len(clients) == 0 {
				delete(h.recipients, userID)
			}
		}
	}
}

// Publish sends an event to every open connection of a single user.
func (h *Hub) Publish(userID uint, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.recipients[userID]; ok {
		messageBytes, err := json.Marshal(event)
		if err != nil {
			return
		}

		for client := range clients {
			// Use a non-blocking send to prevent a slow client from blocking the hub.
			select {
			case client <- messageBytes:
			default:
				// Client channel is full, maybe they are disconnected or slow.
				// The unsubscribe logic will handle cleaning this up eventually.
			}
		}
	}
}
