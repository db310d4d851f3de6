package websocket

import (
	"log"
	"sync"

	"social-go/internal/metrics"
)

// Hub is the connection directory: it maps a user identity to at most one
// live client. Binding is last-writer-wins; a new connection for a user
// silently replaces the previous one. Unbinding is compare-and-clear so a
// stale connection's disconnect can never evict a newer binding.
//
// The hub is handed to handlers explicitly; nothing in the process reaches it
// through package state.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]*Client // userID -> client
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[uint]*Client)}
}

// Bind registers client as the live connection for userID, replacing and
// closing any previous binding for the same user.
func (h *Hub) Bind(userID uint, client *Client) {
	h.mu.Lock()
	previous := h.clients[userID]
	h.clients[userID] = client
	h.mu.Unlock()

	if previous != nil && previous != client {
		log.Printf("hub: user %d already bound, replacing connection %s with %s", userID, previous.ConnID, client.ConnID)
		previous.closeSend()
	} else {
		metrics.ConnectedClients.Inc()
	}
}

// Unbind clears the directory entry for client's user, but only if the entry
// still points at this exact client. Returns the user ID that was cleared and
// whether anything was cleared; a stale disconnect is a no-op.
func (h *Hub) Unbind(client *Client) (uint, bool) {
	userID := client.UserID
	if userID == 0 {
		return 0, false // connection never completed bind-identity
	}

	h.mu.Lock()
	stored, ok := h.clients[userID]
	if !ok || stored != client {
		h.mu.Unlock()
		return 0, false
	}
	delete(h.clients, userID)
	h.mu.Unlock()

	metrics.ConnectedClients.Dec()
	return userID, true
}

// Resolve returns the live client for userID, or nil when the user is not
// connected.
func (h *Hub) Resolve(userID uint) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[userID]
}

// IsOnline reports whether userID currently has a live connection.
func (h *Hub) IsOnline(userID uint) bool {
	return h.Resolve(userID) != nil
}
