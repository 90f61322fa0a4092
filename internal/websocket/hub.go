package websocket

import (
	"encoding/json"
	"sync"
)

// ProjectionUpdate is pushed to connected UI clients after every ledger
// mutation, mirroring the in-memory projection.
type ProjectionUpdate struct {
	Balance    string `json:"balance"`
	Display    string `json:"display"`
	Currency   string `json:"currency"`
	Level      int    `json:"level"`
	Experience int64  `json:"experience"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(profileID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[profileID] == nil {
		h.clients[profileID] = make(map[*Client]struct{})
	}
	h.clients[profileID][client] = struct{}{}
}

func (h *Hub) Unregister(profileID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[profileID] == nil {
		return
	}
	delete(h.clients[profileID], client)
	if len(h.clients[profileID]) == 0 {
		delete(h.clients, profileID)
	}
}

func (h *Hub) BroadcastProjection(profileID string, update ProjectionUpdate) {
	payload, _ := json.Marshal(update)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[profileID] {
		select {
		case client.send <- payload:
		default:
		}
	}
}
