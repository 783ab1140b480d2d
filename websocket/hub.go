package websocket

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"arguematch/internal/debate"
)

// Hub tracks live clients by connection id and delivers events to them
type Hub struct {
	clients map[string]*MatchmakingClient
	mutex   sync.RWMutex
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*MatchmakingClient)}
}

func (h *Hub) register(client *MatchmakingClient) {
	h.mutex.Lock()
	h.clients[client.id] = client
	h.mutex.Unlock()
}

// unregister drops the client and closes its send channel. Safe to call
// more than once.
func (h *Hub) unregister(client *MatchmakingClient) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.dropLocked(client)
}

func (h *Hub) dropLocked(client *MatchmakingClient) {
	if current, ok := h.clients[client.id]; ok && current == client {
		delete(h.clients, client.id)
		close(client.send)
	}
}

// Len returns the number of live clients
func (h *Hub) Len() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Send delivers the event to one connection. Unknown ids are ignored.
func (h *Hub) Send(connectionID string, event *debate.Event) {
	h.Broadcast([]string{connectionID}, event)
}

// Broadcast encodes the event once and queues it for every listed
// connection. A client whose buffer is full is dropped; its read loop
// notices the closed socket and runs the disconnect path.
func (h *Hub) Broadcast(connectionIDs []string, event *debate.Event) {
	messageData, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", event.Type).Msg("[ws] encode event")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, id := range connectionIDs {
		client, ok := h.clients[id]
		if !ok {
			continue
		}
		select {
		case client.send <- messageData:
		default:
			log.Warn().Str("conn", id).Msg("[ws] send buffer full, dropping client")
			h.dropLocked(client)
		}
	}
}
