package http

import (
	"sync"

	"quizify-service/internal/domain"
	"quizify-service/internal/pkg/logger"
)

// envelope is the wire form of every server-to-client message.
type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// PresenceMarker records which users hold at least one live connection.
type PresenceMarker interface {
	MarkOnline(userID string)
	MarkOffline(userID string)
}

// hubClient is one socket connection's outbound queue.
type hubClient struct {
	userID string
	send   chan envelope
}

// Hub groups connections into per-user rooms and broadcasts events to them.
// Emission is fire-and-forget: a user with no connections loses the event,
// and a slow connection has its oldest queued event dropped rather than
// blocking the emitter.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*hubClient]struct{}
	presence PresenceMarker
	log      *logger.Logger
}

// NewHub builds a hub. presence may be nil when no redis is configured.
func NewHub(presence PresenceMarker, log *logger.Logger) *Hub {
	return &Hub{
		rooms:    make(map[string]map[*hubClient]struct{}),
		presence: presence,
		log:      log.With("component", "hub"),
	}
}

// Register adds a connection to the user's room and returns its outbound queue.
func (h *Hub) Register(userID string) *hubClient {
	client := &hubClient{userID: userID, send: make(chan envelope, 16)}
	h.mu.Lock()
	room, ok := h.rooms[userID]
	if !ok {
		room = make(map[*hubClient]struct{})
		h.rooms[userID] = room
	}
	room[client] = struct{}{}
	h.mu.Unlock()

	if h.presence != nil {
		h.presence.MarkOnline(userID)
	}
	return client
}

// Unregister removes the connection and closes its queue. The empty room is
// dropped and presence cleared when the user's last connection goes away.
func (h *Hub) Unregister(client *hubClient) {
	h.mu.Lock()
	room, ok := h.rooms[client.userID]
	if ok {
		if _, member := room[client]; member {
			delete(room, client)
			close(client.send)
		}
		if len(room) == 0 {
			delete(h.rooms, client.userID)
			if h.presence != nil {
				h.presence.MarkOffline(client.userID)
			}
		}
	}
	h.mu.Unlock()
}

// EmitToUser broadcasts one event to every connection in the user's room.
func (h *Hub) EmitToUser(userID string, event domain.Event) {
	env := envelope{Type: string(event.Kind()), Payload: event}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[userID] {
		select {
		case client.send <- env:
		default:
			// Slow consumer: drop the oldest queued event so broadcast
			// never blocks the request path.
			select {
			case <-client.send:
			default:
			}
			client.send <- env
		}
	}
}

// Subscribers reports how many connections the user's room currently holds.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}
