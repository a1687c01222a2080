package websocket

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"support-desk-be/internal/constant"
	"support-desk-be/internal/dto"
	"support-desk-be/internal/pkg/logger"
)

// Hub is the room registry: conversation id -> set of subscribed clients.
// Membership lives only here and only for this process; a restart empties
// every room.
type Hub struct {
	// rooms holds live subscriptions. Guarded by mu together with each
	// client's room set.
	rooms map[uuid.UUID]map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	mu sync.RWMutex

	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.logger.Info("Hub", "Client registered", map[string]interface{}{
				"session_id": client.SessionID,
				"user_id":    client.UserID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			for conversationID := range client.rooms {
				h.removeLocked(conversationID, client)
			}
			client.rooms = make(map[uuid.UUID]bool)
			h.mu.Unlock()
			close(client.Send)
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{
				"session_id": client.SessionID,
				"user_id":    client.UserID,
			})
		}
	}
}

// Subscribe adds the client to a conversation room. Idempotent; joining
// twice is a no-op.
func (h *Hub) Subscribe(conversationID uuid.UUID, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[conversationID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[conversationID] = room
	}
	room[client] = true
	client.rooms[conversationID] = true
}

// Unsubscribe removes the client from a room. The last member leaving
// removes the room entry entirely.
func (h *Hub) Unsubscribe(conversationID uuid.UUID, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(conversationID, client)
	delete(client.rooms, conversationID)
}

func (h *Hub) removeLocked(conversationID uuid.UUID, client *Client) {
	room, ok := h.rooms[conversationID]
	if !ok {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, conversationID)
	}
}

// Broadcast fans a frame out to every room member except the session that
// produced it. A member whose send buffer is full is skipped; the message
// is already safe in the buffer, the slow client just misses the live copy.
func (h *Hub) Broadcast(conversationID uuid.UUID, payload []byte, excludeSessionID uuid.UUID) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[conversationID] {
		if client.SessionID == excludeSessionID {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			h.logger.Warn("Hub", "Send buffer full, dropping frame", map[string]interface{}{
				"session_id":      client.SessionID,
				"conversation_id": conversationID,
			})
		}
	}
}

// RoomSize reports the current membership of a room.
func (h *Hub) RoomSize(conversationID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[conversationID])
}

// NotifyClosed implements the lifecycle engine's room notifier: push
// CONVERSATION_CLOSED to everyone but the closer, then tear the room down.
// Connections stay open; only the subscription ends.
func (h *Hub) NotifyClosed(conversationID uuid.UUID, excludeSessionID uuid.UUID) {
	payload, err := json.Marshal(dto.OutboundEnvelope{
		Event: constant.EventConversationClosed,
		Data:  dto.ConversationClosedData{ConversationId: conversationID},
	})
	if err != nil {
		return
	}

	h.Broadcast(conversationID, payload, excludeSessionID)

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.rooms[conversationID] {
		delete(client.rooms, conversationID)
	}
	delete(h.rooms, conversationID)
}
