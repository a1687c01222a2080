package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope is the wire format for every realtime frame, both directions:
// {"event": "...", "data": {...}}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// OutboundEnvelope mirrors Envelope with an already-built payload.
type OutboundEnvelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type JoinConversationData struct {
	ConversationId uuid.UUID `json:"conversationId"`
}

type SendMessageData struct {
	ConversationId uuid.UUID `json:"conversationId"`
	Content        string    `json:"content"`
}

type LeaveConversationData struct {
	ConversationId uuid.UUID `json:"conversationId"`
}

type CloseConversationData struct {
	ConversationId uuid.UUID `json:"conversationId"`
}

type JoinedConversationData struct {
	ConversationId uuid.UUID `json:"conversationId"`
	Status         string    `json:"status"`
}

type NewMessageData struct {
	ConversationId uuid.UUID `json:"conversationId"`
	SenderId       uuid.UUID `json:"senderId"`
	SenderRole     string    `json:"senderRole"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

type LeftConversationData struct {
	ConversationId uuid.UUID `json:"conversationId"`
}

type ConversationClosedData struct {
	ConversationId uuid.UUID `json:"conversationId"`
}

type ErrorData struct {
	Message string `json:"message"`
}
