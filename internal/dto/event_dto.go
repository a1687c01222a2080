package dto

import (
	"time"

	"github.com/google/uuid"
)

// ConversationClosedMessage is the payload carried over the in-process bus
// from the lifecycle engine to the consumer that relays it to NATS.
type ConversationClosedMessage struct {
	ConversationId uuid.UUID `json:"conversation_id"`
	ClosedBy       uuid.UUID `json:"closed_by"`
	ClosedByRole   string    `json:"closed_by_role"`
	MessageCount   int       `json:"message_count"`
	OccurredAt     time.Time `json:"occurred_at"`
}
