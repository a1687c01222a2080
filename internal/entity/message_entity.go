package entity

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single chat message. While a conversation is live it exists
// only inside the in-memory buffer; the whole buffer is bulk-inserted at
// close time, in arrival order, and the rows are immutable afterwards.
type Message struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	SenderId       uuid.UUID
	SenderRole     UserRole
	Content        string
	CreatedAt      time.Time
}
