package entity

import (
	"time"

	"github.com/google/uuid"
)

type ConversationStatus string

const (
	ConversationStatusOpen     ConversationStatus = "open"
	ConversationStatusAssigned ConversationStatus = "assigned"
	ConversationStatusClosed   ConversationStatus = "closed"
)

// Conversation is the persisted lifecycle record. Status only ever moves
// forward: open -> assigned -> closed. CandidateId and SupervisorId are
// fixed at creation; AgentId is nil until a supervisor assigns one.
type Conversation struct {
	Id           uuid.UUID
	CandidateId  uuid.UUID
	SupervisorId uuid.UUID
	AgentId      *uuid.UUID
	Status       ConversationStatus
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
