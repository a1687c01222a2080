package events

import (
	"time"

	"github.com/google/uuid"
)

// Conversation lifecycle events published to the bus. One event per
// forward transition of the state machine, plus creation.

type ConversationCreated struct {
	ConversationId uuid.UUID
	CandidateId    uuid.UUID
	SupervisorId   uuid.UUID
	OccurredAt     time.Time
}

func (e ConversationCreated) EventType() string { return "CONVERSATION_CREATED" }

func (e ConversationCreated) Payload() map[string]interface{} {
	return map[string]interface{}{
		"conversation_id": e.ConversationId.String(),
		"candidate_id":    e.CandidateId.String(),
		"supervisor_id":   e.SupervisorId.String(),
	}
}

func (e ConversationCreated) Timestamp() time.Time { return e.OccurredAt }

type AgentAssigned struct {
	ConversationId uuid.UUID
	AgentId        uuid.UUID
	SupervisorId   uuid.UUID
	OccurredAt     time.Time
}

func (e AgentAssigned) EventType() string { return "AGENT_ASSIGNED" }

func (e AgentAssigned) Payload() map[string]interface{} {
	return map[string]interface{}{
		"conversation_id": e.ConversationId.String(),
		"agent_id":        e.AgentId.String(),
		"supervisor_id":   e.SupervisorId.String(),
	}
}

func (e AgentAssigned) Timestamp() time.Time { return e.OccurredAt }

type ConversationActivated struct {
	ConversationId uuid.UUID
	AgentId        uuid.UUID
	OccurredAt     time.Time
}

func (e ConversationActivated) EventType() string { return "CONVERSATION_ACTIVATED" }

func (e ConversationActivated) Payload() map[string]interface{} {
	return map[string]interface{}{
		"conversation_id": e.ConversationId.String(),
		"agent_id":        e.AgentId.String(),
	}
}

func (e ConversationActivated) Timestamp() time.Time { return e.OccurredAt }

type ConversationClosed struct {
	ConversationId uuid.UUID
	ClosedBy       uuid.UUID
	ClosedByRole   string
	MessageCount   int
	OccurredAt     time.Time
}

func (e ConversationClosed) EventType() string { return "CONVERSATION_CLOSED" }

func (e ConversationClosed) Payload() map[string]interface{} {
	return map[string]interface{}{
		"conversation_id": e.ConversationId.String(),
		"closed_by":       e.ClosedBy.String(),
		"closed_by_role":  e.ClosedByRole,
		"message_count":   e.MessageCount,
	}
}

func (e ConversationClosed) Timestamp() time.Time { return e.OccurredAt }
