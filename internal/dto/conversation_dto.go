package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateConversationRequest struct {
	SupervisorId uuid.UUID `json:"supervisor_id" validate:"required"`
}

type CreateConversationResponse struct {
	Id           uuid.UUID `json:"id"`
	Status       string    `json:"status"`
	SupervisorId uuid.UUID `json:"supervisor_id"`
}

type AssignAgentRequest struct {
	AgentId uuid.UUID `json:"agent_id" validate:"required"`
}

type AssignAgentResponse struct {
	ConversationId uuid.UUID `json:"conversation_id"`
	AgentId        uuid.UUID `json:"agent_id"`
	SupervisorId   uuid.UUID `json:"supervisor_id"`
}

type CloseConversationResponse struct {
	ConversationId uuid.UUID `json:"conversation_id"`
	Status         string    `json:"status"`
}

type MessageView struct {
	SenderId   uuid.UUID `json:"sender_id"`
	SenderRole string    `json:"sender_role"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type ConversationDetailResponse struct {
	Id           uuid.UUID     `json:"id"`
	Status       string        `json:"status"`
	CandidateId  uuid.UUID     `json:"candidate_id"`
	SupervisorId uuid.UUID     `json:"supervisor_id"`
	AgentId      *uuid.UUID    `json:"agent_id"`
	CreatedAt    time.Time     `json:"created_at"`
	Messages     []MessageView `json:"messages"`
}
