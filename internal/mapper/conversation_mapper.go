package mapper

import (
	"time"

	"support-desk-be/internal/entity"
	"support-desk-be/internal/model"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

func (m *ConversationMapper) ToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Conversation{
		Id:           c.Id,
		CandidateId:  c.CandidateId,
		SupervisorId: c.SupervisorId,
		AgentId:      c.AgentId,
		Status:       entity.ConversationStatus(c.Status),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *ConversationMapper) ToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Conversation{
		Id:           c.Id,
		CandidateId:  c.CandidateId,
		SupervisorId: c.SupervisorId,
		AgentId:      c.AgentId,
		Status:       string(c.Status),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}
