package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"support-desk-be/internal/entity"
)

type ByCandidateID struct {
	CandidateID uuid.UUID
}

func (s ByCandidateID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("candidate_id = ?", s.CandidateID)
}

type ByConversationID struct {
	ConversationID uuid.UUID
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

type ByStatus struct {
	Status entity.ConversationStatus
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

// ByStatuses filters conversations in any of the given states. Used with
// the open/assigned pair to find a candidate's active conversation.
type ByStatuses struct {
	Statuses []entity.ConversationStatus
}

func (s ByStatuses) Apply(db *gorm.DB) *gorm.DB {
	values := make([]string, len(s.Statuses))
	for i, st := range s.Statuses {
		values[i] = string(st)
	}
	return db.Where("status IN ?", values)
}

type ByAgentIDs struct {
	AgentIDs []uuid.UUID
}

func (s ByAgentIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("agent_id IN ?", s.AgentIDs)
}
