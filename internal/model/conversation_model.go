package model

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CandidateId  uuid.UUID  `gorm:"type:uuid;not null;index"`
	SupervisorId uuid.UUID  `gorm:"type:uuid;not null;index"`
	AgentId      *uuid.UUID `gorm:"type:uuid;index"`
	Status       string     `gorm:"type:text;not null;index"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}
