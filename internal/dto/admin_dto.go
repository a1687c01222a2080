package dto

import "github.com/google/uuid"

type SupervisorAnalytics struct {
	SupervisorId         uuid.UUID `json:"supervisor_id"`
	SupervisorName       string    `json:"supervisor_name"`
	Agents               int       `json:"agents"`
	ConversationsHandled int64     `json:"conversations_handled"`
}
