package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleAdmin      UserRole = "admin"
	UserRoleSupervisor UserRole = "supervisor"
	UserRoleAgent      UserRole = "agent"
	UserRoleCandidate  UserRole = "candidate"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleSupervisor, UserRoleAgent, UserRoleCandidate:
		return true
	}
	return false
}

type User struct {
	Id           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	// SupervisorId is set only for agents and references the supervisor
	// that owns them.
	SupervisorId *uuid.UUID
	CreatedAt    time.Time
}
