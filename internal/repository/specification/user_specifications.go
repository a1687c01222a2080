package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"support-desk-be/internal/entity"
)

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

type ByRole struct {
	Role entity.UserRole
}

func (s ByRole) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("role = ?", string(s.Role))
}

// OwnedBySupervisor filters agents belonging to a supervisor.
type OwnedBySupervisor struct {
	SupervisorID uuid.UUID
}

func (s OwnedBySupervisor) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("supervisor_id = ?", s.SupervisorID)
}
