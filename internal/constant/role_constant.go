package constant

// Role names as they appear in JWT claims and route guards.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleAgent      = "agent"
	RoleCandidate  = "candidate"
)
