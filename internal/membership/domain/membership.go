package domain

import "time"

// ProjectMembership links a user to a project with a per-project role.
// The same user may be a member in one project and a manager in another.
type ProjectMembership struct {
	ID        string
	ProjectID string
	UserID    string
	Role      Role
	CreatedAt time.Time
}

type Role string

const (
	RoleMember  Role = "member"
	RoleManager Role = "manager"
)
