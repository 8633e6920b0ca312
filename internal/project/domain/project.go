package domain

import (
	"errors"
	"time"

	membershipdomain "github.com/OmarHalima/workforce-console/internal/membership/domain"
)

// Project is a unit of work with one owner, an optional manager, and a
// membership list. Members is always non-nil after repository load; the owner
// and manager need not appear in it but are treated as associated.
type Project struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	ManagerID   string // empty when no manager assigned
	Status      ProjectStatus
	StartDate   *time.Time
	EndDate     *time.Time
	Members     []membershipdomain.ProjectMembership
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "planning"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
)

// Validate validates the project for persistence.
func (p *Project) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.OwnerID == "" {
		return errors.New("owner is required")
	}
	if p.Status == "" {
		p.Status = ProjectStatusPlanning
	}
	if p.Members == nil {
		p.Members = []membershipdomain.ProjectMembership{}
	}
	return nil
}

// AssociatedWith reports whether the given user is the project's owner,
// manager, or an explicit member.
func (p *Project) AssociatedWith(userID string) bool {
	if userID == "" {
		return false
	}
	if p.OwnerID == userID || p.ManagerID == userID {
		return true
	}
	for _, m := range p.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
