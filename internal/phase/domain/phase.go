package domain

import (
	"errors"
	"time"
)

// ProjectPhase is one step of a project plan. Phases are ordered by Sequence
// within their project; the sequence is unique per project.
type ProjectPhase struct {
	ID        string
	ProjectID string
	Name      string
	Sequence  int
	Status    PhaseStatus
	StartDate *time.Time
	EndDate   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PhaseStatus string

const (
	PhaseStatusPending    PhaseStatus = "pending"
	PhaseStatusInProgress PhaseStatus = "in_progress"
	PhaseStatusCompleted  PhaseStatus = "completed"
)

// Validate validates the phase for persistence.
func (p *ProjectPhase) Validate() error {
	if p.ProjectID == "" {
		return errors.New("project is required")
	}
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.Sequence < 0 {
		return errors.New("sequence must be non-negative")
	}
	if p.Status == "" {
		p.Status = PhaseStatusPending
	}
	return nil
}
