package repository

import (
	"context"

	"github.com/OmarHalima/workforce-console/internal/phase/domain"
)

// Repository defines persistence for project phases.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.ProjectPhase, error)
	// ListByProject returns the project's phases ordered by sequence; never nil.
	ListByProject(ctx context.Context, projectID string) ([]*domain.ProjectPhase, error)
	Create(ctx context.Context, p *domain.ProjectPhase) error
	Update(ctx context.Context, p *domain.ProjectPhase) error
	Delete(ctx context.Context, id string) error
}
