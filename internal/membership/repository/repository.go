package repository

import (
	"context"

	"github.com/OmarHalima/workforce-console/internal/membership/domain"
)

// Repository defines persistence for project memberships.
type Repository interface {
	GetByProjectAndUser(ctx context.Context, projectID, userID string) (*domain.ProjectMembership, error)
	// ListByProject returns the project's memberships; never nil.
	ListByProject(ctx context.Context, projectID string) ([]domain.ProjectMembership, error)
	Create(ctx context.Context, m *domain.ProjectMembership) error
	DeleteByProjectAndUser(ctx context.Context, projectID, userID string) error
}
