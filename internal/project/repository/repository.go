package repository

import (
	"context"

	"github.com/OmarHalima/workforce-console/internal/project/domain"
)

// Repository defines persistence for projects. Loaded projects always carry a
// non-nil membership list so the visibility resolver stays total.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	// List returns all projects, each with its membership list joined.
	List(ctx context.Context) ([]*domain.Project, error)
	Create(ctx context.Context, p *domain.Project) error
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
}
