package repository

import (
	"context"

	"github.com/OmarHalima/workforce-console/internal/policy/domain"
)

// Repository defines persistence for action policies.
type Repository interface {
	// GetByName returns the policy with the given name, or nil if not found.
	GetByName(ctx context.Context, name string) (*domain.ActionPolicy, error)
	// Upsert inserts the policy or replaces its Rego source by name.
	Upsert(ctx context.Context, p *domain.ActionPolicy) error
}
