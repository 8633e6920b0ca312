package repository

import (
	"context"

	"github.com/OmarHalima/workforce-console/internal/identity/domain"
)

// Repository defines persistence for linked identities.
type Repository interface {
	GetByUserAndProvider(ctx context.Context, userID string, provider domain.IdentityProvider) (*domain.Identity, error)
	Create(ctx context.Context, i *domain.Identity) error
}
