package repository

import (
	"context"

	"github.com/OmarHalima/workforce-console/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	// SetStatus updates only the user's status (e.g. disable). No-op when the user does not exist.
	SetStatus(ctx context.Context, id string, status domain.UserStatus) error
}
