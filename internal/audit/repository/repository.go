package repository

import (
	"context"

	"github.com/OmarHalima/workforce-console/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	// List returns the most recent entries up to limit, newest first; never nil.
	List(ctx context.Context, limit int) ([]*domain.AuditLog, error)
	// ListByUser returns the user's most recent entries up to limit; never nil.
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error)
}
