package repository

import (
	"context"
	"time"

	"github.com/OmarHalima/workforce-console/internal/task/domain"
)

// Repository defines persistence for tasks.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	// ListByProject returns the project's tasks; never nil.
	ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error)
	// ListByAssignee returns tasks assigned to the user; never nil.
	ListByAssignee(ctx context.Context, userID string) ([]*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
	// MarkOverdue flags open tasks whose due date passed. Returns rows flagged.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}
