package repository

import (
	"context"

	"github.com/OmarHalima/workforce-console/internal/knowledge/domain"
)

// Repository defines persistence for knowledge-base articles.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Article, error)
	// List returns all articles; never nil. Filtering by visibility is the
	// caller's concern.
	List(ctx context.Context) ([]*domain.Article, error)
	// ListByCategory returns articles in the category; never nil.
	ListByCategory(ctx context.Context, category string) ([]*domain.Article, error)
	Create(ctx context.Context, a *domain.Article) error
	Update(ctx context.Context, a *domain.Article) error
	Delete(ctx context.Context, id string) error
}
