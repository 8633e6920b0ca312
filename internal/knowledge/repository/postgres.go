package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/OmarHalima/workforce-console/internal/knowledge/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an article repository backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const articleColumns = `id, title, content, category, author_id, status, created_at, updated_at`

func scanArticle(row interface{ Scan(...any) error }) (*domain.Article, error) {
	var a domain.Article
	var category sql.NullString
	err := row.Scan(&a.ID, &a.Title, &a.Content, &category, &a.AuthorID, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Category = category.String
	return &a, nil
}

// GetByID returns the article for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM knowledge_articles WHERE id = $1`, id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// List returns all articles ordered newest first; never nil.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Article, error) {
	return r.list(ctx, `SELECT `+articleColumns+` FROM knowledge_articles ORDER BY created_at DESC`)
}

// ListByCategory returns articles in the category ordered newest first; never nil.
func (r *PostgresRepository) ListByCategory(ctx context.Context, category string) ([]*domain.Article, error) {
	return r.list(ctx, `SELECT `+articleColumns+` FROM knowledge_articles WHERE category = $1 ORDER BY created_at DESC`, category)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Article, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	articles := []*domain.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// Create persists the article.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Article) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO knowledge_articles (id, title, content, category, author_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.Title, a.Content,
		sql.NullString{String: a.Category, Valid: a.Category != ""},
		a.AuthorID, a.Status, a.CreatedAt, a.UpdatedAt)
	return err
}

// Update updates the article record. No-op when the article does not exist.
func (r *PostgresRepository) Update(ctx context.Context, a *domain.Article) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE knowledge_articles
		SET title = $2, content = $3, category = $4, status = $5, updated_at = $6
		WHERE id = $1`,
		a.ID, a.Title, a.Content,
		sql.NullString{String: a.Category, Valid: a.Category != ""},
		a.Status, a.UpdatedAt)
	return err
}

// Delete removes the article. No-op when missing.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM knowledge_articles WHERE id = $1`, id)
	return err
}
