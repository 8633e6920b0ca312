package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/OmarHalima/workforce-console/internal/membership/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a membership repository backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByProjectAndUser returns the membership for the pair, or nil if not found.
func (r *PostgresRepository) GetByProjectAndUser(ctx context.Context, projectID, userID string) (*domain.ProjectMembership, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, project_id, user_id, role, created_at
		FROM project_memberships WHERE project_id = $1 AND user_id = $2`, projectID, userID)
	var m domain.ProjectMembership
	err := row.Scan(&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByProject returns the project's memberships ordered by creation time; never nil.
func (r *PostgresRepository) ListByProject(ctx context.Context, projectID string) ([]domain.ProjectMembership, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, user_id, role, created_at
		FROM project_memberships WHERE project_id = $1 ORDER BY created_at`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := []domain.ProjectMembership{}
	for rows.Next() {
		var m domain.ProjectMembership
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// Create persists the membership.
func (r *PostgresRepository) Create(ctx context.Context, m *domain.ProjectMembership) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO project_memberships (id, project_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.ProjectID, m.UserID, m.Role, m.CreatedAt)
	return err
}

// DeleteByProjectAndUser removes the membership. No-op when missing.
func (r *PostgresRepository) DeleteByProjectAndUser(ctx context.Context, projectID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM project_memberships WHERE project_id = $1 AND user_id = $2`, projectID, userID)
	return err
}
