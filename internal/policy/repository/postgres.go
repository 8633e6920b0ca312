package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/OmarHalima/workforce-console/internal/policy/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a policy repository backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByName returns the policy with the given name, or nil if not found.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*domain.ActionPolicy, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, rego, updated_by, created_at, updated_at
		FROM action_policies WHERE name = $1`, name)
	var p domain.ActionPolicy
	var updatedBy sql.NullString
	err := row.Scan(&p.ID, &p.Name, &p.Rego, &updatedBy, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.UpdatedBy = updatedBy.String
	return &p, nil
}

// Upsert inserts the policy or replaces its Rego source by name.
func (r *PostgresRepository) Upsert(ctx context.Context, p *domain.ActionPolicy) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO action_policies (id, name, rego, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE
		SET rego = EXCLUDED.rego, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`,
		p.ID, p.Name, p.Rego,
		sql.NullString{String: p.UpdatedBy, Valid: p.UpdatedBy != ""},
		p.CreatedAt, p.UpdatedAt)
	return err
}
