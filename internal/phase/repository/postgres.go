package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/OmarHalima/workforce-console/internal/phase/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a phase repository backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const phaseColumns = `id, project_id, name, sequence, status, start_date, end_date, created_at, updated_at`

func scanPhase(row interface{ Scan(...any) error }) (*domain.ProjectPhase, error) {
	var p domain.ProjectPhase
	var startDate, endDate sql.NullTime
	err := row.Scan(&p.ID, &p.ProjectID, &p.Name, &p.Sequence, &p.Status,
		&startDate, &endDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if startDate.Valid {
		p.StartDate = &startDate.Time
	}
	if endDate.Valid {
		p.EndDate = &endDate.Time
	}
	return &p, nil
}

// GetByID returns the phase for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.ProjectPhase, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+phaseColumns+` FROM project_phases WHERE id = $1`, id)
	p, err := scanPhase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// ListByProject returns the project's phases ordered by sequence; never nil.
func (r *PostgresRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.ProjectPhase, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+phaseColumns+` FROM project_phases WHERE project_id = $1 ORDER BY sequence`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	phases := []*domain.ProjectPhase{}
	for rows.Next() {
		p, err := scanPhase(rows)
		if err != nil {
			return nil, err
		}
		phases = append(phases, p)
	}
	return phases, rows.Err()
}

// Create persists the phase. Fails on a duplicate (project, sequence) pair.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.ProjectPhase) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO project_phases (id, project_id, name, sequence, status, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.ProjectID, p.Name, p.Sequence, p.Status,
		nullTime(p.StartDate), nullTime(p.EndDate), p.CreatedAt, p.UpdatedAt)
	return err
}

// Update updates the phase record. No-op when the phase does not exist.
func (r *PostgresRepository) Update(ctx context.Context, p *domain.ProjectPhase) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE project_phases
		SET name = $2, sequence = $3, status = $4, start_date = $5, end_date = $6, updated_at = $7
		WHERE id = $1`,
		p.ID, p.Name, p.Sequence, p.Status, nullTime(p.StartDate), nullTime(p.EndDate), p.UpdatedAt)
	return err
}

// Delete removes the phase. No-op when missing.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM project_phases WHERE id = $1`, id)
	return err
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
