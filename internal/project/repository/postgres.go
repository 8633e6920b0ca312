package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	membershipdomain "github.com/OmarHalima/workforce-console/internal/membership/domain"
	"github.com/OmarHalima/workforce-console/internal/project/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a project repository backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const projectColumns = `id, name, description, owner_id, manager_id, status, start_date, end_date, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (*domain.Project, error) {
	var p domain.Project
	var description, managerID sql.NullString
	var startDate, endDate sql.NullTime
	err := row.Scan(&p.ID, &p.Name, &description, &p.OwnerID, &managerID, &p.Status,
		&startDate, &endDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Description = description.String
	p.ManagerID = managerID.String
	if startDate.Valid {
		p.StartDate = &startDate.Time
	}
	if endDate.Valid {
		p.EndDate = &endDate.Time
	}
	p.Members = []membershipdomain.ProjectMembership{}
	return &p, nil
}

// GetByID returns the project with its membership list, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, user_id, role, created_at
		FROM project_memberships WHERE project_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m membershipdomain.ProjectMembership
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		p.Members = append(p.Members, m)
	}
	return p, rows.Err()
}

// List returns all projects ordered by creation time, with membership lists
// joined in a second query to avoid per-project round trips.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []*domain.Project{}
	byID := map[string]*domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	memberRows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, user_id, role, created_at
		FROM project_memberships ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer memberRows.Close()
	for memberRows.Next() {
		var m membershipdomain.ProjectMembership
		if err := memberRows.Scan(&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		if p, ok := byID[m.ProjectID]; ok {
			p.Members = append(p.Members, m)
		}
	}
	return projects, memberRows.Err()
}

// Create persists the project. Memberships are managed separately.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, owner_id, manager_id, status, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.Name,
		sql.NullString{String: p.Description, Valid: p.Description != ""},
		p.OwnerID,
		sql.NullString{String: p.ManagerID, Valid: p.ManagerID != ""},
		p.Status, nullTime(p.StartDate), nullTime(p.EndDate),
		p.CreatedAt, p.UpdatedAt)
	return err
}

// Update updates the project record. No-op when the project does not exist.
func (r *PostgresRepository) Update(ctx context.Context, p *domain.Project) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE projects
		SET name = $2, description = $3, manager_id = $4, status = $5, start_date = $6, end_date = $7, updated_at = $8
		WHERE id = $1`,
		p.ID, p.Name,
		sql.NullString{String: p.Description, Valid: p.Description != ""},
		sql.NullString{String: p.ManagerID, Valid: p.ManagerID != ""},
		p.Status, nullTime(p.StartDate), nullTime(p.EndDate), p.UpdatedAt)
	return err
}

// Delete removes the project; memberships, tasks, and phases cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
