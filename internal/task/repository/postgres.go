package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/OmarHalima/workforce-console/internal/task/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a task repository backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const taskColumns = `id, project_id, title, description, assignee_id, created_by, status, priority, due_date, overdue, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (*domain.Task, error) {
	var t domain.Task
	var description, assigneeID sql.NullString
	var dueDate sql.NullTime
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &description, &assigneeID, &t.CreatedBy,
		&t.Status, &t.Priority, &dueDate, &t.Overdue, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Description = description.String
	t.AssigneeID = assigneeID.String
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	return &t, nil
}

// GetByID returns the task for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// ListByProject returns the project's tasks ordered by creation time; never nil.
func (r *PostgresRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 ORDER BY created_at`, projectID)
}

// ListByAssignee returns tasks assigned to the user ordered by creation time; never nil.
func (r *PostgresRepository) ListByAssignee(ctx context.Context, userID string) ([]*domain.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE assignee_id = $1 ORDER BY created_at`, userID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tasks := []*domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Create persists the task.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, project_id, title, description, assignee_id, created_by, status, priority, due_date, overdue, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID, t.ProjectID, t.Title,
		sql.NullString{String: t.Description, Valid: t.Description != ""},
		sql.NullString{String: t.AssigneeID, Valid: t.AssigneeID != ""},
		t.CreatedBy, t.Status, t.Priority, nullTime(t.DueDate), t.Overdue,
		t.CreatedAt, t.UpdatedAt)
	return err
}

// Update updates the task record. No-op when the task does not exist.
func (r *PostgresRepository) Update(ctx context.Context, t *domain.Task) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = $2, description = $3, assignee_id = $4, status = $5, priority = $6, due_date = $7, overdue = $8, updated_at = $9
		WHERE id = $1`,
		t.ID, t.Title,
		sql.NullString{String: t.Description, Valid: t.Description != ""},
		sql.NullString{String: t.AssigneeID, Valid: t.AssigneeID != ""},
		t.Status, t.Priority, nullTime(t.DueDate), t.Overdue, t.UpdatedAt)
	return err
}

// Delete removes the task. No-op when missing.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

// MarkOverdue flags open tasks whose due date has passed. Returns rows flagged.
func (r *PostgresRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET overdue = TRUE, updated_at = $1
		WHERE overdue = FALSE AND status <> 'done' AND due_date IS NOT NULL AND due_date < $1`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
