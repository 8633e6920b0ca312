package repository

import (
	"context"
	"database/sql"

	"github.com/OmarHalima/workforce-console/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit repository backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the audit log entry.
func (r *PostgresRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, user_id, action, resource, ip, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		log.ID, log.UserID, log.Action, log.Resource,
		sql.NullString{String: log.IP, Valid: log.IP != ""},
		sql.NullString{String: log.Metadata, Valid: log.Metadata != ""},
		log.CreatedAt)
	return err
}

// List returns the most recent entries up to limit, newest first; never nil.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	return r.list(ctx, `
		SELECT id, user_id, action, resource, ip, metadata, created_at
		FROM audit_logs ORDER BY created_at DESC LIMIT $1`, limit)
}

// ListByUser returns the user's most recent entries up to limit; never nil.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	return r.list(ctx, `
		SELECT id, user_id, action, resource, ip, metadata, created_at
		FROM audit_logs WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	logs := []*domain.AuditLog{}
	for rows.Next() {
		var l domain.AuditLog
		var ip, metadata sql.NullString
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.Resource, &ip, &metadata, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.IP = ip.String
		l.Metadata = metadata.String
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
