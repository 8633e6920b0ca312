package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/OmarHalima/workforce-console/internal/session/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the session for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, expires_at, revoked_at, last_seen_at, ip_address, refresh_jti, refresh_token_hash, created_at
		FROM sessions WHERE id = $1`, id)
	var s domain.Session
	var revokedAt, lastSeenAt sql.NullTime
	var ip, jti, hash sql.NullString
	err := row.Scan(&s.ID, &s.UserID, &s.ExpiresAt, &revokedAt, &lastSeenAt, &ip, &jti, &hash, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if revokedAt.Valid {
		s.RevokedAt = &revokedAt.Time
	}
	if lastSeenAt.Valid {
		s.LastSeenAt = &lastSeenAt.Time
	}
	s.IPAddress = ip.String
	s.RefreshJti = jti.String
	s.RefreshTokenHash = hash.String
	return &s, nil
}

// Create persists the session.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, expires_at, ip_address, refresh_jti, refresh_token_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.UserID, s.ExpiresAt,
		sql.NullString{String: s.IPAddress, Valid: s.IPAddress != ""},
		sql.NullString{String: s.RefreshJti, Valid: s.RefreshJti != ""},
		sql.NullString{String: s.RefreshTokenHash, Valid: s.RefreshTokenHash != ""},
		s.CreatedAt)
	return err
}

// Revoke marks the session revoked. No-op when already revoked or missing.
func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`,
		id, time.Now().UTC())
	return err
}

// RevokeAllByUser revokes every active session of the user (refresh reuse response).
func (r *PostgresRepository) RevokeAllByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = $2 WHERE user_id = $1 AND revoked_at IS NULL`,
		userID, time.Now().UTC())
	return err
}

// UpdateRefreshToken stores the rotated refresh token's jti and hash on the session.
func (r *PostgresRepository) UpdateRefreshToken(ctx context.Context, sessionID, jti, refreshTokenHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET refresh_jti = $2, refresh_token_hash = $3 WHERE id = $1`,
		sessionID, jti, refreshTokenHash)
	return err
}

// UpdateLastSeen records session activity.
func (r *PostgresRepository) UpdateLastSeen(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET last_seen_at = $2 WHERE id = $1`, id, at)
	return err
}

// DeleteExpiredBefore removes expired and revoked sessions. Returns rows deleted.
func (r *PostgresRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < $1 OR revoked_at IS NOT NULL`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
