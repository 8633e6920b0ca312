package repository

import (
	"context"
	"time"

	"github.com/OmarHalima/workforce-console/internal/session/domain"
)

// Repository defines persistence for sessions.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	Revoke(ctx context.Context, id string) error
	RevokeAllByUser(ctx context.Context, userID string) error
	// UpdateRefreshToken stores the rotated refresh token's jti and hash on the session.
	UpdateRefreshToken(ctx context.Context, sessionID, jti, refreshTokenHash string) error
	UpdateLastSeen(ctx context.Context, id string, at time.Time) error
	// DeleteExpiredBefore removes sessions whose expiry is before the cutoff,
	// and revoked sessions. Returns the number of rows deleted.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
