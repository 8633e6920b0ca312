// Package httpctx carries the authenticated identity through request contexts.
// The auth middleware sets it; handlers and services read it.
package httpctx

import "context"

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	roleKey      contextKey = "role"
	sessionIDKey contextKey = "session_id"
)

// WithIdentity returns a context carrying the authenticated user, role, and session.
func WithIdentity(ctx context.Context, userID, role, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, roleKey, role)
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// GetUserID returns the authenticated user id, if set.
func GetUserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok && v != ""
}

// GetRole returns the authenticated user's role, if set.
func GetRole(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(roleKey).(string)
	return v, ok && v != ""
}

// GetSessionID returns the session id, if set.
func GetSessionID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionIDKey).(string)
	return v, ok && v != ""
}
