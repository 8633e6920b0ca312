// Package rbac enforces console-wide role checks on top of the identity the
// auth middleware put in the request context.
package rbac

import (
	"context"
	"errors"

	"github.com/OmarHalima/workforce-console/internal/server/httpctx"
	userdomain "github.com/OmarHalima/workforce-console/internal/user/domain"
)

// Sentinel errors; handlers map them to 401 and 403.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient role")
)

// RequireActor ensures the caller is authenticated and carries a known role.
// Returns (userID, role, nil) on success.
func RequireActor(ctx context.Context) (string, userdomain.Role, error) {
	userID, okUser := httpctx.GetUserID(ctx)
	roleStr, okRole := httpctx.GetRole(ctx)
	if !okUser || !okRole {
		return "", "", ErrUnauthenticated
	}
	role := userdomain.Role(roleStr)
	if !role.Valid() {
		return "", "", ErrForbidden
	}
	return userID, role, nil
}

// RequireAdmin ensures the caller is an admin. Returns the caller's user id.
func RequireAdmin(ctx context.Context) (string, error) {
	userID, role, err := RequireActor(ctx)
	if err != nil {
		return "", err
	}
	if role != userdomain.RoleAdmin {
		return "", ErrForbidden
	}
	return userID, nil
}

// RequireManager ensures the caller is an admin or a project manager.
// Returns (userID, role, nil) on success.
func RequireManager(ctx context.Context) (string, userdomain.Role, error) {
	userID, role, err := RequireActor(ctx)
	if err != nil {
		return "", "", err
	}
	if role != userdomain.RoleAdmin && role != userdomain.RoleProjectManager {
		return "", "", ErrForbidden
	}
	return userID, role, nil
}
