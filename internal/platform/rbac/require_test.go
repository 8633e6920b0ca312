package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/OmarHalima/workforce-console/internal/server/httpctx"
	userdomain "github.com/OmarHalima/workforce-console/internal/user/domain"
)

func ctxWithRole(role string) context.Context {
	return httpctx.WithIdentity(context.Background(), "user-1", role, "sess-1")
}

func TestRequireActor(t *testing.T) {
	userID, role, err := RequireActor(ctxWithRole("employee"))
	if err != nil {
		t.Fatalf("RequireActor: %v", err)
	}
	if userID != "user-1" || role != userdomain.RoleEmployee {
		t.Fatalf("got %q/%q", userID, role)
	}

	if _, _, err := RequireActor(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("empty context: err = %v", err)
	}
	if _, _, err := RequireActor(ctxWithRole("superuser")); !errors.Is(err, ErrForbidden) {
		t.Fatalf("unknown role: err = %v", err)
	}
}

func TestRequireAdmin(t *testing.T) {
	if _, err := RequireAdmin(ctxWithRole("admin")); err != nil {
		t.Fatalf("admin: %v", err)
	}
	for _, role := range []string{"project_manager", "employee"} {
		if _, err := RequireAdmin(ctxWithRole(role)); !errors.Is(err, ErrForbidden) {
			t.Errorf("role %q: err = %v, want ErrForbidden", role, err)
		}
	}
	if _, err := RequireAdmin(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("empty context: err = %v", err)
	}
}

func TestRequireManager(t *testing.T) {
	for _, role := range []string{"admin", "project_manager"} {
		if _, _, err := RequireManager(ctxWithRole(role)); err != nil {
			t.Errorf("role %q: %v", role, err)
		}
	}
	if _, _, err := RequireManager(ctxWithRole("employee")); !errors.Is(err, ErrForbidden) {
		t.Fatalf("employee: err = %v, want ErrForbidden", err)
	}
}
