package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	membershipdomain "github.com/OmarHalima/workforce-console/internal/membership/domain"
	projectdomain "github.com/OmarHalima/workforce-console/internal/project/domain"
	"github.com/OmarHalima/workforce-console/internal/server/httpctx"
	"github.com/OmarHalima/workforce-console/internal/user/domain"
)

type memUserRepo struct {
	mu    sync.Mutex
	users []*domain.User
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			u2 := *u
			return &u2, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.User{}, r.users...), nil
}

func (r *memUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, u)
	return nil
}

func (r *memUserRepo) Update(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.users {
		if existing.ID == u.ID {
			r.users[i] = u
		}
	}
	return nil
}

func (r *memUserRepo) SetStatus(ctx context.Context, id string, status domain.UserStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			u.Status = status
		}
	}
	return nil
}

type stubProjects struct {
	projects []*projectdomain.Project
}

func (s *stubProjects) List(ctx context.Context) ([]*projectdomain.Project, error) {
	return s.projects, nil
}

func userRouter(users *memUserRepo, projects *stubProjects, actorID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	identity := func(c *gin.Context) {
		if actorID != "" {
			ctx := httpctx.WithIdentity(c.Request.Context(), actorID, role, "sess-1")
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
	g := r.Group("/api/v1", identity)
	NewHandler(users, projects).Register(g)
	return r
}

func seedUsers() *memUserRepo {
	return &memUserRepo{users: []*domain.User{
		{ID: "admin1", Email: "admin@example.com", Role: domain.RoleAdmin, Status: domain.UserStatusActive},
		{ID: "pm1", Email: "pm@example.com", Role: domain.RoleProjectManager, Status: domain.UserStatusActive},
		{ID: "u1", Email: "u1@example.com", Role: domain.RoleEmployee, Status: domain.UserStatusActive},
		{ID: "u2", Email: "u2@example.com", Role: domain.RoleEmployee, Status: domain.UserStatusActive},
	}}
}

func seedProjects() *stubProjects {
	return &stubProjects{projects: []*projectdomain.Project{
		{ID: "p1", OwnerID: "pm1", Members: []membershipdomain.ProjectMembership{
			{UserID: "u1", Role: membershipdomain.RoleMember},
		}},
	}}
}

func request(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListUsersScopedByRole(t *testing.T) {
	users := seedUsers()
	projects := seedProjects()

	w := request(userRouter(users, projects, "admin1", "admin"), http.MethodGet, "/api/v1/users", nil)
	var adminList []map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &adminList)
	if len(adminList) != 4 {
		t.Fatalf("admin list = %d users", len(adminList))
	}

	w = request(userRouter(users, projects, "u1", "employee"), http.MethodGet, "/api/v1/users", nil)
	var employeeList []map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &employeeList)
	// u1's team on p1: pm1 (owner) and u1.
	if len(employeeList) != 2 {
		t.Fatalf("employee list = %d users: %v", len(employeeList), employeeList)
	}
}

func TestGetUserVisibility(t *testing.T) {
	users := seedUsers()
	projects := seedProjects()
	r := userRouter(users, projects, "u1", "employee")

	if w := request(r, http.MethodGet, "/api/v1/users/pm1", nil); w.Code != http.StatusOK {
		t.Fatalf("teammate: status = %d", w.Code)
	}
	if w := request(r, http.MethodGet, "/api/v1/users/u1", nil); w.Code != http.StatusOK {
		t.Fatalf("self: status = %d", w.Code)
	}
	// u2 is outside u1's team: hidden, indistinguishable from absent.
	if w := request(r, http.MethodGet, "/api/v1/users/u2", nil); w.Code != http.StatusNotFound {
		t.Fatalf("outsider: status = %d", w.Code)
	}
	if w := request(r, http.MethodGet, "/api/v1/users/nope", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing: status = %d", w.Code)
	}
}

func TestGetUserManagerSeesNonTeamPool(t *testing.T) {
	users := seedUsers()
	projects := seedProjects()
	r := userRouter(users, projects, "pm1", "project_manager")

	// u2 is in pm1's OtherUsers pool.
	if w := request(r, http.MethodGet, "/api/v1/users/u2", nil); w.Code != http.StatusOK {
		t.Fatalf("other user: status = %d", w.Code)
	}
	// Admins are never exposed through the pool.
	if w := request(r, http.MethodGet, "/api/v1/users/admin1", nil); w.Code != http.StatusNotFound {
		t.Fatalf("admin: status = %d", w.Code)
	}
}

func TestCreateUserAdminOnly(t *testing.T) {
	users := seedUsers()
	projects := seedProjects()

	body := map[string]string{"email": "new@example.com", "name": "New", "role": "employee"}
	w := request(userRouter(users, projects, "pm1", "project_manager"), http.MethodPost, "/api/v1/users", body)
	if w.Code != http.StatusForbidden {
		t.Fatalf("manager create: status = %d", w.Code)
	}

	w = request(userRouter(users, projects, "admin1", "admin"), http.MethodPost, "/api/v1/users", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin create: status = %d, body = %s", w.Code, w.Body.String())
	}
	created, _ := users.GetByEmail(context.Background(), "new@example.com")
	if created == nil || created.Status != domain.UserStatusPending {
		t.Fatalf("created = %+v", created)
	}

	w = request(userRouter(users, projects, "admin1", "admin"), http.MethodPost, "/api/v1/users", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate: status = %d", w.Code)
	}
}

func TestUpdateUserRole(t *testing.T) {
	users := seedUsers()
	r := userRouter(users, seedProjects(), "admin1", "admin")

	role := "project_manager"
	w := request(r, http.MethodPut, "/api/v1/users/u1", map[string]any{"role": role})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	u, _ := users.GetByID(context.Background(), "u1")
	if u.Role != domain.RoleProjectManager {
		t.Fatalf("role = %q", u.Role)
	}

	w = request(r, http.MethodPut, "/api/v1/users/u1", map[string]any{"role": "superuser"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad role: status = %d", w.Code)
	}
}

func TestUpdateUserByManager(t *testing.T) {
	users := seedUsers()
	r := userRouter(users, seedProjects(), "pm1", "project_manager")

	name := "Renamed"
	w := request(r, http.MethodPut, "/api/v1/users/u1", map[string]any{"name": name, "department": "QA"})
	if w.Code != http.StatusOK {
		t.Fatalf("manager updates employee: status = %d, body = %s", w.Code, w.Body.String())
	}
	u, _ := users.GetByID(context.Background(), "u1")
	if u.Name != name || u.Department != "QA" {
		t.Fatalf("updated = %+v", u)
	}

	// Admin accounts are outside a manager's reach.
	if w := request(r, http.MethodPut, "/api/v1/users/admin1", map[string]any{"name": "X"}); w.Code != http.StatusForbidden {
		t.Fatalf("manager targets admin: status = %d", w.Code)
	}
	// Nor may a manager mint admins.
	if w := request(r, http.MethodPut, "/api/v1/users/u1", map[string]any{"role": "admin"}); w.Code != http.StatusForbidden {
		t.Fatalf("manager grants admin: status = %d", w.Code)
	}

	if w := request(userRouter(users, seedProjects(), "u2", "employee"), http.MethodPut, "/api/v1/users/u1", map[string]any{"name": "X"}); w.Code != http.StatusForbidden {
		t.Fatalf("employee update: status = %d", w.Code)
	}
}

func TestDisableEnableUser(t *testing.T) {
	users := seedUsers()
	r := userRouter(users, seedProjects(), "admin1", "admin")

	if w := request(r, http.MethodPost, "/api/v1/users/u1/disable", nil); w.Code != http.StatusNoContent {
		t.Fatalf("disable: status = %d", w.Code)
	}
	u, _ := users.GetByID(context.Background(), "u1")
	if u.Status != domain.UserStatusDisabled {
		t.Fatalf("status = %q", u.Status)
	}

	if w := request(r, http.MethodPost, "/api/v1/users/u1/enable", nil); w.Code != http.StatusNoContent {
		t.Fatalf("enable: status = %d", w.Code)
	}
	u, _ = users.GetByID(context.Background(), "u1")
	if u.Status != domain.UserStatusActive {
		t.Fatalf("status = %q", u.Status)
	}

	if w := request(r, http.MethodPost, "/api/v1/users/admin1/disable", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("self-disable: status = %d", w.Code)
	}
}
