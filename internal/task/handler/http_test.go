package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	membershipdomain "github.com/OmarHalima/workforce-console/internal/membership/domain"
	"github.com/OmarHalima/workforce-console/internal/policy/engine"
	projectdomain "github.com/OmarHalima/workforce-console/internal/project/domain"
	"github.com/OmarHalima/workforce-console/internal/server/httpctx"
	"github.com/OmarHalima/workforce-console/internal/task/domain"
)

type memTaskRepo struct {
	mu    sync.Mutex
	tasks []*domain.Task
}

func (r *memTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		if t.ID == id {
			t2 := *t
			return &t2, nil
		}
	}
	return nil, nil
}

func (r *memTaskRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Task{}
	for _, t := range r.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTaskRepo) ListByAssignee(ctx context.Context, userID string) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Task{}
	for _, t := range r.tasks {
		if t.AssigneeID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, t)
	return nil
}

func (r *memTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.tasks {
		if existing.ID == t.ID {
			r.tasks[i] = t
		}
	}
	return nil
}

func (r *memTaskRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.tasks[:0]
	for _, t := range r.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	r.tasks = kept
	return nil
}

func (r *memTaskRepo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type stubProjects struct{ projects map[string]*projectdomain.Project }

func (s *stubProjects) GetByID(ctx context.Context, id string) (*projectdomain.Project, error) {
	if p, ok := s.projects[id]; ok {
		p2 := *p
		return &p2, nil
	}
	return nil, nil
}

func seedProjects() *stubProjects {
	return &stubProjects{projects: map[string]*projectdomain.Project{
		"p1": {ID: "p1", Name: "Alpha", OwnerID: "pm1", Members: []membershipdomain.ProjectMembership{
			{UserID: "u1", Role: membershipdomain.RoleMember},
		}},
		"p2": {ID: "p2", Name: "Beta", OwnerID: "other", Members: []membershipdomain.ProjectMembership{}},
	}}
}

func seedTasks() *memTaskRepo {
	return &memTaskRepo{tasks: []*domain.Task{
		{ID: "t1", ProjectID: "p1", Title: "Fix login", AssigneeID: "u1", CreatedBy: "pm1",
			Status: domain.TaskStatusTodo, Priority: domain.TaskPriorityHigh},
		{ID: "t2", ProjectID: "p1", Title: "Write docs", CreatedBy: "pm1",
			Status: domain.TaskStatusTodo, Priority: domain.TaskPriorityLow},
		{ID: "t3", ProjectID: "p2", Title: "Secret work", AssigneeID: "other", CreatedBy: "other",
			Status: domain.TaskStatusInProgress, Priority: domain.TaskPriorityMedium},
	}}
}

func taskRouter(tasks *memTaskRepo, projects *stubProjects, actorID, role string) *gin.Engine {
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
	NewHandler(tasks, projects, engine.NewOPAEvaluator(nil, zap.NewNop()), nil, zap.NewNop()).Register(g)
	return r
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
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

func TestListTasksByProject(t *testing.T) {
	r := taskRouter(seedTasks(), seedProjects(), "u1", "employee")

	w := do(r, http.MethodGet, "/api/v1/projects/p1/tasks", nil)
	var list []map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if w.Code != http.StatusOK || len(list) != 2 {
		t.Fatalf("status = %d, tasks = %d", w.Code, len(list))
	}

	// p2 is not visible to u1.
	if w := do(r, http.MethodGet, "/api/v1/projects/p2/tasks", nil); w.Code != http.StatusNotFound {
		t.Fatalf("hidden project: status = %d", w.Code)
	}
}

func TestListMine(t *testing.T) {
	r := taskRouter(seedTasks(), seedProjects(), "u1", "employee")

	w := do(r, http.MethodGet, "/api/v1/tasks/mine", nil)
	var list []map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list) != 1 || list[0]["id"] != "t1" {
		t.Fatalf("mine = %v", list)
	}
}

func TestGetTaskVisibility(t *testing.T) {
	r := taskRouter(seedTasks(), seedProjects(), "u1", "employee")

	if w := do(r, http.MethodGet, "/api/v1/tasks/t1", nil); w.Code != http.StatusOK {
		t.Fatalf("own project task: status = %d", w.Code)
	}
	// t3 sits in a hidden project.
	if w := do(r, http.MethodGet, "/api/v1/tasks/t3", nil); w.Code != http.StatusNotFound {
		t.Fatalf("hidden task: status = %d", w.Code)
	}
}

func TestCreateTask(t *testing.T) {
	tasks := seedTasks()
	projects := seedProjects()

	w := do(taskRouter(tasks, projects, "pm1", "project_manager"), http.MethodPost, "/api/v1/projects/p1/tasks",
		map[string]any{"title": "New task", "assigneeId": "u1", "dueDate": "2026-10-01"})
	if w.Code != http.StatusCreated {
		t.Fatalf("manager create: status = %d, body = %s", w.Code, w.Body.String())
	}
	var created map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created["createdBy"] != "pm1" || created["status"] != "todo" || created["priority"] != "medium" {
		t.Fatalf("created = %v", created)
	}

	// Employees may create tasks assigned to themselves.
	w = do(taskRouter(tasks, projects, "u1", "employee"), http.MethodPost, "/api/v1/projects/p1/tasks",
		map[string]any{"title": "Self task", "assigneeId": "u1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("self-assigned create: status = %d, body = %s", w.Code, w.Body.String())
	}

	// But not tasks for other people.
	w = do(taskRouter(tasks, projects, "u1", "employee"), http.MethodPost, "/api/v1/projects/p1/tasks",
		map[string]any{"title": "Delegated", "assigneeId": "pm1"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("delegated create: status = %d", w.Code)
	}
}

func TestUpdateTaskPolicy(t *testing.T) {
	tasks := seedTasks()
	projects := seedProjects()

	// Assignee updates their own task.
	r := taskRouter(tasks, projects, "u1", "employee")
	w := do(r, http.MethodPut, "/api/v1/tasks/t1", map[string]any{"status": "in_progress"})
	if w.Code != http.StatusOK {
		t.Fatalf("assignee update: status = %d, body = %s", w.Code, w.Body.String())
	}
	got, _ := tasks.GetByID(context.Background(), "t1")
	if got.Status != domain.TaskStatusInProgress {
		t.Fatalf("status = %q", got.Status)
	}

	// t2 is unassigned, so the employee rule does not apply.
	w = do(r, http.MethodPut, "/api/v1/tasks/t2", map[string]any{"status": "done"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("unassigned update: status = %d", w.Code)
	}

	// Managers on the project may.
	w = do(taskRouter(tasks, projects, "pm1", "project_manager"), http.MethodPut, "/api/v1/tasks/t2",
		map[string]any{"status": "done"})
	if w.Code != http.StatusOK {
		t.Fatalf("manager update: status = %d", w.Code)
	}
}

func TestUpdateDueDateResetsOverdue(t *testing.T) {
	tasks := seedTasks()
	tasks.tasks[0].Overdue = true
	r := taskRouter(tasks, seedProjects(), "pm1", "project_manager")

	w := do(r, http.MethodPut, "/api/v1/tasks/t1", map[string]any{"dueDate": "2027-01-01"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	got, _ := tasks.GetByID(context.Background(), "t1")
	if got.Overdue {
		t.Fatal("overdue flag survived a due date change")
	}
}

func TestDeleteTask(t *testing.T) {
	tasks := seedTasks()
	projects := seedProjects()

	// Employees cannot delete someone else's task.
	w := do(taskRouter(tasks, projects, "u1", "employee"), http.MethodDelete, "/api/v1/tasks/t2", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("employee delete: status = %d", w.Code)
	}

	w = do(taskRouter(tasks, projects, "admin1", "admin"), http.MethodDelete, "/api/v1/tasks/t2", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("admin delete: status = %d", w.Code)
	}
	if got, _ := tasks.GetByID(context.Background(), "t2"); got != nil {
		t.Fatal("task still present after delete")
	}
}
