// Package handler exposes task CRUD over HTTP. Tasks live inside projects and
// inherit the project's visibility; mutations are authorized through the
// workspace action policy, which lets assignees update their own tasks.
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/OmarHalima/workforce-console/internal/activity"
	activitydomain "github.com/OmarHalima/workforce-console/internal/activity/domain"
	"github.com/OmarHalima/workforce-console/internal/platform/rbac"
	"github.com/OmarHalima/workforce-console/internal/policy/engine"
	projectdomain "github.com/OmarHalima/workforce-console/internal/project/domain"
	"github.com/OmarHalima/workforce-console/internal/server/httperr"
	"github.com/OmarHalima/workforce-console/internal/task/domain"
	taskrepo "github.com/OmarHalima/workforce-console/internal/task/repository"
	userdomain "github.com/OmarHalima/workforce-console/internal/user/domain"
)

// ProjectGetter loads the enclosing project for visibility and policy checks.
type ProjectGetter interface {
	GetByID(ctx context.Context, id string) (*projectdomain.Project, error)
}

// Handler serves the task routes.
type Handler struct {
	tasks    taskrepo.Repository
	projects ProjectGetter
	policy   engine.Evaluator
	events   activity.EventEmitter
	log      *zap.Logger
}

// NewHandler returns a task handler. events may be nil.
func NewHandler(tasks taskrepo.Repository, projects ProjectGetter, policy engine.Evaluator, events activity.EventEmitter, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{tasks: tasks, projects: projects, policy: policy, events: events, log: log}
}

// Register mounts the task routes on the authenticated group.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.GET("/projects/:id/tasks", h.ListByProject)
	g.POST("/projects/:id/tasks", h.Create)
	tasks := g.Group("/tasks")
	tasks.GET("/mine", h.ListMine)
	tasks.GET("/:id", h.Get)
	tasks.PUT("/:id", h.Update)
	tasks.DELETE("/:id", h.Delete)
}

type createTaskRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	AssigneeID  string  `json:"assigneeId"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	AssigneeID  *string `json:"assigneeId"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

type taskResponse struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"projectId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	AssigneeID  string  `json:"assigneeId,omitempty"`
	CreatedBy   string  `json:"createdBy"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate,omitempty"`
	Overdue     bool    `json:"overdue"`
}

// ListByProject returns the tasks of a project visible to the caller.
func (h *Handler) ListByProject(c *gin.Context) {
	ctx := c.Request.Context()
	p, ok := h.loadVisibleProject(c, strings.TrimSpace(c.Param("id")))
	if !ok {
		return
	}
	tasks, err := h.tasks.ListByProject(ctx, p.ID)
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to load tasks")
		return
	}
	c.JSON(http.StatusOK, toWire(tasks))
}

// ListMine returns the caller's assigned tasks across all projects.
func (h *Handler) ListMine(c *gin.Context) {
	ctx := c.Request.Context()
	userID, _, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	tasks, err := h.tasks.ListByAssignee(ctx, userID)
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to load tasks")
		return
	}
	c.JSON(http.StatusOK, toWire(tasks))
}

// Get returns one task when its project is visible to the caller.
func (h *Handler) Get(c *gin.Context) {
	t, _, ok := h.loadVisibleTask(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, taskToWire(t))
}

// Create adds a task to a visible project.
func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	userID, role, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	p, ok := h.loadVisibleProject(c, strings.TrimSpace(c.Param("id")))
	if !ok {
		return
	}
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, http.StatusBadRequest, "title is required")
		return
	}
	assignee := strings.TrimSpace(req.AssigneeID)
	if !h.authorize(c, userID, role, "task.create", p, assignee) {
		return
	}
	dueDate, ok := parseDate(c, req.DueDate)
	if !ok {
		return
	}
	now := time.Now().UTC()
	t := &domain.Task{
		ID:          uuid.New().String(),
		ProjectID:   p.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		AssigneeID:  assignee,
		CreatedBy:   userID,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.Validate(); err != nil {
		httperr.Abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.tasks.Create(ctx, t); err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to create task")
		return
	}
	h.emit(userID, "task.created", t.ID)
	c.JSON(http.StatusCreated, taskToWire(t))
}

// Update changes task fields. The policy allows managers on the project and
// the task's assignee.
func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	userID, role, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	t, p, ok := h.loadVisibleTask(c)
	if !ok {
		return
	}
	if !h.authorize(c, userID, role, "task.update", p, t.AssigneeID) {
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		t.Description = strings.TrimSpace(*req.Description)
	}
	if req.AssigneeID != nil {
		t.AssigneeID = strings.TrimSpace(*req.AssigneeID)
	}
	if req.Status != nil {
		t.Status = domain.TaskStatus(*req.Status)
	}
	if req.Priority != nil {
		t.Priority = domain.TaskPriority(*req.Priority)
	}
	if req.DueDate != nil {
		dueDate, ok := parseDate(c, req.DueDate)
		if !ok {
			return
		}
		t.DueDate = dueDate
		// A moved due date resets the overdue flag; the scheduler re-flags
		// it on the next sweep if still in the past.
		t.Overdue = false
	}
	t.UpdatedAt = time.Now().UTC()
	if err := t.Validate(); err != nil {
		httperr.Abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.tasks.Update(ctx, t); err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to update task")
		return
	}
	h.emit(userID, "task.updated", t.ID)
	c.JSON(http.StatusOK, taskToWire(t))
}

// Delete removes a task.
func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	userID, role, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	t, p, ok := h.loadVisibleTask(c)
	if !ok {
		return
	}
	if !h.authorize(c, userID, role, "task.delete", p, t.AssigneeID) {
		return
	}
	if err := h.tasks.Delete(ctx, t.ID); err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to delete task")
		return
	}
	h.emit(userID, "task.deleted", t.ID)
	c.Status(http.StatusNoContent)
}

// loadVisibleProject loads a project and enforces project visibility. Writes
// the error response and returns ok=false when the caller may not see it.
func (h *Handler) loadVisibleProject(c *gin.Context, projectID string) (*projectdomain.Project, bool) {
	ctx := c.Request.Context()
	userID, role, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return nil, false
	}
	p, err := h.projects.GetByID(ctx, projectID)
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to load project")
		return nil, false
	}
	if p == nil || (role != userdomain.RoleAdmin && !p.AssociatedWith(userID)) {
		httperr.Abort(c, http.StatusNotFound, "project not found")
		return nil, false
	}
	return p, true
}

// loadVisibleTask loads the task from the :id param along with its project,
// enforcing the project's visibility.
func (h *Handler) loadVisibleTask(c *gin.Context) (*domain.Task, *projectdomain.Project, bool) {
	ctx := c.Request.Context()
	t, err := h.tasks.GetByID(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to load task")
		return nil, nil, false
	}
	if t == nil {
		httperr.Abort(c, http.StatusNotFound, "task not found")
		return nil, nil, false
	}
	p, ok := h.loadVisibleProject(c, t.ProjectID)
	if !ok {
		return nil, nil, false
	}
	return t, p, true
}

func (h *Handler) authorize(c *gin.Context, userID string, role userdomain.Role, action string, p *projectdomain.Project, assigneeID string) bool {
	if h.policy == nil {
		return true
	}
	decision, err := h.policy.Authorize(c.Request.Context(), engine.ActionInput{
		ActorID:    userID,
		Role:       string(role),
		Action:     action,
		Associated: p.AssociatedWith(userID),
		AssigneeID: assigneeID,
	})
	if err != nil {
		h.log.Error("policy evaluation failed", zap.String("action", action), zap.Error(err))
		httperr.Abort(c, http.StatusInternalServerError, "policy evaluation failed")
		return false
	}
	if !decision.Allow {
		httperr.Abort(c, http.StatusForbidden, "action not allowed")
		return false
	}
	return true
}

func (h *Handler) emit(userID, eventType, taskID string) {
	activity.EmitAsync(h.events, h.log, &activitydomain.Event{
		ID:        uuid.New().String(),
		UserID:    userID,
		EventType: eventType,
		Source:    "tasks",
		Metadata:  `{"taskId":"` + taskID + `"}`,
		CreatedAt: time.Now().UTC(),
	})
}

func taskToWire(t *domain.Task) taskResponse {
	out := taskResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		AssigneeID:  t.AssigneeID,
		CreatedBy:   t.CreatedBy,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Overdue:     t.Overdue,
	}
	if t.DueDate != nil {
		s := t.DueDate.Format("2006-01-02")
		out.DueDate = &s
	}
	return out
}

func toWire(tasks []*domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToWire(t))
	}
	return out
}

// parseDate parses a YYYY-MM-DD body field. Writes a 400 and returns ok=false
// on malformed input; a nil or empty field parses to nil.
func parseDate(c *gin.Context, s *string) (*time.Time, bool) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(*s))
	if err != nil {
		httperr.Abort(c, http.StatusBadRequest, "dates must be YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}
