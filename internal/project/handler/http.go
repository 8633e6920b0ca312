// Package handler exposes project CRUD and membership management over HTTP.
// Mutations are authorized through the workspace action policy.
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
	membershipdomain "github.com/OmarHalima/workforce-console/internal/membership/domain"
	membershiprepo "github.com/OmarHalima/workforce-console/internal/membership/repository"
	"github.com/OmarHalima/workforce-console/internal/platform/rbac"
	"github.com/OmarHalima/workforce-console/internal/policy/engine"
	"github.com/OmarHalima/workforce-console/internal/project/domain"
	projectrepo "github.com/OmarHalima/workforce-console/internal/project/repository"
	"github.com/OmarHalima/workforce-console/internal/server/httperr"
	userdomain "github.com/OmarHalima/workforce-console/internal/user/domain"
	"github.com/OmarHalima/workforce-console/internal/visibility"
	visibilityhandler "github.com/OmarHalima/workforce-console/internal/visibility/handler"
)

// UserGetter validates member references.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// Handler serves the /projects routes.
type Handler struct {
	projects    projectrepo.Repository
	memberships membershiprepo.Repository
	users       UserGetter
	policy      engine.Evaluator
	events      activity.EventEmitter
	log         *zap.Logger
}

// NewHandler returns a project handler. events may be nil.
func NewHandler(
	projects projectrepo.Repository,
	memberships membershiprepo.Repository,
	users UserGetter,
	policy engine.Evaluator,
	events activity.EventEmitter,
	log *zap.Logger,
) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		projects:    projects,
		memberships: memberships,
		users:       users,
		policy:      policy,
		events:      events,
		log:         log,
	}
}

// Register mounts the project routes on the authenticated group.
func (h *Handler) Register(g *gin.RouterGroup) {
	projects := g.Group("/projects")
	projects.GET("", h.List)
	projects.GET("/:id", h.Get)
	projects.POST("", h.Create)
	projects.PUT("/:id", h.Update)
	projects.DELETE("/:id", h.Delete)
	projects.GET("/:id/members", h.ListMembers)
	projects.POST("/:id/members", h.AddMember)
	projects.DELETE("/:id/members/:userId", h.RemoveMember)
}

type createProjectRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	ManagerID   string  `json:"managerId"`
	Status      string  `json:"status"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ManagerID   *string `json:"managerId"`
	Status      *string `json:"status"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
}

type addMemberRequest struct {
	UserID string `json:"userId" binding:"required"`
	Role   string `json:"role"`
}

// List returns the projects visible to the caller.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	userID, role, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	all, err := h.projects.List(ctx)
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to load projects")
		return
	}
	res := visibility.Resolve(visibility.Actor{ID: userID, Role: role}, nil, all)
	out := make([]visibilityhandler.Project, 0, len(res.VisibleProjects))
	for _, p := range res.VisibleProjects {
		out = append(out, visibilityhandler.ProjectToWire(p))
	}
	c.JSON(http.StatusOK, out)
}

// Get returns one visible project with its members.
func (h *Handler) Get(c *gin.Context) {
	p, ok := h.loadVisible(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, visibilityhandler.ProjectToWire(p))
}

// Create adds a project owned by the caller. Managers and admins only.
func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	userID, role, err := rbac.RequireManager(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, http.StatusBadRequest, "name is required")
		return
	}
	// The creator becomes owner, so the policy sees an associated actor.
	if !h.authorize(c, userID, role, "project.create", true) {
		return
	}
	startDate, ok := parseDate(c, req.StartDate)
	if !ok {
		return
	}
	endDate, ok := parseDate(c, req.EndDate)
	if !ok {
		return
	}
	now := time.Now().UTC()
	p := &domain.Project{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		OwnerID:     userID,
		ManagerID:   strings.TrimSpace(req.ManagerID),
		Status:      domain.ProjectStatus(req.Status),
		StartDate:   startDate,
		EndDate:     endDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		httperr.Abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.projects.Create(ctx, p); err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to create project")
		return
	}
	h.emit(userID, "project.created", p.ID)
	c.JSON(http.StatusCreated, visibilityhandler.ProjectToWire(p))
}

// Update changes project fields on a visible project the caller may mutate.
func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	userID, role, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	p, ok := h.loadVisible(c)
	if !ok {
		return
	}
	if !h.authorize(c, userID, role, "project.update", p.AssociatedWith(userID)) {
		return
	}
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
	if req.ManagerID != nil {
		p.ManagerID = strings.TrimSpace(*req.ManagerID)
	}
	if req.Status != nil {
		p.Status = domain.ProjectStatus(*req.Status)
	}
	if req.StartDate != nil {
		startDate, ok := parseDate(c, req.StartDate)
		if !ok {
			return
		}
		p.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, ok := parseDate(c, req.EndDate)
		if !ok {
			return
		}
		p.EndDate = endDate
	}
	p.UpdatedAt = time.Now().UTC()
	if err := p.Validate(); err != nil {
		httperr.Abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.projects.Update(ctx, p); err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to update project")
		return
	}
	h.emit(userID, "project.updated", p.ID)
	c.JSON(http.StatusOK, visibilityhandler.ProjectToWire(p))
}

// Delete removes a project the caller may mutate. Members, tasks, and phases
// cascade in the database.
func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	userID, role, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	p, ok := h.loadVisible(c)
	if !ok {
		return
	}
	if !h.authorize(c, userID, role, "project.delete", p.AssociatedWith(userID)) {
		return
	}
	if err := h.projects.Delete(ctx, p.ID); err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to delete project")
		return
	}
	h.emit(userID, "project.deleted", p.ID)
	c.Status(http.StatusNoContent)
}

// ListMembers returns the membership list of a visible project.
func (h *Handler) ListMembers(c *gin.Context) {
	p, ok := h.loadVisible(c)
	if !ok {
		return
	}
	members, err := h.memberships.ListByProject(c.Request.Context(), p.ID)
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to load members")
		return
	}
	out := make([]gin.H, 0, len(members))
	for _, m := range members {
		out = append(out, gin.H{"userId": m.UserID, "role": string(m.Role)})
	}
	c.JSON(http.StatusOK, out)
}

// AddMember adds a user to the project team.
func (h *Handler) AddMember(c *gin.Context) {
	ctx := c.Request.Context()
	userID, role, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	p, ok := h.loadVisible(c)
	if !ok {
		return
	}
	if !h.authorize(c, userID, role, "project.member.add", p.AssociatedWith(userID)) {
		return
	}
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, http.StatusBadRequest, "userId is required")
		return
	}
	target, err := h.users.GetByID(ctx, req.UserID)
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to look up user")
		return
	}
	if target == nil {
		httperr.Abort(c, http.StatusNotFound, "user not found")
		return
	}
	existing, err := h.memberships.GetByProjectAndUser(ctx, p.ID, req.UserID)
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to look up membership")
		return
	}
	if existing != nil {
		httperr.Abort(c, http.StatusConflict, "user is already a member")
		return
	}
	memberRole := membershipdomain.Role(req.Role)
	if memberRole == "" {
		memberRole = membershipdomain.RoleMember
	}
	if memberRole != membershipdomain.RoleMember && memberRole != membershipdomain.RoleManager {
		httperr.Abort(c, http.StatusBadRequest, "unknown membership role")
		return
	}
	m := &membershipdomain.ProjectMembership{
		ID:        uuid.New().String(),
		ProjectID: p.ID,
		UserID:    req.UserID,
		Role:      memberRole,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.memberships.Create(ctx, m); err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to add member")
		return
	}
	h.emit(userID, "project.member.added", p.ID)
	c.JSON(http.StatusCreated, gin.H{"userId": m.UserID, "role": string(m.Role)})
}

// RemoveMember removes a user from the project team.
func (h *Handler) RemoveMember(c *gin.Context) {
	ctx := c.Request.Context()
	userID, role, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	p, ok := h.loadVisible(c)
	if !ok {
		return
	}
	if !h.authorize(c, userID, role, "project.member.remove", p.AssociatedWith(userID)) {
		return
	}
	targetID := strings.TrimSpace(c.Param("userId"))
	existing, err := h.memberships.GetByProjectAndUser(ctx, p.ID, targetID)
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to look up membership")
		return
	}
	if existing == nil {
		httperr.Abort(c, http.StatusNotFound, "membership not found")
		return
	}
	if err := h.memberships.DeleteByProjectAndUser(ctx, p.ID, targetID); err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to remove member")
		return
	}
	h.emit(userID, "project.member.removed", p.ID)
	c.Status(http.StatusNoContent)
}

// loadVisible loads the project from the :id param and enforces visibility.
// Writes the error response and returns ok=false when the caller may not see it.
func (h *Handler) loadVisible(c *gin.Context) (*domain.Project, bool) {
	ctx := c.Request.Context()
	userID, role, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return nil, false
	}
	p, err := h.projects.GetByID(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to load project")
		return nil, false
	}
	if p == nil {
		httperr.Abort(c, http.StatusNotFound, "project not found")
		return nil, false
	}
	if role != userdomain.RoleAdmin && !p.AssociatedWith(userID) {
		// Hidden projects are indistinguishable from absent ones.
		httperr.Abort(c, http.StatusNotFound, "project not found")
		return nil, false
	}
	return p, true
}

// authorize consults the workspace action policy. Writes the error response
// and returns false when denied.
func (h *Handler) authorize(c *gin.Context, userID string, role userdomain.Role, action string, associated bool) bool {
	if h.policy == nil {
		return true
	}
	decision, err := h.policy.Authorize(c.Request.Context(), engine.ActionInput{
		ActorID:    userID,
		Role:       string(role),
		Action:     action,
		Associated: associated,
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

func (h *Handler) emit(userID, eventType, projectID string) {
	activity.EmitAsync(h.events, h.log, &activitydomain.Event{
		ID:        uuid.New().String(),
		UserID:    userID,
		EventType: eventType,
		Source:    "projects",
		Metadata:  `{"projectId":"` + projectID + `"}`,
		CreatedAt: time.Now().UTC(),
	})
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
