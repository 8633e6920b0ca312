// Package handler exposes user lifecycle over HTTP. Reads are scoped by the
// visibility resolver. Create and status changes are admin-only; managers may
// update non-admin users.
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/OmarHalima/workforce-console/internal/platform/rbac"
	projectdomain "github.com/OmarHalima/workforce-console/internal/project/domain"
	"github.com/OmarHalima/workforce-console/internal/server/httperr"
	"github.com/OmarHalima/workforce-console/internal/user/domain"
	userrepo "github.com/OmarHalima/workforce-console/internal/user/repository"
	"github.com/OmarHalima/workforce-console/internal/visibility"
	visibilityhandler "github.com/OmarHalima/workforce-console/internal/visibility/handler"
)

// ProjectLister loads the project snapshot for visibility checks.
type ProjectLister interface {
	List(ctx context.Context) ([]*projectdomain.Project, error)
}

// Handler serves the /users routes.
type Handler struct {
	users    userrepo.Repository
	projects ProjectLister
}

// NewHandler returns a user handler over the given repositories.
func NewHandler(users userrepo.Repository, projects ProjectLister) *Handler {
	return &Handler{users: users, projects: projects}
}

// Register mounts the user routes on the authenticated group.
func (h *Handler) Register(g *gin.RouterGroup) {
	users := g.Group("/users")
	users.GET("", h.List)
	users.GET("/:id", h.Get)
	users.POST("", h.Create)
	users.PUT("/:id", h.Update)
	users.POST("/:id/disable", h.Disable)
	users.POST("/:id/enable", h.Enable)
}

type createUserRequest struct {
	Email      string `json:"email" binding:"required"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

type updateUserRequest struct {
	Name       *string `json:"name"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	Position   *string `json:"position"`
}

// List returns the users the caller may see. Admins get everyone; others get
// their visibility set.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	userID, role, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	allUsers, err := h.users.List(ctx)
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to load users")
		return
	}
	if role == domain.RoleAdmin {
		c.JSON(http.StatusOK, toWire(allUsers))
		return
	}
	allProjects, err := h.projects.List(ctx)
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to load projects")
		return
	}
	res := visibility.Resolve(visibility.Actor{ID: userID, Role: role}, allUsers, allProjects)
	c.JSON(http.StatusOK, toWire(res.VisibleUsers))
}

// Get returns one user. Non-admin callers may only fetch themselves or a user
// inside their visibility set.
func (h *Handler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	actorID, role, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	targetID := strings.TrimSpace(c.Param("id"))
	u, err := h.users.GetByID(ctx, targetID)
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to look up user")
		return
	}
	if u == nil {
		httperr.Abort(c, http.StatusNotFound, "user not found")
		return
	}
	if role != domain.RoleAdmin && targetID != actorID {
		visible, err := h.userVisible(ctx, actorID, role, targetID)
		if err != nil {
			httperr.Abort(c, http.StatusInternalServerError, "failed to resolve visibility")
			return
		}
		if !visible {
			httperr.Abort(c, http.StatusNotFound, "user not found")
			return
		}
	}
	c.JSON(http.StatusOK, visibilityhandler.UserToWire(u))
}

// Create adds a user without credentials; the user attaches a local identity
// by registering with the same email. Admin only.
func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := rbac.RequireAdmin(ctx); err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, http.StatusBadRequest, "email is required")
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	existing, err := h.users.GetByEmail(ctx, email)
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to look up user")
		return
	}
	if existing != nil {
		httperr.Abort(c, http.StatusConflict, "email already registered")
		return
	}
	now := time.Now().UTC()
	u := &domain.User{
		ID:         uuid.New().String(),
		Email:      email,
		Name:       strings.TrimSpace(req.Name),
		Role:       domain.Role(req.Role),
		Status:     domain.UserStatusPending,
		Department: strings.TrimSpace(req.Department),
		Position:   strings.TrimSpace(req.Position),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := u.Validate(); err != nil {
		httperr.Abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.users.Create(ctx, u); err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to create user")
		return
	}
	c.JSON(http.StatusCreated, visibilityhandler.UserToWire(u))
}

// Update changes profile fields and role. Admins may update anyone; project
// managers only non-admin users, and never grant the admin role.
func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	_, role, err := rbac.RequireManager(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, http.StatusBadRequest, "invalid body")
		return
	}
	u, err := h.users.GetByID(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to look up user")
		return
	}
	if u == nil {
		httperr.Abort(c, http.StatusNotFound, "user not found")
		return
	}
	if role != domain.RoleAdmin {
		if u.Role == domain.RoleAdmin {
			httperr.Abort(c, http.StatusForbidden, "insufficient role")
			return
		}
		if req.Role != nil && domain.Role(*req.Role) == domain.RoleAdmin {
			httperr.Abort(c, http.StatusForbidden, "insufficient role")
			return
		}
	}
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		u.Role = domain.Role(*req.Role)
	}
	if req.Department != nil {
		u.Department = strings.TrimSpace(*req.Department)
	}
	if req.Position != nil {
		u.Position = strings.TrimSpace(*req.Position)
	}
	u.UpdatedAt = time.Now().UTC()
	if err := u.Validate(); err != nil {
		httperr.Abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.users.Update(ctx, u); err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to update user")
		return
	}
	c.JSON(http.StatusOK, visibilityhandler.UserToWire(u))
}

// Disable sets the user's status to disabled. Admin only; admins cannot
// disable themselves.
func (h *Handler) Disable(c *gin.Context) {
	h.setStatus(c, domain.UserStatusDisabled)
}

// Enable re-activates a disabled or pending user. Admin only.
func (h *Handler) Enable(c *gin.Context) {
	h.setStatus(c, domain.UserStatusActive)
}

func (h *Handler) setStatus(c *gin.Context, status domain.UserStatus) {
	ctx := c.Request.Context()
	adminID, err := rbac.RequireAdmin(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	targetID := strings.TrimSpace(c.Param("id"))
	if status == domain.UserStatusDisabled && targetID == adminID {
		httperr.Abort(c, http.StatusBadRequest, "cannot disable yourself")
		return
	}
	u, err := h.users.GetByID(ctx, targetID)
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to look up user")
		return
	}
	if u == nil {
		httperr.Abort(c, http.StatusNotFound, "user not found")
		return
	}
	if err := h.users.SetStatus(ctx, targetID, status); err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to update user")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) userVisible(ctx context.Context, actorID string, role domain.Role, targetID string) (bool, error) {
	allUsers, err := h.users.List(ctx)
	if err != nil {
		return false, err
	}
	allProjects, err := h.projects.List(ctx)
	if err != nil {
		return false, err
	}
	res := visibility.Resolve(visibility.Actor{ID: actorID, Role: role}, allUsers, allProjects)
	for _, u := range res.VisibleUsers {
		if u.ID == targetID {
			return true, nil
		}
	}
	// Managers may also see the non-team pool.
	for _, u := range res.OtherUsers {
		if u.ID == targetID {
			return true, nil
		}
	}
	return false, nil
}

func toWire(users []*domain.User) []visibilityhandler.User {
	out := make([]visibilityhandler.User, 0, len(users))
	for _, u := range users {
		out = append(out, visibilityhandler.UserToWire(u))
	}
	return out
}
