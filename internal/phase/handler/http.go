// Package handler exposes project phase CRUD over HTTP. Phases inherit the
// project's visibility and are mutated under the workspace action policy.
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/OmarHalima/workforce-console/internal/phase/domain"
	phaserepo "github.com/OmarHalima/workforce-console/internal/phase/repository"
	"github.com/OmarHalima/workforce-console/internal/platform/rbac"
	"github.com/OmarHalima/workforce-console/internal/policy/engine"
	projectdomain "github.com/OmarHalima/workforce-console/internal/project/domain"
	"github.com/OmarHalima/workforce-console/internal/server/httperr"
	userdomain "github.com/OmarHalima/workforce-console/internal/user/domain"
)

// ProjectGetter loads the enclosing project for visibility and policy checks.
type ProjectGetter interface {
	GetByID(ctx context.Context, id string) (*projectdomain.Project, error)
}

// Handler serves the phase routes.
type Handler struct {
	phases   phaserepo.Repository
	projects ProjectGetter
	policy   engine.Evaluator
	log      *zap.Logger
}

// NewHandler returns a phase handler.
func NewHandler(phases phaserepo.Repository, projects ProjectGetter, policy engine.Evaluator, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{phases: phases, projects: projects, policy: policy, log: log}
}

// Register mounts the phase routes on the authenticated group.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.GET("/projects/:id/phases", h.ListByProject)
	g.POST("/projects/:id/phases", h.Create)
	phases := g.Group("/phases")
	phases.PUT("/:id", h.Update)
	phases.DELETE("/:id", h.Delete)
}

type createPhaseRequest struct {
	Name      string  `json:"name" binding:"required"`
	Sequence  int     `json:"sequence"`
	Status    string  `json:"status"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

type updatePhaseRequest struct {
	Name      *string `json:"name"`
	Sequence  *int    `json:"sequence"`
	Status    *string `json:"status"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

type phaseResponse struct {
	ID        string  `json:"id"`
	ProjectID string  `json:"projectId"`
	Name      string  `json:"name"`
	Sequence  int     `json:"sequence"`
	Status    string  `json:"status"`
	StartDate *string `json:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty"`
}

// ListByProject returns the phases of a visible project in sequence order.
func (h *Handler) ListByProject(c *gin.Context) {
	ctx := c.Request.Context()
	p, ok := h.loadVisibleProject(c, strings.TrimSpace(c.Param("id")))
	if !ok {
		return
	}
	phases, err := h.phases.ListByProject(ctx, p.ID)
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to load phases")
		return
	}
	out := make([]phaseResponse, 0, len(phases))
	for _, ph := range phases {
		out = append(out, phaseToWire(ph))
	}
	c.JSON(http.StatusOK, out)
}

// Create adds a phase to a visible project. The sequence must be unique within
// the project.
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
	if !h.authorize(c, userID, role, "phase.create", p) {
		return
	}
	var req createPhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, http.StatusBadRequest, "name is required")
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
	existing, err := h.phases.ListByProject(ctx, p.ID)
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to load phases")
		return
	}
	for _, ph := range existing {
		if ph.Sequence == req.Sequence {
			httperr.Abort(c, http.StatusConflict, "sequence already in use")
			return
		}
	}
	now := time.Now().UTC()
	ph := &domain.ProjectPhase{
		ID:        uuid.New().String(),
		ProjectID: p.ID,
		Name:      strings.TrimSpace(req.Name),
		Sequence:  req.Sequence,
		Status:    domain.PhaseStatus(req.Status),
		StartDate: startDate,
		EndDate:   endDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := ph.Validate(); err != nil {
		httperr.Abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.phases.Create(ctx, ph); err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to create phase")
		return
	}
	c.JSON(http.StatusCreated, phaseToWire(ph))
}

// Update changes phase fields.
func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	userID, role, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	ph, p, ok := h.loadVisiblePhase(c)
	if !ok {
		return
	}
	if !h.authorize(c, userID, role, "phase.update", p) {
		return
	}
	var req updatePhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Sequence != nil && *req.Sequence != ph.Sequence {
		siblings, err := h.phases.ListByProject(ctx, ph.ProjectID)
		if err != nil {
			httperr.Abort(c, http.StatusInternalServerError, "failed to load phases")
			return
		}
		for _, sibling := range siblings {
			if sibling.ID != ph.ID && sibling.Sequence == *req.Sequence {
				httperr.Abort(c, http.StatusConflict, "sequence already in use")
				return
			}
		}
		ph.Sequence = *req.Sequence
	}
	if req.Name != nil {
		ph.Name = strings.TrimSpace(*req.Name)
	}
	if req.Status != nil {
		ph.Status = domain.PhaseStatus(*req.Status)
	}
	if req.StartDate != nil {
		startDate, ok := parseDate(c, req.StartDate)
		if !ok {
			return
		}
		ph.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, ok := parseDate(c, req.EndDate)
		if !ok {
			return
		}
		ph.EndDate = endDate
	}
	ph.UpdatedAt = time.Now().UTC()
	if err := ph.Validate(); err != nil {
		httperr.Abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.phases.Update(ctx, ph); err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to update phase")
		return
	}
	c.JSON(http.StatusOK, phaseToWire(ph))
}

// Delete removes a phase.
func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	userID, role, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	ph, p, ok := h.loadVisiblePhase(c)
	if !ok {
		return
	}
	if !h.authorize(c, userID, role, "phase.delete", p) {
		return
	}
	if err := h.phases.Delete(ctx, ph.ID); err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to delete phase")
		return
	}
	c.Status(http.StatusNoContent)
}

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

func (h *Handler) loadVisiblePhase(c *gin.Context) (*domain.ProjectPhase, *projectdomain.Project, bool) {
	ctx := c.Request.Context()
	ph, err := h.phases.GetByID(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to load phase")
		return nil, nil, false
	}
	if ph == nil {
		httperr.Abort(c, http.StatusNotFound, "phase not found")
		return nil, nil, false
	}
	p, ok := h.loadVisibleProject(c, ph.ProjectID)
	if !ok {
		return nil, nil, false
	}
	return ph, p, true
}

func (h *Handler) authorize(c *gin.Context, userID string, role userdomain.Role, action string, p *projectdomain.Project) bool {
	if h.policy == nil {
		return true
	}
	decision, err := h.policy.Authorize(c.Request.Context(), engine.ActionInput{
		ActorID:    userID,
		Role:       string(role),
		Action:     action,
		Associated: p.AssociatedWith(userID),
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

func phaseToWire(ph *domain.ProjectPhase) phaseResponse {
	out := phaseResponse{
		ID:        ph.ID,
		ProjectID: ph.ProjectID,
		Name:      ph.Name,
		Sequence:  ph.Sequence,
		Status:    string(ph.Status),
	}
	if ph.StartDate != nil {
		s := ph.StartDate.Format("2006-01-02")
		out.StartDate = &s
	}
	if ph.EndDate != nil {
		s := ph.EndDate.Format("2006-01-02")
		out.EndDate = &s
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
