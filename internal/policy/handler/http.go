// Package handler exposes workspace policy administration over HTTP.
// Admins read and replace the Rego source governing console mutations.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/OmarHalima/workforce-console/internal/platform/rbac"
	"github.com/OmarHalima/workforce-console/internal/policy/domain"
	"github.com/OmarHalima/workforce-console/internal/policy/engine"
	policyrepo "github.com/OmarHalima/workforce-console/internal/policy/repository"
	"github.com/OmarHalima/workforce-console/internal/server/httperr"
)

// Handler serves the /policies routes.
type Handler struct {
	policies policyrepo.Repository
	log      *zap.Logger
}

// NewHandler returns a policy admin handler.
func NewHandler(policies policyrepo.Repository, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{policies: policies, log: log}
}

// Register mounts the policy routes on the authenticated group.
func (h *Handler) Register(g *gin.RouterGroup) {
	policies := g.Group("/policies")
	policies.GET("/workspace", h.GetWorkspace)
	policies.PUT("/workspace", h.PutWorkspace)
}

type putPolicyRequest struct {
	Rego string `json:"rego" binding:"required"`
}

type policyResponse struct {
	Name      string     `json:"name"`
	Rego      string     `json:"rego"`
	Default   bool       `json:"default"`
	UpdatedBy string     `json:"updatedBy,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// GetWorkspace returns the stored workspace policy, or the built-in default
// when none has been stored. Admin only.
func (h *Handler) GetWorkspace(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := rbac.RequireAdmin(ctx); err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	stored, err := h.policies.GetByName(ctx, domain.WorkspacePolicyName)
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to load policy")
		return
	}
	if stored == nil {
		c.JSON(http.StatusOK, policyResponse{
			Name:    domain.WorkspacePolicyName,
			Rego:    engine.DefaultRego(),
			Default: true,
		})
		return
	}
	c.JSON(http.StatusOK, policyResponse{
		Name:      stored.Name,
		Rego:      stored.Rego,
		UpdatedBy: stored.UpdatedBy,
		UpdatedAt: &stored.UpdatedAt,
	})
}

// PutWorkspace validates and stores a new workspace policy source. Admin only.
// The source must compile; the engine picks it up on the next evaluation.
func (h *Handler) PutWorkspace(c *gin.Context) {
	ctx := c.Request.Context()
	adminID, err := rbac.RequireAdmin(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	var req putPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, http.StatusBadRequest, "rego is required")
		return
	}
	if err := engine.ValidateRego(req.Rego); err != nil {
		httperr.Abort(c, http.StatusBadRequest, "policy does not compile: "+err.Error())
		return
	}
	now := time.Now().UTC()
	p := &domain.ActionPolicy{
		ID:        uuid.New().String(),
		Name:      domain.WorkspacePolicyName,
		Rego:      req.Rego,
		UpdatedBy: adminID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.policies.Upsert(ctx, p); err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to store policy")
		return
	}
	h.log.Info("workspace policy updated", zap.String("updated_by", adminID))
	c.JSON(http.StatusOK, policyResponse{
		Name:      p.Name,
		Rego:      p.Rego,
		UpdatedBy: p.UpdatedBy,
		UpdatedAt: &p.UpdatedAt,
	})
}
