// Package handler exposes the audit trail over HTTP. Admin only.
package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OmarHalima/workforce-console/internal/audit/domain"
	auditrepo "github.com/OmarHalima/workforce-console/internal/audit/repository"
	"github.com/OmarHalima/workforce-console/internal/platform/rbac"
	"github.com/OmarHalima/workforce-console/internal/server/httperr"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// Handler serves the /audit routes.
type Handler struct {
	logs auditrepo.Repository
}

// NewHandler returns an audit handler.
func NewHandler(logs auditrepo.Repository) *Handler {
	return &Handler{logs: logs}
}

// Register mounts the audit routes on the authenticated group.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.GET("/audit", h.List)
}

type entryResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip,omitempty"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// List returns recent audit entries, newest first. The userId query parameter
// filters to one user; limit caps the page size.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := rbac.RequireAdmin(ctx); err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	limit := defaultLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httperr.Abort(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	var entries []*domain.AuditLog
	var err error
	if userID := strings.TrimSpace(c.Query("userId")); userID != "" {
		entries, err = h.logs.ListByUser(ctx, userID, limit)
	} else {
		entries, err = h.logs.List(ctx, limit)
	}
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to load audit log")
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse{
			ID:        e.ID,
			UserID:    e.UserID,
			Action:    e.Action,
			Resource:  e.Resource,
			IP:        e.IP,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}
