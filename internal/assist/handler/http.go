// Package handler exposes the AI assist panel over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/OmarHalima/workforce-console/internal/assist"
	"github.com/OmarHalima/workforce-console/internal/platform/rbac"
	"github.com/OmarHalima/workforce-console/internal/server/httperr"
	"github.com/OmarHalima/workforce-console/internal/visibility"
)

// AssistService is the service surface the handler needs.
type AssistService interface {
	Available() bool
	Chat(ctx context.Context, actor visibility.Actor, message string) (string, error)
	EnhanceTask(ctx context.Context, title, description string) (string, error)
}

// Handler serves the /assist routes.
type Handler struct {
	svc AssistService
	log *zap.Logger
}

// NewHandler returns an assist handler.
func NewHandler(svc AssistService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

// Register mounts the assist routes on the authenticated group.
func (h *Handler) Register(g *gin.RouterGroup) {
	a := g.Group("/assist")
	a.POST("/chat", h.Chat)
	a.POST("/enhance-task", h.EnhanceTask)
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

type enhanceTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// Chat answers a free-form question about the caller's workspace.
func (h *Handler) Chat(c *gin.Context) {
	ctx := c.Request.Context()
	userID, role, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, http.StatusBadRequest, "message is required")
		return
	}
	answer, err := h.svc.Chat(ctx, visibility.Actor{ID: userID, Role: role}, req.Message)
	if err != nil {
		h.abortAssist(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// EnhanceTask rewrites a task title/description into a fuller one.
func (h *Handler) EnhanceTask(c *gin.Context) {
	ctx := c.Request.Context()
	if _, _, err := rbac.RequireActor(ctx); err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	var req enhanceTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, http.StatusBadRequest, "title is required")
		return
	}
	enhanced, err := h.svc.EnhanceTask(ctx, req.Title, req.Description)
	if err != nil {
		h.abortAssist(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": enhanced})
}

// abortAssist maps assist failures: unconfigured panel is 503, model errors
// are transient 502s.
func (h *Handler) abortAssist(c *gin.Context, err error) {
	if errors.Is(err, assist.ErrUnavailable) {
		httperr.Abort(c, http.StatusServiceUnavailable, "assist is not configured")
		return
	}
	h.log.Warn("assist request failed", zap.Error(err))
	httperr.Abort(c, http.StatusBadGateway, "assist is temporarily unavailable")
}
