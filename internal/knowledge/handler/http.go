// Package handler exposes the knowledge base over HTTP. Published articles are
// visible to every authenticated user; drafts only to their author and to
// managers and admins. Edits go through the workspace action policy, which
// grants authors rights over their own articles.
package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/OmarHalima/workforce-console/internal/activity"
	activitydomain "github.com/OmarHalima/workforce-console/internal/activity/domain"
	"github.com/OmarHalima/workforce-console/internal/knowledge/domain"
	knowledgerepo "github.com/OmarHalima/workforce-console/internal/knowledge/repository"
	"github.com/OmarHalima/workforce-console/internal/platform/rbac"
	"github.com/OmarHalima/workforce-console/internal/policy/engine"
	"github.com/OmarHalima/workforce-console/internal/server/httperr"
	userdomain "github.com/OmarHalima/workforce-console/internal/user/domain"
)

// Handler serves the /knowledge routes.
type Handler struct {
	articles knowledgerepo.Repository
	policy   engine.Evaluator
	events   activity.EventEmitter
	log      *zap.Logger
}

// NewHandler returns a knowledge handler. events may be nil.
func NewHandler(articles knowledgerepo.Repository, policy engine.Evaluator, events activity.EventEmitter, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{articles: articles, policy: policy, events: events, log: log}
}

// Register mounts the knowledge routes on the authenticated group.
func (h *Handler) Register(g *gin.RouterGroup) {
	kb := g.Group("/knowledge")
	kb.GET("", h.List)
	kb.GET("/:id", h.Get)
	kb.POST("", h.Create)
	kb.PUT("/:id", h.Update)
	kb.DELETE("/:id", h.Delete)
}

type createArticleRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

type updateArticleRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
	Status   *string `json:"status"`
}

type articleResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	AuthorID string `json:"authorId"`
	Status   string `json:"status"`
}

// List returns the articles the caller may see, optionally filtered by the
// category query parameter.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	userID, role, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	var articles []*domain.Article
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		articles, err = h.articles.ListByCategory(ctx, category)
	} else {
		articles, err = h.articles.List(ctx)
	}
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to load articles")
		return
	}
	out := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		if articleVisible(a, userID, role) {
			out = append(out, articleToWire(a))
		}
	}
	c.JSON(http.StatusOK, out)
}

// Get returns one visible article.
func (h *Handler) Get(c *gin.Context) {
	a, ok := h.loadVisible(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, articleToWire(a))
}

// Create adds an article authored by the caller. Any authenticated user may
// write drafts.
func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	userID, _, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	var req createArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, http.StatusBadRequest, "title is required")
		return
	}
	now := time.Now().UTC()
	a := &domain.Article{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		Category:  strings.TrimSpace(req.Category),
		AuthorID:  userID,
		Status:    domain.ArticleStatus(req.Status),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.Validate(); err != nil {
		httperr.Abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.articles.Create(ctx, a); err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to create article")
		return
	}
	h.emit(userID, "knowledge.created", a.ID)
	c.JSON(http.StatusCreated, articleToWire(a))
}

// Update changes article fields, including publishing a draft.
func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	userID, role, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	a, ok := h.loadVisible(c)
	if !ok {
		return
	}
	if !h.authorize(c, userID, role, "knowledge.update", a.AuthorID) {
		return
	}
	var req updateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Title != nil {
		a.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		a.Content = *req.Content
	}
	if req.Category != nil {
		a.Category = strings.TrimSpace(*req.Category)
	}
	if req.Status != nil {
		a.Status = domain.ArticleStatus(*req.Status)
	}
	a.UpdatedAt = time.Now().UTC()
	if err := a.Validate(); err != nil {
		httperr.Abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.articles.Update(ctx, a); err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to update article")
		return
	}
	h.emit(userID, "knowledge.updated", a.ID)
	c.JSON(http.StatusOK, articleToWire(a))
}

// Delete removes an article.
func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	userID, role, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return
	}
	a, ok := h.loadVisible(c)
	if !ok {
		return
	}
	if !h.authorize(c, userID, role, "knowledge.delete", a.AuthorID) {
		return
	}
	if err := h.articles.Delete(ctx, a.ID); err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to delete article")
		return
	}
	h.emit(userID, "knowledge.deleted", a.ID)
	c.Status(http.StatusNoContent)
}

// loadVisible loads the article from the :id param and enforces draft
// visibility. Writes the error response and returns ok=false on failure.
func (h *Handler) loadVisible(c *gin.Context) (*domain.Article, bool) {
	ctx := c.Request.Context()
	userID, role, err := rbac.RequireActor(ctx)
	if err != nil {
		httperr.AbortRBAC(c, err)
		return nil, false
	}
	a, err := h.articles.GetByID(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, "failed to load article")
		return nil, false
	}
	if a == nil || !articleVisible(a, userID, role) {
		// Hidden drafts are indistinguishable from absent articles.
		httperr.Abort(c, http.StatusNotFound, "article not found")
		return nil, false
	}
	return a, true
}

func (h *Handler) authorize(c *gin.Context, userID string, role userdomain.Role, action, authorID string) bool {
	if h.policy == nil {
		return true
	}
	decision, err := h.policy.Authorize(c.Request.Context(), engine.ActionInput{
		ActorID:  userID,
		Role:     string(role),
		Action:   action,
		AuthorID: authorID,
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

func (h *Handler) emit(userID, eventType, articleID string) {
	activity.EmitAsync(h.events, h.log, &activitydomain.Event{
		ID:        uuid.New().String(),
		UserID:    userID,
		EventType: eventType,
		Source:    "knowledge",
		Metadata:  `{"articleId":"` + articleID + `"}`,
		CreatedAt: time.Now().UTC(),
	})
}

func articleVisible(a *domain.Article, userID string, role userdomain.Role) bool {
	if a.Status == domain.ArticleStatusPublished {
		return true
	}
	return a.AuthorID == userID || role == userdomain.RoleAdmin || role == userdomain.RoleProjectManager
}

func articleToWire(a *domain.Article) articleResponse {
	return articleResponse{
		ID:       a.ID,
		Title:    a.Title,
		Content:  a.Content,
		Category: a.Category,
		AuthorID: a.AuthorID,
		Status:   string(a.Status),
	}
}
