// Package handler exposes register, login, refresh, and logout over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/OmarHalima/workforce-console/internal/activity"
	activitydomain "github.com/OmarHalima/workforce-console/internal/activity/domain"
	"github.com/OmarHalima/workforce-console/internal/audit"
	"github.com/OmarHalima/workforce-console/internal/identity/service"
	"github.com/OmarHalima/workforce-console/internal/security"
	"github.com/OmarHalima/workforce-console/internal/server/httpctx"
	"github.com/OmarHalima/workforce-console/internal/server/httperr"
)

// AuthService is the service surface the handler needs.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*service.AuthResult, error)
	Login(ctx context.Context, email, password, ip string) (*service.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*service.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
}

// Handler serves the /auth routes. All routes are public; logout additionally
// honors a Bearer access token when no refresh token is supplied.
type Handler struct {
	svc     AuthService
	tokens  *security.TokenProvider
	auditor audit.AuditLogger
	events  activity.EventEmitter
	log     *zap.Logger
}

// NewHandler returns an auth handler. auditor and events may be nil.
func NewHandler(svc AuthService, tokens *security.TokenProvider, auditor audit.AuditLogger, events activity.EventEmitter, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, tokens: tokens, auditor: auditor, events: events, log: log}
}

// Register mounts the auth routes on the public group.
func (h *Handler) Register(g *gin.RouterGroup) {
	auth := g.Group("/auth")
	auth.POST("/register", h.RegisterUser)
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.Refresh)
	auth.POST("/logout", h.Logout)
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	UserID       string    `json:"userId"`
	Role         string    `json:"role"`
}

// RegisterUser creates a user with a local identity. Tokens are not issued;
// the client logs in afterwards.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, http.StatusBadRequest, "email and password are required")
		return
	}
	res, err := h.svc.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyRegistered) {
			httperr.Abort(c, http.StatusConflict, err.Error())
			return
		}
		httperr.Abort(c, http.StatusBadRequest, err.Error())
		return
	}
	h.emit(res.UserID, "user.registered")
	c.JSON(http.StatusCreated, gin.H{"userId": res.UserID})
}

// Login authenticates and returns an access/refresh token pair.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, http.StatusBadRequest, "email and password are required")
		return
	}
	ctx := c.Request.Context()
	res, err := h.svc.Login(ctx, req.Email, req.Password, c.ClientIP())
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			if h.auditor != nil {
				h.auditor.LogEvent(ctx, "", "login_failure", "auth", "")
			}
			httperr.Abort(c, http.StatusUnauthorized, err.Error())
			return
		}
		h.log.Error("login failed", zap.Error(err))
		httperr.Abort(c, http.StatusInternalServerError, "internal error")
		return
	}
	if h.auditor != nil {
		h.auditor.LogEvent(ctx, res.UserID, "login", "auth", "")
	}
	h.emit(res.UserID, "user.login")
	c.JSON(http.StatusOK, toTokenResponse(res))
}

// Refresh rotates the refresh token and returns a new pair.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, http.StatusBadRequest, "refreshToken is required")
		return
	}
	res, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshTokenReuse):
			httperr.Abort(c, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrInvalidRefreshToken):
			httperr.Abort(c, http.StatusUnauthorized, err.Error())
		default:
			h.log.Error("refresh failed", zap.Error(err))
			httperr.Abort(c, http.StatusInternalServerError, "internal error")
		}
		return
	}
	c.JSON(http.StatusOK, toTokenResponse(res))
}

// Logout revokes the session named by the refresh token in the body or, when
// absent, by the Bearer access token. Always returns 204: logout of an already
// dead session is not an error.
func (h *Handler) Logout(c *gin.Context) {
	var req logoutRequest
	_ = c.ShouldBindJSON(&req)

	ctx := c.Request.Context()
	if req.RefreshToken == "" && h.tokens != nil {
		if token := bearerToken(c.GetHeader("Authorization")); token != "" {
			if sessionID, userID, role, err := h.tokens.ValidateAccess(token); err == nil {
				ctx = httpctx.WithIdentity(ctx, userID, role, sessionID)
			}
		}
	}
	if err := h.svc.Logout(ctx, req.RefreshToken); err != nil {
		h.log.Warn("logout failed", zap.Error(err))
	}
	if userID, ok := httpctx.GetUserID(ctx); ok {
		if h.auditor != nil {
			h.auditor.LogEvent(ctx, userID, "logout", "auth", "")
		}
		h.emit(userID, "user.logout")
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) emit(userID, eventType string) {
	activity.EmitAsync(h.events, h.log, &activitydomain.Event{
		ID:        uuid.New().String(),
		UserID:    userID,
		EventType: eventType,
		Source:    "auth",
		CreatedAt: time.Now().UTC(),
	})
}

func toTokenResponse(res *service.AuthResult) tokenResponse {
	return tokenResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.ExpiresAt,
		UserID:       res.UserID,
		Role:         string(res.Role),
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	v := strings.TrimSpace(header)
	if len(v) < len(prefix) || !strings.EqualFold(v[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(v[len(prefix):])
}
