// Package middleware holds the gin middleware chain for the console API:
// bearer auth, CORS, request logging with tracing, and mutation auditing.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/OmarHalima/workforce-console/internal/security"
	"github.com/OmarHalima/workforce-console/internal/server/httpctx"
)

const bearerPrefix = "bearer "

// Auth validates the Bearer (access) token and puts user_id, role, and
// session_id into the request context. Requests without a valid token are
// rejected with 401.
func Auth(tokens *security.TokenProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization"})
			return
		}
		sessionID, userID, role, err := tokens.ValidateAccess(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization"})
			return
		}
		ctx := httpctx.WithIdentity(c.Request.Context(), userID, role, sessionID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// extractBearer returns the Bearer token from the Authorization header value,
// or "" if missing or malformed.
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
