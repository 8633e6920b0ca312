package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/OmarHalima/workforce-console/internal/audit"
	"github.com/OmarHalima/workforce-console/internal/server/httpctx"
)

// AuditMutations records an audit log entry after each successful mutation
// (non-GET, 2xx) by an authenticated user. Best-effort: write failures are
// handled inside the audit logger and never fail the request.
func AuditMutations(logger audit.AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if logger == nil || c.Request.Method == "GET" || c.Request.Method == "OPTIONS" {
			return
		}
		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		ctx := c.Request.Context()
		userID, ok := httpctx.GetUserID(ctx)
		if !ok {
			return
		}
		ar := audit.ParseRoute(c.Request.Method, c.FullPath())
		logger.LogEvent(ctx, userID, ar.Action, ar.Resource, "")
	}
}

// clientIPContextKey carries the resolved client IP through the request
// context so code below the gin layer (audit logger) can read it.
type clientIPContextKey struct{}

// WithClientIP copies gin's resolved client IP into the request context.
// Install before Auth so downstream services see it.
func WithClientIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), clientIPContextKey{}, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ClientIPFromContext returns the client IP recorded by WithClientIP, or
// "unknown" when absent.
func ClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPContextKey{}).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}
