// Package httperr maps service-layer sentinel errors to HTTP responses.
package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OmarHalima/workforce-console/internal/platform/rbac"
)

// Abort writes a JSON error body with the given status and stops the chain.
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// AbortRBAC maps rbac sentinel errors to 401/403. Unknown errors become 500.
func AbortRBAC(c *gin.Context, err error) {
	switch {
	case errors.Is(err, rbac.ErrUnauthenticated):
		Abort(c, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, rbac.ErrForbidden):
		Abort(c, http.StatusForbidden, "insufficient role")
	default:
		Abort(c, http.StatusInternalServerError, "internal error")
	}
}
