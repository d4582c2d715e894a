// Package auth carries the bearer-token middleware for the admin API.
package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
	"github.com/ryanki1/JobStream-Workspace/internal/http/common"
)

// Verifier turns a raw bearer token into a Principal.
type Verifier interface {
	Verify(token string) (registration.Principal, error)
}

// Middleware authenticates the request and, when role is non-empty,
// requires the principal to hold it.
func Middleware(verifier Verifier, role registration.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, common.ErrorResponse{Code: "INTERNAL", Message: "auth misconfigured"})
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.ErrorResponse{Code: "UNAUTHORIZED", Message: "bearer token required"})
			return
		}
		principal, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication failed"})
			return
		}
		if role != "" && principal.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, common.ErrorResponse{Code: "FORBIDDEN", Message: "insufficient role"})
			return
		}
		common.SetPrincipal(c, principal)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
