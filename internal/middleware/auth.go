package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-desk-api/internal/models"
	"github.com/noah-isme/civic-desk-api/pkg/logger"
	"github.com/noah-isme/civic-desk-api/pkg/response"
)

// ContextPrincipalKey is the gin context key storing the resolved caller.
const ContextPrincipalKey = "principal"

// PrincipalResolver turns an Authorization header into the calling principal.
type PrincipalResolver interface {
	Resolve(ctx context.Context, header string) (*models.Principal, error)
}

// Auth protects routes by requiring a resolvable bearer token.
func Auth(gate PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := gate.Resolve(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		setPrincipal(c, principal)
		c.Next()
	}
}

// OptionalAuth attaches the principal when the header resolves but never blocks.
func OptionalAuth(gate PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		if principal, err := gate.Resolve(c.Request.Context(), c.GetHeader("Authorization")); err == nil {
			setPrincipal(c, principal)
		}
		c.Next()
	}
}

// PrincipalFromContext returns the caller set by Auth or OptionalAuth.
func PrincipalFromContext(c *gin.Context) (*models.Principal, bool) {
	value, exists := c.Get(ContextPrincipalKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*models.Principal)
	return principal, ok && principal != nil
}

func setPrincipal(c *gin.Context, principal *models.Principal) {
	c.Set(ContextPrincipalKey, principal)
	c.Set(logger.ContextUserIDKey, principal.UserID)
}
