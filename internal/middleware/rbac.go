package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-desk-api/internal/models"
	appErrors "github.com/noah-isme/civic-desk-api/pkg/errors"
	"github.com/noah-isme/civic-desk-api/pkg/response"
)

// RequireRoles only lets principals with one of roles through. It must run after Auth.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			response.Error(c, appErrors.ErrMissingCredential)
			c.Abort()
			return
		}
		if _, ok := allowed[principal.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
