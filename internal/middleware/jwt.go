package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/docs-platform-api/internal/models"
	appErrors "github.com/noah-isme/docs-platform-api/pkg/errors"
	"github.com/noah-isme/docs-platform-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentAdmin"

// Authorizer validates access tokens.
type Authorizer interface {
	Authorize(token string) (*models.AdminClaims, error)
}

// JWT protects routes by requiring a valid admin access token.
func JWT(auth Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrAuthFailure, "Not authenticated"))
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrAuthFailure, "Could not validate credentials"))
			c.Abort()
			return
		}

		claims, err := auth.Authorize(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}
