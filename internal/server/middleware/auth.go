// Package middleware holds the gin middlewares of the HTTP API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/poultryops/internal/auth"
	"github.com/mamadbah2/poultryops/internal/domain/models"
)

const claimsKey = "auth.claims"

// UserLookup reloads the account behind a token so deactivation takes
// effect before the token expires.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (models.User, error)
}

// Authenticate validates the bearer token and stores its claims on the
// context. users may be nil to trust the token alone.
func Authenticate(tokens *auth.JWTManager, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		if users != nil {
			user, err := users.GetUser(c.Request.Context(), claims.UserID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
				return
			}
			if user.Status != models.StatusActive {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account suspended, please contact the administrator"})
				return
			}
			claims.Role = user.Role
			claims.Name = user.Name
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects callers whose role is not allowed. Admins always pass.
// It must run after Authenticate.
func RequireRole(allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if err := auth.Authorize(claims.Role, allowed...); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by Authenticate.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// Actor is the display name recorded as "added by" on entries.
func Actor(c *gin.Context) string {
	if claims, ok := ClaimsFrom(c); ok {
		if claims.Name != "" {
			return claims.Name
		}
		return claims.Username
	}
	return ""
}
