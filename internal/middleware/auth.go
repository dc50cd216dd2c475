package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spendwise/api/internal/apperr"
	"github.com/spendwise/api/internal/models"
	"github.com/spendwise/api/internal/token"
)

const identityKey = "identity"

// Identity is the resolved caller attached to the request context after
// authentication. It reflects live store state, not stale token claims.
type Identity struct {
	ID          string
	Role        string
	Email       string
	IsSuspended bool
}

// UserResolver looks up the live user record backing a token.
type UserResolver interface {
	GetByID(id string) (*models.User, error)
}

// RequireAuth extracts the session token (cookie first, then bearer header),
// verifies it, and re-resolves the user so suspension and deletion take
// effect immediately regardless of token age.
func RequireAuth(tokens *token.Manager, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c)
		if raw == "" {
			RespondError(c, http.StatusUnauthorized, "No token provided, authorization denied")
			c.Abort()
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusUnauthorized, "Token is not valid")
			c.Abort()
			return
		}

		user, err := users.GetByID(claims.UserID)
		if err != nil {
			// A missing record means the session is dead; anything else is an
			// infrastructure failure and must not look like a revoked session.
			if apperr.CodeOf(err) == apperr.CodeNotFound {
				RespondError(c, http.StatusUnauthorized, "User not found")
			} else {
				RespondAppError(c, err)
			}
			c.Abort()
			return
		}
		if user.IsSuspended {
			RespondError(c, http.StatusForbidden, "Account suspended")
			c.Abort()
			return
		}

		c.Set(identityKey, Identity{
			ID:          user.ID,
			Role:        user.Role,
			Email:       user.Email,
			IsSuspended: user.IsSuspended,
		})
		c.Next()
	}
}

// Authorize gates a route to the given roles. It composes after RequireAuth
// and fails fast with 401 if no identity was attached.
func Authorize(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := GetIdentity(c)
		if !ok {
			RespondError(c, http.StatusUnauthorized, "Not authorized")
			c.Abort()
			return
		}
		for _, role := range roles {
			if ident.Role == role {
				c.Next()
				return
			}
		}
		RespondError(c, http.StatusForbidden, "You do not have permission to perform this action")
		c.Abort()
	}
}

// SetIdentity attaches a caller identity the way RequireAuth does. Handler
// tests use it to stand in for the full auth chain.
func SetIdentity(c *gin.Context, ident Identity) {
	c.Set(identityKey, ident)
}

// GetIdentity returns the authenticated caller attached by RequireAuth.
func GetIdentity(c *gin.Context) (Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return Identity{}, false
	}
	ident, ok := v.(Identity)
	return ident, ok
}

// extractToken prefers the session cookie and falls back to the
// Authorization header for non-cookie clients.
func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie("token"); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
