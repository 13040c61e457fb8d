package middlewares

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/continuumhq/continuum-server/internal/domain/user"
)

const (
	authSecretHeader = "X-Auth-Secret"
	userIDHeader     = "X-Acting-User"

	principalKey = "principal"
)

// Auth verifies the shared secret presented by the web tier and resolves the
// acting user. The web tier owns sessions; this service only trusts its
// forwarded identity when the secret matches.
func Auth(secret string, users user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(authSecretHeader)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Invalid service secret",
			})
			return
		}

		publicID := c.GetHeader(userIDHeader)
		if publicID == "" {
			c.Next()
			return
		}

		u, err := users.FindByPublicID(c.Request.Context(), publicID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal",
				"message": "Failed to resolve user",
			})
			return
		}
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Unknown user",
			})
			return
		}
		if u.Blocked {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden",
				"message": "Account is blocked",
			})
			return
		}

		// Best effort; a failed touch must not block the request.
		now := time.Now().UTC()
		if err := users.TouchLastActive(c.Request.Context(), u.ID, now); err == nil {
			u.LastActiveAt = &now
		}

		c.Set(principalKey, u)
		c.Next()
	}
}

// PrincipalFromContext returns the resolved user, when one was forwarded.
func PrincipalFromContext(c *gin.Context) (*user.User, bool) {
	val, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	u, ok := val.(*user.User)
	return u, ok
}

// RequirePrincipal rejects requests that did not forward a user identity.
func RequirePrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalFromContext(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Authentication required",
			})
			return
		}
		c.Next()
	}
}
