package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainuser "github.com/alanyang/repair-desk/internal/domain/user"
)

const claimsKey = "auth.claims"

// Middleware verifies the bearer token and stores its claims on the gin
// context and on the request context.
// Browsers cannot set headers on WebSocket upgrades, so a "token" query
// parameter is accepted as a fallback.
func Middleware(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			raw = c.Query("token")
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := m.ParseToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set(claimsKey, claims)
	c.Request = c.Request.WithContext(NewContext(c.Request.Context(), claims))
}

// RequireRole rejects callers whose token role is not in roles.
// Must run after Middleware.
func RequireRole(roles ...domainuser.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		for _, r := range roles {
			if claims.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// WithClaims stores claims on c. Handler tests use it to skip token parsing.
func WithClaims(claims *Claims) gin.HandlerFunc {
	return func(c *gin.Context) {
		setClaims(c, claims)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
