package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/phillip/nft-ticketing-go/config"
	"github.com/phillip/nft-ticketing-go/utils"
)

const (
	UserIDKey = "user_id"
	RoleKey   = "role"
	NameKey   = "name"

	SessionCookie = "session"

	AdminTokenHeader = "X-Admin-Token"
)

// AuthMiddleware reads an optional session token from the Authorization
// header or the session cookie. Requests without a token pass through
// anonymously; a token that fails verification is rejected.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	secret := []byte(cfg.JWTSecret)

	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				raw = cookie
			}
		}
		if raw == "" {
			c.Next()
			return
		}

		claims, err := utils.ParseToken(secret, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session", "code": "unauthorized"})
			return
		}

		c.Set(UserIDKey, claims.DID)
		c.Set(RoleKey, string(claims.Role))
		c.Set(NameKey, claims.Name)
		c.Next()
	}
}

// RequireIdentity rejects anonymous requests when AUTH_REQUIRED is set.
func RequireIdentity(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.AuthRequired && c.GetString(UserIDKey) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": "unauthorized"})
			return
		}
		c.Next()
	}
}

// RequireAdminToken guards maintenance routes with the ADMIN_TOKEN shared
// secret. With no token configured the routes are closed.
func RequireAdminToken(cfg *config.Config) gin.HandlerFunc {
	want := []byte(cfg.AdminToken)

	return func(c *gin.Context) {
		if len(want) == 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin endpoints disabled", "code": "forbidden"})
			return
		}
		got := []byte(c.GetHeader(AdminTokenHeader))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token", "code": "unauthorized"})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
