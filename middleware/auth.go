package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/neiist-dev/activities-backend/config"
)

const actorContextKey = "auth_actor"

// Actor is the authenticated identity extracted from the bearer token.
type Actor struct {
	ISTID   string
	IsAdmin bool
}

type tokenClaims struct {
	ISTID   string `json:"istid"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// AuthRequired validates the Authorization bearer token and stores the actor
// in the request context.
func AuthRequired(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed authorization header"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims := &tokenClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(actorContextKey, Actor{ISTID: claims.ISTID, IsAdmin: claims.IsAdmin})
		c.Next()
	}
}

// AdminRequired gates a route group to admins. Must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := MemberFromContext(c)
		if !ok {
			return
		}
		if !actor.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// MemberFromContext returns the authenticated actor, aborting with 401 when
// the middleware never ran.
func MemberFromContext(c *gin.Context) (Actor, bool) {
	v, exists := c.Get(actorContextKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		c.Abort()
		return Actor{}, false
	}
	actor, ok := v.(Actor)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		c.Abort()
		return Actor{}, false
	}
	return actor, true
}

// GetIPFromContext returns the caller address for audit entries.
func GetIPFromContext(c *gin.Context) string {
	return c.ClientIP()
}
