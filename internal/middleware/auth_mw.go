package middleware

import (
	"net/http"
	"strings"

	"driver_dashboard/internal/model"
	"driver_dashboard/internal/session"
	"driver_dashboard/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	AuthIdentityKey = "authIdentity"
	AuthUserKey     = "authUser"
	AuthRoleKey     = "authRole"
)

// Authenticate resolves the caller from a bearer token or the session cookie.
// It never aborts; RequireAPIAuth and RequirePageAuth decide what a missing identity means.
func Authenticate(sessions session.Store, jwtUtil *utils.JWTUtil, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, ok := identityFromBearer(c, jwtUtil); ok {
			setIdentity(c, identity)
		} else if token, err := c.Cookie(cookieName); err == nil && token != "" {
			if s, ok := sessions.Get(token); ok {
				setIdentity(c, s.Identity)
			}
		}
		c.Next()
	}
}

func identityFromBearer(c *gin.Context, jwtUtil *utils.JWTUtil) (model.Identity, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || jwtUtil == nil {
		return model.Identity{}, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return model.Identity{}, false
	}

	claims, err := jwtUtil.ValidateToken(parts[1])
	if err != nil {
		return model.Identity{}, false
	}
	return claims.Identity(), true
}

func setIdentity(c *gin.Context, identity model.Identity) {
	c.Set(AuthIdentityKey, identity)
	c.Set(AuthUserKey, identity.ID)
	c.Set(AuthRoleKey, identity.Role)
}

// GetIdentity returns the authenticated caller, if any.
func GetIdentity(c *gin.Context) (model.Identity, bool) {
	v, exists := c.Get(AuthIdentityKey)
	if !exists {
		return model.Identity{}, false
	}
	identity, ok := v.(model.Identity)
	return identity, ok
}

// RequireAPIAuth rejects unauthenticated API calls with 401.
func RequireAPIAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetIdentity(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Next()
	}
}

// RequirePageAuth sends unauthenticated browsers to the login page.
func RequirePageAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetIdentity(c); !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}
