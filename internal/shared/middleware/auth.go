package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"warehouse-picking-backend/internal/shared/response"
	"warehouse-picking-backend/pkg/jwt"
)

// Context keys populated by AuthMiddleware.
const (
	CtxUserID   = "userID"
	CtxUsername = "username"
	CtxRole     = "role"
)

// AuthMiddleware validates the bearer access token and stashes the identity
// in the gin context for handlers and the role gate.
func AuthMiddleware(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxRole, claims.Role)

		c.Next()
	}
}

// UserID extracts the authenticated user id from the context.
func UserID(c *gin.Context) int64 {
	id, _ := c.Get(CtxUserID)
	userID, _ := id.(int64)
	return userID
}

// Role extracts the authenticated role from the context.
func Role(c *gin.Context) string {
	r, _ := c.Get(CtxRole)
	role, _ := r.(string)
	return role
}
