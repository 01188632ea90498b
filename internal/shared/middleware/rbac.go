package middleware

import (
	"github.com/gin-gonic/gin"

	"warehouse-picking-backend/internal/shared/response"
)

// RequireRole allows the request through only when the authenticated role is
// one of the listed roles. Must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := Role(c)
		if _, ok := allowed[role]; !ok {
			response.Forbidden(c, "access denied: insufficient role")
			c.Abort()
			return
		}
		c.Next()
	}
}
