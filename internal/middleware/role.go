package middleware

import (
	"net/http"

	"smart-locker/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware restricts a route to callers holding one of the allowed
// roles. It must run after AuthMiddleware.
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}

		roleStr, ok := role.(string)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid role claim")
			c.Abort()
			return
		}

		for _, allowed := range allowedRoles {
			if roleStr == allowed {
				c.Next()
				return
			}
		}

		utils.ErrorResponse(c, http.StatusForbidden, "insufficient permissions")
		c.Abort()
	}
}

// AdminOnly restricts a route to administrators.
func AdminOnly() gin.HandlerFunc {
	return RoleMiddleware("admin")
}
