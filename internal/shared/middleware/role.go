package middleware

import (
	"github.com/gin-gonic/gin"

	"book-catalog-api/internal/shared/response"
)

// RequireRoles cho phép request đi tiếp nếu token có ít nhất một role trong danh sách
// Phải đặt sau Auth
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			response.Unauthorized(c, "authentication required")
			return
		}

		if !claims.HasAnyRole(roles...) {
			response.Forbidden(c, "access denied: insufficient role")
			return
		}

		c.Next()
	}
}
