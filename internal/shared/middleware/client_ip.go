package middleware

import (
	"github.com/gin-gonic/gin"

	"book-catalog-api/internal/shared/utils"
)

const ContextClientIP = "client_ip"

// ClientIP extracts the client IP once so the logger and rate limiter agree on it.
// Register it before Logger and RateLimit.
func ClientIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextClientIP, utils.ExtractClientIP(c))
		c.Next()
	}
}

// clientIPFrom falls back to gin's resolution when ClientIP did not run
func clientIPFrom(c *gin.Context) string {
	if ip := c.GetString(ContextClientIP); ip != "" {
		return ip
	}
	return c.ClientIP()
}
