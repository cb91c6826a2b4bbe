package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"book-catalog-api/internal/shared/response"
	"book-catalog-api/pkg/jwt"
	"book-catalog-api/pkg/logger"
)

// Context keys set by Auth
const (
	ContextClaims = "claims"
	ContextUserID = "user_id"
	ContextRoles  = "roles"
)

// TokenVerifier là phần verify của jwt.Manager
type TokenVerifier interface {
	ValidateAccessToken(tokenString string) (*jwt.Claims, error)
}

// Auth - Middleware xác thực JWT token (signature, exp, iss, aud)
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Lấy token từ Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			return
		}

		// 2. Extract token từ "Bearer <token>"
		scheme, token, ok := strings.Cut(authHeader, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			response.Unauthorized(c, "invalid authorization header format")
			return
		}

		// 3. Verify
		claims, err := verifier.ValidateAccessToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.Unauthorized(c, "token has expired")
				return
			}
			logger.Debug("rejected token: " + err.Error())
			response.Unauthorized(c, "invalid token")
			return
		}

		// 4. Expose claims cho RequireRoles và handlers
		c.Set(ContextClaims, claims)
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRoles, claims.Roles)

		c.Next()
	}
}

// GetClaims trả về claims đã được Auth set
func GetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ContextClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}
