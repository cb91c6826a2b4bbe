package response

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody là phần "error" của envelope
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Success responses
func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NoContent dùng cho 204 - không có body
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error trả về error envelope; code được suy ra từ status
// details có thể là validation.Errors, error, hoặc bất kỳ giá trị JSON nào
func Error(c *gin.Context, statusCode int, message string, details interface{}) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Error: &ErrorBody{
			Code:    codeFromStatus(statusCode),
			Message: message,
			Details: normalizeDetails(details),
		},
	})
}

// Abort giống Error nhưng dừng middleware chain
func Abort(c *gin.Context, statusCode int, message string) {
	Error(c, statusCode, message, nil)
	c.Abort()
}

// Common error responses
func BadRequest(c *gin.Context, message string, details interface{}) {
	Error(c, http.StatusBadRequest, message, details)
}

func Unauthorized(c *gin.Context, message string) {
	Abort(c, http.StatusUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Abort(c, http.StatusForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}

func Conflict(c *gin.Context, message string, details interface{}) {
	Error(c, http.StatusConflict, message, details)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error", nil)
}

// codeFromStatus: 404 -> NOT_FOUND, 429 -> TOO_MANY_REQUESTS
func codeFromStatus(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}

func normalizeDetails(details interface{}) interface{} {
	switch d := details.(type) {
	case nil:
		return nil
	case validation.Errors:
		return d
	case error:
		var verrs validation.Errors
		if errors.As(d, &verrs) {
			return verrs
		}
		return d.Error()
	default:
		return d
	}
}
