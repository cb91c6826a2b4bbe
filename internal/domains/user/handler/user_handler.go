package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"book-catalog-api/internal/domains/user"
	"book-catalog-api/internal/shared/response"
	"book-catalog-api/pkg/logger"
)

// UserHandler xử lý HTTP requests cho auth endpoints
type UserHandler struct {
	service user.Service
}

// NewUserHandler tạo handler instance
func NewUserHandler(service user.Service) *UserHandler {
	return &UserHandler{service: service}
}

// ========================================
// AUTHENTICATION ENDPOINTS
// ========================================

// Register xử lý POST /auth/register
func (h *UserHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := h.bindJSON(c, &req); err != nil {
		return
	}

	userDTO, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "User registered successfully", userDTO)
}

// Login xử lý POST /auth/login
func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := h.bindJSON(c, &req); err != nil {
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Login successful", resp)
}

// MakeAdmin xử lý POST /auth/make-admin (admin only)
func (h *UserHandler) MakeAdmin(c *gin.Context) {
	var req user.MakeAdminRequest
	if err := h.bindJSON(c, &req); err != nil {
		return
	}

	if err := h.service.MakeAdmin(c.Request.Context(), req); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "User has been promoted to admin successfully", nil)
}

// ========================================
// HELPER FUNCTIONS
// ========================================

// handleError map domain errors thành HTTP responses
func (h *UserHandler) handleError(c *gin.Context, err error) {
	var verrs validation.Errors

	switch {
	// 400 Bad Request
	case errors.As(err, &verrs):
		response.BadRequest(c, "Validation failed", verrs)

	// 401 Unauthorized
	case errors.Is(err, user.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "Invalid credentials", nil)

	// 404 Not Found
	case errors.Is(err, user.ErrUserNotFound):
		response.NotFound(c, "User not found")

	// 409 Conflict
	case errors.Is(err, user.ErrEmailAlreadyExists),
		errors.Is(err, user.ErrAlreadyAdmin):
		response.Conflict(c, err.Error(), nil)

	// 429 Too Many Requests
	case errors.Is(err, user.ErrTooManyAttempts):
		response.Error(c, http.StatusTooManyRequests, err.Error(), nil)

	// 500 - không expose details cho client
	default:
		logger.ErrorFields("auth request failed", err, map[string]interface{}{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		})
		response.InternalServerError(c)
	}
}

func (h *UserHandler) bindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "Invalid request body", err)
		return err
	}
	return nil
}
