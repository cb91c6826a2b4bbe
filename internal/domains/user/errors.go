package user

import "errors"

// Repository-level errors
var (
	// Not Found
	ErrUserNotFound = errors.New("user not found")
	ErrRoleNotFound = errors.New("role not found")

	// Conflict
	ErrEmailAlreadyExists = errors.New("email is already registered")
	ErrAlreadyAdmin       = errors.New("user is already an admin")
)

// Service-level errors
var (
	// Authentication
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Rate Limiting
	ErrTooManyAttempts = errors.New("too many login attempts, please try again later")

	// Seeding
	ErrAdminNotConfigured = errors.New("default admin email and password must be configured")
)
