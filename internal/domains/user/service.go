package user

import (
	"context"
)

// Service định nghĩa business logic layer contract
type Service interface {
	// Authentication
	Register(ctx context.Context, req RegisterRequest) (*UserDTO, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)

	// Admin
	MakeAdmin(ctx context.Context, req MakeAdminRequest) error
}
