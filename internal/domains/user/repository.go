package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository định nghĩa contract cho credential store
type Repository interface {
	// Create tạo user và gán role trong cùng một transaction
	// Returns: ErrEmailAlreadyExists nếu email đã tồn tại
	Create(ctx context.Context, u *User, role Role) error

	// FindByEmail tìm user (kèm roles) theo email, không phân biệt hoa thường
	// Returns: ErrUserNotFound nếu không tìm thấy
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByEmail kiểm tra email đã tồn tại chưa
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// AddRole gán role cho user
	// Returns: ErrRoleNotFound nếu role chưa được seed
	AddRole(ctx context.Context, userID uuid.UUID, role Role) error

	// EnsureRoles tạo các role còn thiếu (idempotent)
	EnsureRoles(ctx context.Context, roles ...Role) error
}
