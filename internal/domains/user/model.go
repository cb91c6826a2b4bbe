package user

import (
	"time"

	"github.com/google/uuid"
)

// User là domain entity - ánh xạ với bảng users, roles lấy từ user_roles
type User struct {
	ID       uuid.UUID `json:"id"`
	UserName string    `json:"userName"`
	Email    string    `json:"email"`

	// Authentication
	PasswordHash string `json:"-"` // Never expose in JSON

	FullName string `json:"fullName"`
	Roles    []Role `json:"roles"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Role là tên nhóm quyền, quan hệ many-to-many với User
type Role string

const (
	RoleUser  Role = "user"  // Default role khi register
	RoleAdmin Role = "admin" // Quản lý catalog và promote user
)

// AllRoles returns all valid roles
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleUser}
}

// IsValid kiểm tra role hợp lệ
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// String implements Stringer interface
func (r Role) String() string {
	return string(r)
}

// HasRole kiểm tra user có role hay không
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleNames dùng khi build token claims
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.String())
	}
	return names
}

// ToDTO strip password hash
func (u *User) ToDTO() UserDTO {
	return UserDTO{
		ID:       u.ID,
		UserName: u.UserName,
		Email:    u.Email,
		FullName: u.FullName,
		Roles:    u.RoleNames(),
	}
}
