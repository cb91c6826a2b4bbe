package user

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// Password policy của credential store
var (
	reUpper  = regexp.MustCompile(`[A-Z]`)
	reLower  = regexp.MustCompile(`[a-z]`)
	reDigit  = regexp.MustCompile(`[0-9]`)
	reSymbol = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// ========================================
// AUTH DTOs
// ========================================

type RegisterRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trim whitespace trước khi validate
func (r *RegisterRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName,
			validation.Required.Error("full name is required"),
			validation.Length(1, 256),
		),
		validation.Field(&r.Email,
			validation.Required.Error("email address is required"),
			is.EmailFormat.Error("invalid email address"),
			validation.Length(3, 256),
		),
		validation.Field(&r.Password, passwordRules()...),
	)
}

func passwordRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("password is required"),
		validation.Length(6, 128).Error("password must be 6-128 characters"),
		validation.Match(reUpper).Error("password must contain at least one uppercase letter"),
		validation.Match(reLower).Error("password must contain at least one lowercase letter"),
		validation.Match(reDigit).Error("password must contain at least one digit"),
		validation.Match(reSymbol).Error("password must contain at least one non-alphanumeric character"),
	}
}

// ValidatePassword áp dụng password policy cho password không đi qua RegisterRequest (vd: admin seed)
func ValidatePassword(password string) error {
	return validation.Validate(password, passwordRules()...)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required.Error("email is required")),
		validation.Field(&r.Password, validation.Required.Error("password is required")),
	)
}

// LoginResponse - JWT access token
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type MakeAdminRequest struct {
	Email string `json:"email"`
}

func (r MakeAdminRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required.Error("email is required")),
	)
}

// UserDTO không chứa sensitive data
type UserDTO struct {
	ID       uuid.UUID `json:"id"`
	UserName string    `json:"userName"`
	Email    string    `json:"email"`
	FullName string    `json:"fullName"`
	Roles    []string  `json:"roles"`
}
