package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"book-catalog-api/internal/domains/user"
	"book-catalog-api/pkg/logger"
)

// SeedConfig là tài khoản admin mặc định
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
	BcryptCost    int
}

// Seed chạy một lần lúc startup:
//  1. tạo roles admin, user nếu chưa có
//  2. tạo tài khoản admin mặc định nếu email chưa tồn tại
func Seed(ctx context.Context, repo user.Repository, cfg SeedConfig) error {
	email := strings.TrimSpace(cfg.AdminEmail)
	if email == "" || cfg.AdminPassword == "" {
		return user.ErrAdminNotConfigured
	}

	if err := user.ValidatePassword(cfg.AdminPassword); err != nil {
		return fmt.Errorf("admin password does not meet policy: %w", err)
	}

	if err := repo.EnsureRoles(ctx, user.AllRoles()...); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	exists, err := repo.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check admin exists: %w", err)
	}
	if exists {
		return nil
	}

	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), cost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &user.User{
		ID:           uuid.New(),
		UserName:     email,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Administrator",
	}
	if err := repo.Create(ctx, admin, user.RoleAdmin); err != nil {
		// Instance khác vừa seed xong
		if errors.Is(err, user.ErrEmailAlreadyExists) {
			return nil
		}
		return fmt.Errorf("create admin: %w", err)
	}

	logger.Info("default admin account created", map[string]interface{}{
		"email": email,
	})
	return nil
}
