package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"book-catalog-api/internal/domains/user"
	"book-catalog-api/pkg/cache"
	"book-catalog-api/pkg/jwt"
	"book-catalog-api/pkg/logger"
)

// TokenIssuer là phần của jwt.Manager mà service cần
type TokenIssuer interface {
	GenerateAccessToken(identity jwt.Identity, roles []string) (string, time.Time, error)
}

// Options cấu hình password hashing và login throttling
type Options struct {
	BcryptCost       int
	LoginMaxAttempts int           // <= 0: tắt throttling
	LoginLockout     time.Duration // cửa sổ đếm login sai
}

// userService implement user.Service interface
type userService struct {
	repo   user.Repository
	cache  cache.Cache
	tokens TokenIssuer
	opts   Options

	// dummyHash dùng khi email không tồn tại, để thời gian phản hồi tương đương
	dummyHash []byte
}

// NewUserService tạo service instance
func NewUserService(repo user.Repository, c cache.Cache, tokens TokenIssuer, opts Options) user.Service {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), opts.BcryptCost)
	if err != nil {
		logger.Error("generate dummy password hash", err)
	}

	return &userService{
		repo:      repo,
		cache:     c,
		tokens:    tokens,
		opts:      opts,
		dummyHash: dummy,
	}
}

// ========================================
// AUTHENTICATION
// ========================================

// Register tạo user mới với role mặc định "user"
func (s *userService) Register(ctx context.Context, req user.RegisterRequest) (*user.UserDTO, error) {
	req.Normalize()

	// 1. BUSINESS RULE: email chưa được đăng ký
	// Check trước validation: email trùng luôn trả 409, kể cả khi password yếu
	if req.Email != "" {
		exists, err := s.repo.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("check email exists: %w", err)
		}
		if exists {
			return nil, user.ErrEmailAlreadyExists
		}
	}

	// 2. VALIDATE INPUT
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 3. HASH PASSWORD
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// 4. PERSIST (unique index trên email vẫn là chốt chặn cuối)
	newUser := &user.User{
		ID:           uuid.New(),
		UserName:     req.Email,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		FullName:     req.FullName,
	}
	if err := s.repo.Create(ctx, newUser, user.RoleUser); err != nil {
		if errors.Is(err, user.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info("user registered", map[string]interface{}{
		"user_id": newUser.ID.String(),
	})

	dto := newUser.ToDTO()
	return &dto, nil
}

// Login xác thực user và trả về access token
// Email không tồn tại và sai password đều trả ErrInvalidCredentials
func (s *userService) Login(ctx context.Context, req user.LoginRequest) (*user.LoginResponse, error) {
	// 1. VALIDATE INPUT
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. THROTTLING
	attemptsKey := loginAttemptsKey(req.Email)
	if s.isLockedOut(ctx, attemptsKey) {
		return nil, user.ErrTooManyAttempts
	}

	// 3. FIND USER + VERIFY PASSWORD
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			return nil, fmt.Errorf("find user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		s.recordFailedAttempt(ctx, attemptsKey)
		return nil, user.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		s.recordFailedAttempt(ctx, attemptsKey)
		return nil, user.ErrInvalidCredentials
	}

	s.clearAttempts(ctx, attemptsKey)

	// 4. ISSUE TOKEN
	token, expiresAt, err := s.tokens.GenerateAccessToken(jwt.Identity{
		ID:       u.ID.String(),
		UserName: u.UserName,
		Email:    u.Email,
		FullName: u.FullName,
	}, u.RoleNames())
	if err != nil {
		logger.ErrorFields("failed to generate access token", err, map[string]interface{}{
			"user_id": u.ID.String(),
		})
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	return &user.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// ========================================
// ADMIN
// ========================================

// MakeAdmin gán role admin cho user đã tồn tại
func (s *userService) MakeAdmin(ctx context.Context, req user.MakeAdminRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return err
	}

	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	if u.HasRole(user.RoleAdmin) {
		return user.ErrAlreadyAdmin
	}

	if err := s.repo.AddRole(ctx, u.ID, user.RoleAdmin); err != nil {
		return fmt.Errorf("grant admin role: %w", err)
	}

	logger.Info("user promoted to admin", map[string]interface{}{
		"user_id": u.ID.String(),
	})
	return nil
}

// ========================================
// LOGIN THROTTLING
// ========================================
// Cache lỗi thì bỏ qua throttling (fail open), chỉ log warning

func loginAttemptsKey(email string) string {
	return "login_attempts:" + strings.ToLower(email)
}

func (s *userService) isLockedOut(ctx context.Context, key string) bool {
	if s.cache == nil || s.opts.LoginMaxAttempts <= 0 {
		return false
	}

	var attempts int
	found, err := s.cache.Get(ctx, key, &attempts)
	if err != nil {
		logger.Warn("login throttle lookup failed", map[string]interface{}{"error": err.Error()})
		return false
	}
	return found && attempts >= s.opts.LoginMaxAttempts
}

func (s *userService) recordFailedAttempt(ctx context.Context, key string) {
	if s.cache == nil || s.opts.LoginMaxAttempts <= 0 {
		return
	}

	// Increment + TTL trong một bước: counter không bao giờ bị kẹt không có expiry
	if _, err := s.cache.IncrementWithExpiry(ctx, key, s.opts.LoginLockout); err != nil {
		logger.Warn("login throttle increment failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *userService) clearAttempts(ctx context.Context, key string) {
	if s.cache == nil || s.opts.LoginMaxAttempts <= 0 {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		logger.Warn("login throttle reset failed", map[string]interface{}{"error": err.Error()})
	}
}
