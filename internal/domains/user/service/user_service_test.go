package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"book-catalog-api/internal/domains/user"
	"book-catalog-api/internal/domains/user/service"
	"book-catalog-api/pkg/cache"
	"book-catalog-api/pkg/jwt"
)

// fakeRepo là in-memory user.Repository
type fakeRepo struct {
	mu    sync.Mutex
	users map[string]*user.User // key: lower(email)
	roles map[user.Role]bool

	findErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users: make(map[string]*user.User),
		roles: map[user.Role]bool{user.RoleAdmin: true, user.RoleUser: true},
	}
}

func (r *fakeRepo) Create(_ context.Context, u *user.User, role user.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, ok := r.users[key]; ok {
		return user.ErrEmailAlreadyExists
	}
	if !r.roles[role] {
		return user.ErrRoleNotFound
	}
	cp := *u
	cp.Roles = []user.Role{role}
	r.users[key] = &cp
	u.Roles = cp.Roles
	return nil
}

func (r *fakeRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	cp := *u
	cp.Roles = append([]user.Role(nil), u.Roles...)
	return &cp, nil
}

func (r *fakeRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[strings.ToLower(email)]
	return ok, nil
}

func (r *fakeRepo) AddRole(_ context.Context, userID uuid.UUID, role user.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == userID {
			if !u.HasRole(role) {
				u.Roles = append(u.Roles, role)
			}
			return nil
		}
	}
	return user.ErrUserNotFound
}

func (r *fakeRepo) EnsureRoles(_ context.Context, roles ...user.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range roles {
		r.roles[role] = true
	}
	return nil
}

// failingIssuer luôn lỗi khi ký token
type failingIssuer struct{}

func (failingIssuer) GenerateAccessToken(jwt.Identity, []string) (string, time.Time, error) {
	return "", time.Time{}, errors.New("signing key unavailable")
}

// brokenCache: mọi thao tác đều lỗi, như Redis mất kết nối
type brokenCache struct{}

var errCacheDown = errors.New("cache unavailable")

func (brokenCache) Get(context.Context, string, interface{}) (bool, error) {
	return false, errCacheDown
}
func (brokenCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errCacheDown
}
func (brokenCache) Delete(context.Context, ...string) error          { return errCacheDown }
func (brokenCache) Ping(context.Context) error                       { return errCacheDown }
func (brokenCache) Increment(context.Context, string) (int64, error) { return 0, errCacheDown }
func (brokenCache) IncrementWithExpiry(context.Context, string, time.Duration) (int64, error) {
	return 0, errCacheDown
}
func (brokenCache) Expire(context.Context, string, time.Duration) error { return errCacheDown }
func (brokenCache) TTL(context.Context, string) (time.Duration, error)  { return 0, errCacheDown }

type fixture struct {
	repo  *fakeRepo
	cache *cache.MemoryCache
	jwt   *jwt.Manager
	svc   user.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	manager, err := jwt.NewManager(jwt.Config{
		Secret:   "test-secret",
		Issuer:   "book-catalog-api",
		Audience: "book-catalog-clients",
	})
	require.NoError(t, err)

	f := &fixture{
		repo:  newFakeRepo(),
		cache: cache.NewMemoryCache(),
		jwt:   manager,
	}
	t.Cleanup(func() { _ = f.cache.Close() })
	f.svc = service.NewUserService(f.repo, f.cache, manager, service.Options{
		BcryptCost:       bcrypt.MinCost,
		LoginMaxAttempts: 3,
		LoginLockout:     time.Minute,
	})
	return f
}

func validRegister() user.RegisterRequest {
	return user.RegisterRequest{FullName: "A", Email: "a@x.com", Password: "Secret1!"}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with default role", func(t *testing.T) {
		f := newFixture(t)

		dto, err := f.svc.Register(ctx, validRegister())
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", dto.Email)
		assert.Equal(t, "a@x.com", dto.UserName)
		assert.Equal(t, []string{"user"}, dto.Roles)

		stored, err := f.repo.FindByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.NotEqual(t, "Secret1!", stored.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Secret1!")))
	})

	t.Run("second registration conflicts", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Register(ctx, validRegister())
		require.NoError(t, err)

		req := validRegister()
		req.Email = "A@X.com"
		_, err = f.svc.Register(ctx, req)
		assert.ErrorIs(t, err, user.ErrEmailAlreadyExists)
	})

	t.Run("taken email conflicts before password policy", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Register(ctx, validRegister())
		require.NoError(t, err)

		req := validRegister()
		req.Password = "weak"
		_, err = f.svc.Register(ctx, req)
		assert.ErrorIs(t, err, user.ErrEmailAlreadyExists)
	})

	t.Run("short domain email is accepted", func(t *testing.T) {
		f := newFixture(t)

		req := validRegister()
		req.Email = "b@x.io"
		dto, err := f.svc.Register(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "b@x.io", dto.Email)
	})

	t.Run("field violations are reported together", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Register(ctx, user.RegisterRequest{Email: "not-an-email", Password: "short"})
		require.Error(t, err)

		var verrs validation.Errors
		require.True(t, errors.As(err, &verrs))
		assert.Contains(t, verrs, "fullName")
		assert.Contains(t, verrs, "email")
		assert.Contains(t, verrs, "password")
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("issues verifiable token", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Register(ctx, validRegister())
		require.NoError(t, err)

		resp, err := f.svc.Login(ctx, user.LoginRequest{Email: "a@x.com", Password: "Secret1!"})
		require.NoError(t, err)
		require.NotEmpty(t, resp.Token)

		claims, err := f.jwt.ValidateAccessToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", claims.Subject)
		assert.Equal(t, "A", claims.FullName)
		assert.Equal(t, []string{"user"}, claims.Roles)
	})

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Register(ctx, validRegister())
		require.NoError(t, err)

		_, errUnknown := f.svc.Login(ctx, user.LoginRequest{Email: "nobody@x.com", Password: "Secret1!"})
		_, errWrong := f.svc.Login(ctx, user.LoginRequest{Email: "a@x.com", Password: "Wrong1!"})

		assert.ErrorIs(t, errUnknown, user.ErrInvalidCredentials)
		assert.ErrorIs(t, errWrong, user.ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
	})

	t.Run("missing fields are validation errors", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Login(ctx, user.LoginRequest{Email: " "})
		var verrs validation.Errors
		assert.True(t, errors.As(err, &verrs))
	})

	t.Run("locks out after repeated failures", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Register(ctx, validRegister())
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err := f.svc.Login(ctx, user.LoginRequest{Email: "a@x.com", Password: "Wrong1!"})
			require.ErrorIs(t, err, user.ErrInvalidCredentials)
		}

		_, err = f.svc.Login(ctx, user.LoginRequest{Email: "a@x.com", Password: "Secret1!"})
		assert.ErrorIs(t, err, user.ErrTooManyAttempts)

		ttl, err := f.cache.TTL(ctx, "login_attempts:a@x.com")
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("counter without expiry gets the lockout window", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Register(ctx, validRegister())
		require.NoError(t, err)

		// Counter còn sót lại không có TTL (vd: Expire từng thất bại)
		_, err = f.cache.Increment(ctx, "login_attempts:a@x.com")
		require.NoError(t, err)

		_, err = f.svc.Login(ctx, user.LoginRequest{Email: "a@x.com", Password: "Wrong1!"})
		require.ErrorIs(t, err, user.ErrInvalidCredentials)

		ttl, err := f.cache.TTL(ctx, "login_attempts:a@x.com")
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	})

	t.Run("throttling is off by default", func(t *testing.T) {
		repo := newFakeRepo()
		c := cache.NewMemoryCache()
		t.Cleanup(func() { _ = c.Close() })
		svc := service.NewUserService(repo, c, newFixture(t).jwt, service.Options{BcryptCost: bcrypt.MinCost})
		_, err := svc.Register(ctx, validRegister())
		require.NoError(t, err)

		for i := 0; i < 10; i++ {
			_, err := svc.Login(ctx, user.LoginRequest{Email: "a@x.com", Password: "Wrong1!"})
			require.ErrorIs(t, err, user.ErrInvalidCredentials)
		}
		_, err = svc.Login(ctx, user.LoginRequest{Email: "a@x.com", Password: "Secret1!"})
		assert.NoError(t, err)
	})

	t.Run("cache outage does not block login", func(t *testing.T) {
		repo := newFakeRepo()
		svc := service.NewUserService(repo, brokenCache{}, newFixture(t).jwt, service.Options{
			BcryptCost:       bcrypt.MinCost,
			LoginMaxAttempts: 1,
			LoginLockout:     time.Minute,
		})
		_, err := svc.Register(ctx, validRegister())
		require.NoError(t, err)

		_, err = svc.Login(ctx, user.LoginRequest{Email: "a@x.com", Password: "Wrong1!"})
		require.ErrorIs(t, err, user.ErrInvalidCredentials)

		resp, err := svc.Login(ctx, user.LoginRequest{Email: "a@x.com", Password: "Secret1!"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("success clears failed attempts", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Register(ctx, validRegister())
		require.NoError(t, err)

		_, _ = f.svc.Login(ctx, user.LoginRequest{Email: "a@x.com", Password: "Wrong1!"})
		_, err = f.svc.Login(ctx, user.LoginRequest{Email: "a@x.com", Password: "Secret1!"})
		require.NoError(t, err)

		var attempts int
		found, err := f.cache.Get(ctx, "login_attempts:a@x.com", &attempts)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("signing failure is an internal error", func(t *testing.T) {
		repo := newFakeRepo()
		svc := service.NewUserService(repo, nil, failingIssuer{}, service.Options{BcryptCost: bcrypt.MinCost})
		_, err := svc.Register(ctx, validRegister())
		require.NoError(t, err)

		_, err = svc.Login(ctx, user.LoginRequest{Email: "a@x.com", Password: "Secret1!"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("store failure is not reported as bad credentials", func(t *testing.T) {
		f := newFixture(t)
		f.repo.findErr = errors.New("connection reset")

		_, err := f.svc.Login(ctx, user.LoginRequest{Email: "a@x.com", Password: "Secret1!"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, user.ErrInvalidCredentials)
	})
}

func TestMakeAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("promotes existing user", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Register(ctx, validRegister())
		require.NoError(t, err)

		require.NoError(t, f.svc.MakeAdmin(ctx, user.MakeAdminRequest{Email: "a@x.com"}))

		u, err := f.repo.FindByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.True(t, u.HasRole(user.RoleAdmin))
		assert.True(t, u.HasRole(user.RoleUser))
	})

	t.Run("already admin conflicts", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Register(ctx, validRegister())
		require.NoError(t, err)
		require.NoError(t, f.svc.MakeAdmin(ctx, user.MakeAdminRequest{Email: "a@x.com"}))

		err = f.svc.MakeAdmin(ctx, user.MakeAdminRequest{Email: "a@x.com"})
		assert.ErrorIs(t, err, user.ErrAlreadyAdmin)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.MakeAdmin(ctx, user.MakeAdminRequest{Email: "ghost@x.com"})
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("email required", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.MakeAdmin(ctx, user.MakeAdminRequest{})
		var verrs validation.Errors
		assert.True(t, errors.As(err, &verrs))
	})
}
