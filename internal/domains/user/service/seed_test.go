package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"book-catalog-api/internal/domains/user"
	"book-catalog-api/internal/domains/user/service"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	cfg := service.SeedConfig{
		AdminEmail:    "admin@catalog.local",
		AdminPassword: "Admin123!",
		BcryptCost:    bcrypt.MinCost,
	}

	t.Run("requires admin credentials", func(t *testing.T) {
		err := service.Seed(ctx, newFakeRepo(), service.SeedConfig{AdminEmail: "admin@catalog.local"})
		assert.ErrorIs(t, err, user.ErrAdminNotConfigured)
	})

	t.Run("rejects admin password below policy", func(t *testing.T) {
		repo := newFakeRepo()
		weak := cfg
		weak.AdminPassword = "admin"

		err := service.Seed(ctx, repo, weak)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "admin password")
		assert.Empty(t, repo.users)
	})

	t.Run("creates admin once", func(t *testing.T) {
		repo := &fakeRepo{users: map[string]*user.User{}, roles: map[user.Role]bool{}}

		require.NoError(t, service.Seed(ctx, repo, cfg))
		first, err := repo.FindByEmail(ctx, cfg.AdminEmail)
		require.NoError(t, err)
		assert.True(t, first.HasRole(user.RoleAdmin))
		assert.True(t, repo.roles[user.RoleUser])

		require.NoError(t, service.Seed(ctx, repo, cfg))
		second, err := repo.FindByEmail(ctx, cfg.AdminEmail)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Len(t, repo.users, 1)
	})
}
