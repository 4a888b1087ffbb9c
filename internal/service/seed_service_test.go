package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-complaint-api/internal/auth"
	"github.com/noah-isme/campus-complaint-api/internal/models"
	"github.com/noah-isme/campus-complaint-api/internal/repository"
)

func TestSeedServiceIsIdempotent(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewSeedService(repository.NewCategoryRepository(db), repository.NewStatusRepository(db), repository.NewUserRepository(db), testLogger())
	ctx := context.Background()

	first, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	require.Equal(t, SeedResult{Categories: 10, Statuses: 7}, first)

	second, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	require.Equal(t, SeedResult{}, second)

	def, err := repository.NewStatusRepository(db).FindDefault(ctx)
	require.NoError(t, err)
	require.Equal(t, "New", def.Name)
}

func TestSeedServiceEnsureAdmin(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewSeedService(repository.NewCategoryRepository(db), repository.NewStatusRepository(db), repository.NewUserRepository(db), testLogger())
	ctx := context.Background()

	_, _, err := svc.EnsureAdmin(ctx, "", "root@campus.test", "secret123")
	require.ErrorIs(t, err, ErrAdminCredentialsRequired)

	user, created, err := svc.EnsureAdmin(ctx, "Root", "Root@Campus.test", "secret123")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, models.RoleAdmin, user.Role)
	require.True(t, auth.CheckPassword(user.Password, "secret123"))

	again, created, err := svc.EnsureAdmin(ctx, "Root", "root@campus.test", "other-pass")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, user.ID, again.ID)
}
