package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-complaint-api/internal/apperrors"
	"github.com/noah-isme/campus-complaint-api/internal/auth"
	"github.com/noah-isme/campus-complaint-api/internal/dto"
	"github.com/noah-isme/campus-complaint-api/internal/models"
	"github.com/noah-isme/campus-complaint-api/internal/repository"
)

func TestAdminUserServiceCRUD(t *testing.T) {
	db := setupServiceDB(t)
	c := seedCampus(t, db)
	activity := &memoryActivityRepo{}
	dashboard := &invalidationCounter{}
	svc := NewAdminUserService(repository.NewUserRepository(db), nil, validatorForTests(), NewActivityService(activity, testLogger()), dashboard, testLogger())
	svc.(*adminUserService).hash = fastHash
	ctx := context.Background()
	admin := c.actor(c.admin)

	_, err := svc.List(ctx, c.actor(c.staff), dto.AdminUserListRequest{})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	students, err := svc.List(ctx, admin, dto.AdminUserListRequest{Role: "Student"})
	require.NoError(t, err)
	require.Equal(t, int64(2), students.Pagination.TotalItems)

	_, err = svc.List(ctx, admin, dto.AdminUserListRequest{Role: "teacher"})
	require.Contains(t, validationFields(t, err), "role")

	created, err := svc.Create(ctx, admin, dto.AdminUserCreateRequest{Name: "Tom", Email: "tom@campus.test", Password: "secret123", Role: "staff"})
	require.NoError(t, err)
	require.Equal(t, "staff", created.Role)

	_, err = svc.Create(ctx, admin, dto.AdminUserCreateRequest{Name: "Tom", Email: "tom@campus.test", Password: "secret123", Role: "staff"})
	require.Contains(t, validationFields(t, err), "email")

	_, err = svc.Create(ctx, admin, dto.AdminUserCreateRequest{Name: "Tim", Email: "tim@campus.test", Password: "secret123", Role: "janitor"})
	require.Contains(t, validationFields(t, err), "role")

	updated, err := svc.Update(ctx, admin, created.ID, dto.AdminUserUpdateRequest{Role: ptrString("admin"), Password: ptrString("newsecret1")})
	require.NoError(t, err)
	require.Equal(t, "admin", updated.Role)

	var stored models.User
	require.NoError(t, db.First(&stored, created.ID).Error)
	require.True(t, auth.CheckPassword(stored.Password, "newsecret1"))

	_, err = svc.Update(ctx, admin, 999, dto.AdminUserUpdateRequest{Name: ptrString("Ghost")})
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.GreaterOrEqual(t, dashboard.calls, 2)
	require.Len(t, activity.entries, 2)
	require.Equal(t, "***", activity.entries[1].Metadata["password"])
}

func TestAdminUserServiceDelete(t *testing.T) {
	db := setupServiceDB(t)
	c := seedCampus(t, db)
	storage := newMemoryStorage()
	svc := NewAdminUserService(repository.NewUserRepository(db), NewAttachmentService(storage, 64, testLogger()), validatorForTests(), nil, nil, testLogger())
	ctx := context.Background()

	ref := ComplaintAttachmentFolder + "/proof.png"
	storage.blobs[ref] = pngBytes
	complaint := models.Complaint{UserID: c.student.ID, CategoryID: c.it.ID, StatusID: c.newStat.ID, Subject: "Wifi", Description: "Down", Attachments: []string{ref}}
	require.NoError(t, db.Create(&complaint).Error)

	err := svc.Delete(ctx, c.actor(c.admin), c.admin.ID)
	require.ErrorIs(t, err, apperrors.ErrConflict)
	require.EqualError(t, err, "You cannot delete your own account")

	require.NoError(t, svc.Delete(ctx, c.actor(c.admin), c.student.ID))
	require.False(t, storage.has(ref))

	var complaints int64
	require.NoError(t, db.Model(&models.Complaint{}).Where("user_id = ?", c.student.ID).Count(&complaints).Error)
	require.Zero(t, complaints)

	require.ErrorIs(t, svc.Delete(ctx, c.actor(c.admin), c.student.ID), apperrors.ErrNotFound)
}
