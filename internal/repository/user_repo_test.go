package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-complaint-api/internal/models"
)

func TestUserRepositoryListFiltersAndSearches(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	sid := "STU-2041"
	f.student.StudentID = &sid
	require.NoError(t, repo.Save(ctx, &f.student))

	students, total, err := repo.List(ctx, UserFilter{Role: "student", PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, students, 2)

	found, total, err := repo.List(ctx, UserFilter{Search: "stu-2041", PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, f.student.ID, found[0].ID)

	_, total, err = repo.List(ctx, UserFilter{Search: "%", PageSize: 10})
	require.NoError(t, err)
	require.Zero(t, total)

	_, total, err = repo.List(ctx, UserFilter{Search: "s_ta", PageSize: 10})
	require.NoError(t, err)
	require.Zero(t, total, "underscore matches only itself")

	byName, _, err := repo.List(ctx, UserFilter{SortField: "name", SortDirection: "asc", PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, "Omar", byName[0].Name)
}

func TestUserRepositoryEmailLookupsIgnoreCase(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user, err := repo.GetByEmail(ctx, "SITA@campus.test")
	require.NoError(t, err)
	require.Equal(t, f.student.ID, user.ID)

	taken, err := repo.EmailTaken(ctx, "Sita@Campus.test", 0)
	require.NoError(t, err)
	require.True(t, taken)

	taken, err = repo.EmailTaken(ctx, "sita@campus.test", f.student.ID)
	require.NoError(t, err)
	require.False(t, taken)
}

func TestUserRepositoryDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	own := createComplaint(t, db, models.Complaint{UserID: f.student.ID, CategoryID: f.academic.ID, StatusID: f.newStat.ID, Subject: "Mine", Description: "m", Attachments: []string{"complaint_attachments/mine.png"}, CreatedAt: time.Now()})
	theirs := createComplaint(t, db, models.Complaint{UserID: f.other.ID, CategoryID: f.academic.ID, StatusID: f.newStat.ID, Subject: "Theirs", Description: "t"})
	require.NoError(t, db.Create(&models.ComplaintResponse{ComplaintID: own.ID, UserID: f.staff.ID, Response: "staff on student complaint"}).Error)
	require.NoError(t, db.Create(&models.ComplaintResponse{ComplaintID: theirs.ID, UserID: f.student.ID, Response: "student elsewhere", Attachments: []string{"response_attachments/r.pdf"}}).Error)
	require.NoError(t, db.Create(&models.ComplaintResponse{ComplaintID: theirs.ID, UserID: f.staff.ID, Response: "staff elsewhere"}).Error)

	refs, err := repo.Delete(ctx, f.student.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"complaint_attachments/mine.png", "response_attachments/r.pdf"}, refs)

	var complaints, responses int64
	require.NoError(t, db.Model(&models.Complaint{}).Count(&complaints).Error)
	require.NoError(t, db.Model(&models.ComplaintResponse{}).Count(&responses).Error)
	require.Equal(t, int64(1), complaints)
	require.Equal(t, int64(1), responses)

	_, err = repo.GetByID(ctx, f.student.ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	_, err = repo.Delete(ctx, f.student.ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
