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

func TestComplaintRepositoryListFiltersSearchAndScope(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	repo := NewComplaintRepository(db)
	ctx := context.Background()

	now := time.Now()
	createComplaint(t, db, models.Complaint{UserID: f.student.ID, CategoryID: f.academic.ID, StatusID: f.newStat.ID, Subject: "Exam timetable clash", Description: "Two exams overlap", CreatedAt: now.Add(-3 * time.Hour)})
	createComplaint(t, db, models.Complaint{UserID: f.student.ID, CategoryID: f.it.ID, StatusID: f.resolved.ID, Subject: "Wifi down", Description: "Library WIFI keeps dropping", IsResolved: true, CreatedAt: now.Add(-2 * time.Hour)})
	createComplaint(t, db, models.Complaint{UserID: f.other.ID, CategoryID: f.it.ID, StatusID: f.newStat.ID, Subject: "Printer jam", Description: "Lab printer broken", CreatedAt: now.Add(-time.Hour)})

	all, total, err := repo.List(ctx, ComplaintFilter{PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Equal(t, "Printer jam", all[0].Subject, "newest first by default")
	require.NotNil(t, all[0].Category)
	require.NotNil(t, all[0].Status)
	require.NotNil(t, all[0].User)

	own, total, err := repo.List(ctx, ComplaintFilter{UserID: &f.student.ID, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	for _, c := range own {
		require.Equal(t, f.student.ID, c.UserID)
	}

	found, total, err := repo.List(ctx, ComplaintFilter{Search: "wifi", PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Wifi down", found[0].Subject)

	found, total, err = repo.List(ctx, ComplaintFilter{Search: "broken", PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total, "search must match descriptions too")
	require.Equal(t, "Printer jam", found[0].Subject)

	resolved := false
	found, total, err = repo.List(ctx, ComplaintFilter{CategoryID: &f.it.ID, IsResolved: &resolved, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total, "filters combine with AND")
	require.Equal(t, "Printer jam", found[0].Subject)

	asc, _, err := repo.List(ctx, ComplaintFilter{SortField: "subject", SortDirection: "asc", PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, "Exam timetable clash", asc[0].Subject)

	paged, total, err := repo.List(ctx, ComplaintFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, paged, 1)
	require.Equal(t, "Exam timetable clash", paged[0].Subject)
}

func TestComplaintRepositorySearchMatchesWildcardsLiterally(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	repo := NewComplaintRepository(db)
	ctx := context.Background()

	createComplaint(t, db, models.Complaint{UserID: f.student.ID, CategoryID: f.it.ID, StatusID: f.newStat.ID, Subject: "Printer jam", Description: "Lab printer broken"})
	createComplaint(t, db, models.Complaint{UserID: f.student.ID, CategoryID: f.academic.ID, StatusID: f.newStat.ID, Subject: "Fees up 50%", Description: "Tuition rose"})
	createComplaint(t, db, models.Complaint{UserID: f.other.ID, CategoryID: f.it.ID, StatusID: f.newStat.ID, Subject: "Share lab_b drive", Description: "Path C:\\lab"})

	_, total, err := repo.List(ctx, ComplaintFilter{Search: "%", PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)

	found, total, err := repo.List(ctx, ComplaintFilter{Search: "50%", PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Fees up 50%", found[0].Subject)

	found, total, err = repo.List(ctx, ComplaintFilter{Search: "lab_b", PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Share lab_b drive", found[0].Subject)

	_, total, err = repo.List(ctx, ComplaintFilter{Search: "lab_", PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total, "underscore is not a single-character wildcard")

	_, total, err = repo.List(ctx, ComplaintFilter{Search: `c:\lab`, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
}

func TestComplaintRepositoryListIgnoresUnknownSortField(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	repo := NewComplaintRepository(db)

	createComplaint(t, db, models.Complaint{UserID: f.student.ID, CategoryID: f.academic.ID, StatusID: f.newStat.ID, Subject: "A", Description: "a"})

	items, _, err := repo.List(context.Background(), ComplaintFilter{SortField: "password; DROP TABLE users", PageSize: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestComplaintRepositoryDeleteRemovesThreadAndReturnsRefs(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	repo := NewComplaintRepository(db)
	ctx := context.Background()

	complaint := createComplaint(t, db, models.Complaint{
		UserID: f.student.ID, CategoryID: f.academic.ID, StatusID: f.newStat.ID,
		Subject: "Broken chair", Description: "Room 101",
		Attachments: []string{"complaint_attachments/a.png"},
	})
	keep := createComplaint(t, db, models.Complaint{UserID: f.student.ID, CategoryID: f.academic.ID, StatusID: f.newStat.ID, Subject: "Other", Description: "x"})
	require.NoError(t, db.Create(&models.ComplaintResponse{ComplaintID: complaint.ID, UserID: f.staff.ID, Response: "On it", Attachments: []string{"response_attachments/b.pdf"}}).Error)
	require.NoError(t, db.Create(&models.ComplaintResponse{ComplaintID: keep.ID, UserID: f.staff.ID, Response: "Hello"}).Error)

	refs, err := repo.Delete(ctx, complaint.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"complaint_attachments/a.png", "response_attachments/b.pdf"}, refs)

	_, err = repo.GetByID(ctx, complaint.ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	var remaining int64
	require.NoError(t, db.Model(&models.ComplaintResponse{}).Count(&remaining).Error)
	require.Equal(t, int64(1), remaining)

	_, err = repo.Delete(ctx, complaint.ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestComplaintRepositorySavePersistsResolution(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	repo := NewComplaintRepository(db)
	ctx := context.Background()

	complaint := createComplaint(t, db, models.Complaint{UserID: f.student.ID, CategoryID: f.academic.ID, StatusID: f.newStat.ID, Subject: "Lights", Description: "Flicker"})
	loaded, err := repo.GetByID(ctx, complaint.ID)
	require.NoError(t, err)

	loaded.MarkResolved(true, time.Now())
	loaded.StatusID = f.resolved.ID
	require.NoError(t, repo.Save(ctx, &loaded))

	reloaded, err := repo.GetByID(ctx, complaint.ID)
	require.NoError(t, err)
	require.True(t, reloaded.IsResolved)
	require.NotNil(t, reloaded.ResolvedAt)
	require.Equal(t, "Resolved", reloaded.Status.Name)
}

func TestComplaintResponseRepositoryScopesToComplaint(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	repo := NewComplaintResponseRepository(db)
	ctx := context.Background()

	first := createComplaint(t, db, models.Complaint{UserID: f.student.ID, CategoryID: f.academic.ID, StatusID: f.newStat.ID, Subject: "One", Description: "1"})
	second := createComplaint(t, db, models.Complaint{UserID: f.student.ID, CategoryID: f.academic.ID, StatusID: f.newStat.ID, Subject: "Two", Description: "2"})

	early := models.ComplaintResponse{ComplaintID: first.ID, UserID: f.staff.ID, Response: "first", CreatedAt: time.Now().Add(-time.Minute)}
	late := models.ComplaintResponse{ComplaintID: first.ID, UserID: f.student.ID, Response: "second", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, &late))
	require.NoError(t, repo.Create(ctx, &early))

	thread, err := repo.ListByComplaint(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	require.Equal(t, "first", thread[0].Response, "thread is ascending by creation")
	require.NotNil(t, thread[0].User)

	_, err = repo.GetByID(ctx, second.ID, early.ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	got, err := repo.GetByID(ctx, first.ID, early.ID)
	require.NoError(t, err)
	require.Equal(t, early.ID, got.ID)

	require.NoError(t, repo.Delete(ctx, early.ID))
	require.True(t, errors.Is(repo.Delete(ctx, early.ID), gorm.ErrRecordNotFound))
}
