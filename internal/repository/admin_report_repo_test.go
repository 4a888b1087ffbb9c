package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-complaint-api/internal/models"
)

func TestAdminReportRepositoryAggregates(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	repo := NewAdminReportRepository(db)
	ctx := context.Background()

	now := time.Now()
	old := now.AddDate(0, -3, 0)
	createComplaint(t, db, models.Complaint{UserID: f.student.ID, CategoryID: f.it.ID, StatusID: f.resolved.ID, Subject: "a", Description: "a", IsResolved: true, CreatedAt: now.Add(-time.Hour)})
	createComplaint(t, db, models.Complaint{UserID: f.student.ID, CategoryID: f.it.ID, StatusID: f.newStat.ID, Subject: "b", Description: "b", CreatedAt: now.Add(-2 * time.Hour)})
	createComplaint(t, db, models.Complaint{UserID: f.other.ID, CategoryID: f.academic.ID, StatusID: f.newStat.ID, Subject: "c", Description: "c", CreatedAt: old})

	total, resolved, err := repo.CountComplaints(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Equal(t, int64(1), resolved)

	byCategory, err := repo.CountByCategory(ctx, nil)
	require.NoError(t, err)
	require.Len(t, byCategory, 2)
	require.Equal(t, "IT Services", byCategory[0].Name)
	require.Equal(t, int64(2), byCategory[0].Total)

	window := DateWindow{From: now.AddDate(0, -1, 0), Until: now.Add(time.Hour)}
	windowed, err := repo.CountByCategory(ctx, &window)
	require.NoError(t, err)
	require.Len(t, windowed, 1)

	byStatus, err := repo.CountByStatus(ctx, nil)
	require.NoError(t, err)
	require.Len(t, byStatus, 2)
	require.Equal(t, "New", byStatus[0].Name)
	require.Equal(t, "#3498db", byStatus[0].Color)
	require.Equal(t, int64(2), byStatus[0].Total)

	roles, err := repo.CountUsersByRole(ctx)
	require.NoError(t, err)
	counts := map[string]int64{}
	for _, row := range roles {
		counts[row.Role] = row.Total
	}
	require.Equal(t, map[string]int64{"staff": 1, "student": 2}, counts)

	recent, err := repo.RecentComplaints(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "a", recent[0].Subject)
	require.NotNil(t, recent[0].Category)

	inWindow, err := repo.ComplaintsInWindow(ctx, ReportFilter{Window: window, CategoryID: &f.it.ID})
	require.NoError(t, err)
	require.Len(t, inWindow, 2)

	users, err := repo.UserComplaintCounts(ctx, window, "student")
	require.NoError(t, err)
	require.Len(t, users, 2)
	perUser := map[uint]int64{}
	for _, row := range users {
		perUser[row.ID] = row.ComplaintsCount
	}
	require.Equal(t, int64(2), perUser[f.student.ID])
	require.Equal(t, int64(0), perUser[f.other.ID], "complaints outside the window are not counted")
}

func TestAdminReportRepositoryWindowEndsAtNextMidnight(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	repo := NewAdminReportRepository(db)
	ctx := context.Background()

	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	createComplaint(t, db, models.Complaint{UserID: f.student.ID, CategoryID: f.it.ID, StatusID: f.newStat.ID, Subject: "late", Description: "d", CreatedAt: day.Add(24*time.Hour - 500*time.Millisecond)})
	createComplaint(t, db, models.Complaint{UserID: f.student.ID, CategoryID: f.it.ID, StatusID: f.newStat.ID, Subject: "next", Description: "d", CreatedAt: day.Add(24 * time.Hour)})

	window := DateWindow{From: day, Until: day.AddDate(0, 0, 1)}
	rows, err := repo.CountByCategory(ctx, &window)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, int64(1), rows[0].Total)

	users, err := repo.UserComplaintCounts(ctx, window, "student")
	require.NoError(t, err)
	counts := map[uint]int64{}
	for _, row := range users {
		counts[row.ID] = row.ComplaintsCount
	}
	require.Equal(t, int64(1), counts[f.student.ID])
}
