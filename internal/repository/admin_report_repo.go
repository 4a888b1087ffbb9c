package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-complaint-api/internal/models"
)

// DateWindow bounds report queries by complaint creation time. From is
// inclusive and Until is exclusive.
type DateWindow struct {
	From  time.Time
	Until time.Time
}

// CategoryCountRow is a complaint count grouped by category.
type CategoryCountRow struct {
	CategoryID uint   `gorm:"column:category_id"`
	Name       string `gorm:"column:name"`
	Total      int64  `gorm:"column:total"`
}

// StatusCountRow is a complaint count grouped by status.
type StatusCountRow struct {
	StatusID uint   `gorm:"column:status_id"`
	Name     string `gorm:"column:name"`
	Color    string `gorm:"column:color"`
	Total    int64  `gorm:"column:total"`
}

// RoleCountRow is a user count grouped by role.
type RoleCountRow struct {
	Role  string `gorm:"column:role"`
	Total int64  `gorm:"column:total"`
}

// UserComplaintCountRow is a user with the number of complaints they filed.
type UserComplaintCountRow struct {
	models.User
	ComplaintsCount int64 `gorm:"column:complaints_count"`
}

// ReportFilter narrows the complaints report.
type ReportFilter struct {
	Window     DateWindow
	CategoryID *uint
	StatusID   *uint
}

// AdminReportRepository supplies the aggregates behind the dashboard and reports.
type AdminReportRepository interface {
	CountComplaints(ctx context.Context) (total int64, resolved int64, err error)
	CountByCategory(ctx context.Context, window *DateWindow) ([]CategoryCountRow, error)
	CountByStatus(ctx context.Context, window *DateWindow) ([]StatusCountRow, error)
	CountUsersByRole(ctx context.Context) ([]RoleCountRow, error)
	RecentComplaints(ctx context.Context, limit int) ([]models.Complaint, error)
	ComplaintsInWindow(ctx context.Context, filter ReportFilter) ([]models.Complaint, error)
	UserComplaintCounts(ctx context.Context, window DateWindow, role string) ([]UserComplaintCountRow, error)
}

type adminReportRepository struct {
	db *gorm.DB
}

// NewAdminReportRepository constructs the reporting repository.
func NewAdminReportRepository(db *gorm.DB) AdminReportRepository {
	return &adminReportRepository{db: db}
}

func (r *adminReportRepository) CountComplaints(ctx context.Context) (int64, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Complaint{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}

	var resolved int64
	if err := r.db.WithContext(ctx).Model(&models.Complaint{}).
		Where("is_resolved = ?", true).
		Count(&resolved).Error; err != nil {
		return 0, 0, err
	}
	return total, resolved, nil
}

func (r *adminReportRepository) CountByCategory(ctx context.Context, window *DateWindow) ([]CategoryCountRow, error) {
	query := r.db.WithContext(ctx).Table("complaints").
		Select("complaints.category_id AS category_id, complaint_categories.name AS name, COUNT(complaints.id) AS total").
		Joins("JOIN complaint_categories ON complaint_categories.id = complaints.category_id")
	query = inWindow(query, window)

	var rows []CategoryCountRow
	err := query.Group("complaints.category_id, complaint_categories.name").
		Order("total DESC").
		Order("complaint_categories.name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *adminReportRepository) CountByStatus(ctx context.Context, window *DateWindow) ([]StatusCountRow, error) {
	query := r.db.WithContext(ctx).Table("complaints").
		Select("complaints.status_id AS status_id, complaint_statuses.name AS name, complaint_statuses.color AS color, COUNT(complaints.id) AS total").
		Joins("JOIN complaint_statuses ON complaint_statuses.id = complaints.status_id")
	query = inWindow(query, window)

	var rows []StatusCountRow
	err := query.Group("complaints.status_id, complaint_statuses.name, complaint_statuses.color").
		Order("total DESC").
		Order("complaint_statuses.name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *adminReportRepository) CountUsersByRole(ctx context.Context) ([]RoleCountRow, error) {
	var rows []RoleCountRow
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("role, COUNT(*) AS total").
		Group("role").
		Order("role ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *adminReportRepository) RecentComplaints(ctx context.Context, limit int) ([]models.Complaint, error) {
	if limit <= 0 {
		limit = 5
	}
	var complaints []models.Complaint
	err := withComplaintRelations(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&complaints).Error
	return complaints, err
}

func (r *adminReportRepository) ComplaintsInWindow(ctx context.Context, filter ReportFilter) ([]models.Complaint, error) {
	query := inWindow(r.db.WithContext(ctx).Model(&models.Complaint{}), &filter.Window)
	if filter.CategoryID != nil {
		query = query.Where("complaints.category_id = ?", *filter.CategoryID)
	}
	if filter.StatusID != nil {
		query = query.Where("complaints.status_id = ?", *filter.StatusID)
	}

	var complaints []models.Complaint
	err := withComplaintRelations(query).
		Order("complaints.created_at ASC").
		Order("complaints.id ASC").
		Find(&complaints).Error
	return complaints, err
}

// UserComplaintCounts lists every user, optionally of one role, with the
// number of complaints they filed inside the window.
func (r *adminReportRepository) UserComplaintCounts(ctx context.Context, window DateWindow, role string) ([]UserComplaintCountRow, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).
		Select("users.*, COUNT(complaints.id) AS complaints_count").
		Joins("LEFT JOIN complaints ON complaints.user_id = users.id AND complaints.created_at >= ? AND complaints.created_at < ?", window.From, window.Until)
	if role != "" {
		query = query.Where("users.role = ?", role)
	}

	var rows []UserComplaintCountRow
	err := query.Group("users.id").Order("users.id ASC").Scan(&rows).Error
	return rows, err
}

func inWindow(query *gorm.DB, window *DateWindow) *gorm.DB {
	if window == nil {
		return query
	}
	return query.Where("complaints.created_at >= ? AND complaints.created_at < ?", window.From, window.Until)
}
