package dto

import (
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/campus-complaint-api/internal/models"
)

// CategoryCount is a complaint count grouped by category.
type CategoryCount struct {
	CategoryID uint   `json:"category_id"`
	Category   string `json:"category"`
	Count      int64  `json:"count"`
}

// StatusCount is a complaint count grouped by status.
type StatusCount struct {
	StatusID uint   `json:"status_id"`
	Status   string `json:"status"`
	Color    string `json:"color"`
	Count    int64  `json:"count"`
}

// RoleCount is a user count grouped by role.
type RoleCount struct {
	Role  string `json:"role"`
	Count int64  `json:"count"`
}

// DashboardResponse aggregates complaint statistics for administrators.
type DashboardResponse struct {
	TotalComplaints      int64               `json:"total_complaints"`
	ResolvedComplaints   int64               `json:"resolved_complaints"`
	PendingComplaints    int64               `json:"pending_complaints"`
	ResolutionRate       float64             `json:"resolution_rate"`
	ComplaintsByCategory []CategoryCount     `json:"complaints_by_category"`
	ComplaintsByStatus   []StatusCount       `json:"complaints_by_status"`
	UsersByRole          []RoleCount         `json:"users_by_role"`
	RecentComplaints     []ComplaintResponse `json:"recent_complaints"`
	GeneratedAt          time.Time           `json:"generated_at"`
	CacheHit             bool                `json:"cache_hit"`
}

// Report types accepted by the reports endpoint.
const (
	ReportComplaints = "complaints"
	ReportUsers      = "users"
	ReportCategories = "categories"
	ReportStatuses   = "statuses"
)

// ReportRequest captures report query parameters. Dates use YYYY-MM-DD.
type ReportRequest struct {
	ReportType string `query:"report_type" json:"report_type" validate:"required,oneof=complaints users categories statuses"`
	DateFrom   string `query:"date_from" json:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo     string `query:"date_to" json:"date_to" validate:"omitempty,datetime=2006-01-02"`
	CategoryID *uint  `query:"category_id" json:"category_id" validate:"omitempty,gt=0"`
	StatusID   *uint  `query:"status_id" json:"status_id" validate:"omitempty,gt=0"`
	Role       string `query:"role" json:"role" validate:"omitempty,oneof=student staff admin"`
}

// UserComplaintCount is a user row with the complaints they filed in the report window.
type UserComplaintCount struct {
	UserResponse
	ComplaintsCount int64 `json:"complaints_count"`
}

// ReportResponse is the report envelope payload. Data holds one of
// []ComplaintResponse, []UserComplaintCount, []CategoryCount or []StatusCount.
type ReportResponse struct {
	ReportType string      `json:"report_type"`
	DateFrom   string      `json:"date_from"`
	DateTo     string      `json:"date_to"`
	Data       interface{} `json:"data"`
}

// AdminActivityListRequest defines filters for retrieving activity logs.
// EntityID only applies together with EntityType.
type AdminActivityListRequest struct {
	Page       int
	PageSize   int
	ActorID    uint
	Action     string
	EntityType string
	EntityID   uint
	Since      *time.Time
}

// AdminActivityResponse serializes activity log entries.
type AdminActivityResponse struct {
	ID         uint                   `json:"id"`
	ActorID    uint                   `json:"actor_id"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uint                  `json:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

// AdminActivityListResponse wraps paginated activity logs.
type AdminActivityListResponse struct {
	Items      []AdminActivityResponse `json:"items"`
	Pagination PaginationMeta          `json:"pagination"`
}

func metadataFromJSON(data datatypes.JSONMap) map[string]interface{} {
	if data == nil {
		return map[string]interface{}{}
	}
	return map[string]interface{}(data)
}

// NewAdminActivityResponse converts a model into an activity DTO.
func NewAdminActivityResponse(entry models.ActivityLog) AdminActivityResponse {
	return AdminActivityResponse{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole.String(),
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   metadataFromJSON(entry.Metadata),
		CreatedAt:  entry.CreatedAt,
	}
}
