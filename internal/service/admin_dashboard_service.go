package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-complaint-api/internal/apperrors"
	"github.com/noah-isme/campus-complaint-api/internal/dto"
	"github.com/noah-isme/campus-complaint-api/internal/observability"
	"github.com/noah-isme/campus-complaint-api/internal/policy"
	"github.com/noah-isme/campus-complaint-api/internal/repository"
)

const (
	dashboardCacheKey     = "dashboard:summary"
	recentComplaintsLimit = 5
	reportDateLayout      = "2006-01-02"
)

// AdminDashboardService aggregates complaint statistics and reports.
type AdminDashboardService interface {
	DashboardInvalidator
	Dashboard(ctx context.Context, actor policy.Actor) (dto.DashboardResponse, error)
	Report(ctx context.Context, actor policy.Actor, req dto.ReportRequest) (dto.ReportResponse, error)
}

type adminDashboardService struct {
	repo       repository.AdminReportRepository
	categories repository.CategoryRepository
	statuses   repository.StatusRepository
	validator  *validator.Validate
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAdminDashboardService constructs the reporting service. A nil cache disables caching.
func NewAdminDashboardService(repo repository.AdminReportRepository, categories repository.CategoryRepository, statuses repository.StatusRepository, validate *validator.Validate, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AdminDashboardService {
	return &adminDashboardService{
		repo:       repo,
		categories: categories,
		statuses:   statuses,
		validator:  validate,
		cache:      cache,
		cacheTTL:   ttl,
		logger:     logger.With().Str("component", "admin_dashboard_service").Logger(),
		now:        time.Now,
	}
}

func (s *adminDashboardService) Dashboard(ctx context.Context, actor policy.Actor) (dto.DashboardResponse, error) {
	if err := requireCapability(actor, policy.CapViewReports, "You do not have permission to access this resource"); err != nil {
		return dto.DashboardResponse{}, err
	}

	tracer := otel.Tracer("github.com/noah-isme/campus-complaint-api/internal/service/admin_dashboard")
	ctx, span := tracer.Start(ctx, "dashboard.aggregate")
	span.SetAttributes(attribute.String("dashboard.cache_key", dashboardCacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, dashboardCacheKey).Result()
		if err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				observability.DashboardCache().WithLabelValues("hit").Inc()
				span.SetAttributes(attribute.Bool("dashboard.cache_hit", true))
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
			span.RecordError(err)
		}
		observability.DashboardCache().WithLabelValues("miss").Inc()
	}

	summary, err := s.buildDashboard(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregate failed")
		return dto.DashboardResponse{}, err
	}
	span.SetAttributes(attribute.Int64("dashboard.total_complaints", summary.TotalComplaints))

	if s.cache != nil {
		payload, err := json.Marshal(summary)
		if err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
				span.RecordError(err)
			}
		}
	}

	return summary, nil
}

// Invalidate drops the cached dashboard. Errors are logged only.
func (s *adminDashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
}

func (s *adminDashboardService) buildDashboard(ctx context.Context) (dto.DashboardResponse, error) {
	total, resolved, err := s.repo.CountComplaints(ctx)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	byCategory, err := s.repo.CountByCategory(ctx, nil)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	byStatus, err := s.repo.CountByStatus(ctx, nil)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	byRole, err := s.repo.CountUsersByRole(ctx)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	recent, err := s.repo.RecentComplaints(ctx, recentComplaintsLimit)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	roles := make([]dto.RoleCount, 0, len(byRole))
	for _, row := range byRole {
		roles = append(roles, dto.RoleCount{Role: row.Role, Count: row.Total})
	}
	recentItems := make([]dto.ComplaintResponse, 0, len(recent))
	for _, complaint := range recent {
		recentItems = append(recentItems, dto.NewComplaintResponse(complaint, true))
	}

	return dto.DashboardResponse{
		TotalComplaints:      total,
		ResolvedComplaints:   resolved,
		PendingComplaints:    total - resolved,
		ResolutionRate:       resolutionRate(total, resolved),
		ComplaintsByCategory: categoryCounts(byCategory),
		ComplaintsByStatus:   statusCounts(byStatus),
		UsersByRole:          roles,
		RecentComplaints:     recentItems,
		GeneratedAt:          s.now().UTC(),
	}, nil
}

func (s *adminDashboardService) Report(ctx context.Context, actor policy.Actor, req dto.ReportRequest) (dto.ReportResponse, error) {
	if err := requireCapability(actor, policy.CapViewReports, "You do not have permission to access this resource"); err != nil {
		return dto.ReportResponse{}, err
	}
	if err := validatePayload(s.validator, req); err != nil {
		return dto.ReportResponse{}, err
	}

	window, err := s.reportWindow(req.DateFrom, req.DateTo)
	if err != nil {
		return dto.ReportResponse{}, err
	}
	if err := s.ensureReportFilters(ctx, req); err != nil {
		return dto.ReportResponse{}, err
	}

	response := dto.ReportResponse{
		ReportType: req.ReportType,
		DateFrom:   window.From.Format(reportDateLayout),
		DateTo:     window.Until.AddDate(0, 0, -1).Format(reportDateLayout),
	}

	switch req.ReportType {
	case dto.ReportComplaints:
		complaints, err := s.repo.ComplaintsInWindow(ctx, repository.ReportFilter{
			Window:     window,
			CategoryID: req.CategoryID,
			StatusID:   req.StatusID,
		})
		if err != nil {
			return dto.ReportResponse{}, err
		}
		items := make([]dto.ComplaintResponse, 0, len(complaints))
		for _, complaint := range complaints {
			items = append(items, dto.NewComplaintResponse(complaint, true))
		}
		response.Data = items
	case dto.ReportUsers:
		rows, err := s.repo.UserComplaintCounts(ctx, window, req.Role)
		if err != nil {
			return dto.ReportResponse{}, err
		}
		items := make([]dto.UserComplaintCount, 0, len(rows))
		for _, row := range rows {
			items = append(items, dto.UserComplaintCount{
				UserResponse:    dto.NewUserResponse(row.User),
				ComplaintsCount: row.ComplaintsCount,
			})
		}
		response.Data = items
	case dto.ReportCategories:
		rows, err := s.repo.CountByCategory(ctx, &window)
		if err != nil {
			return dto.ReportResponse{}, err
		}
		response.Data = categoryCounts(rows)
	case dto.ReportStatuses:
		rows, err := s.repo.CountByStatus(ctx, &window)
		if err != nil {
			return dto.ReportResponse{}, err
		}
		response.Data = statusCounts(rows)
	}

	return response, nil
}

// reportWindow resolves the report range. Missing bounds default to the last
// month ending today; the end date covers its whole day up to next midnight.
func (s *adminDashboardService) reportWindow(rawFrom, rawTo string) (repository.DateWindow, error) {
	now := s.now()
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	from := today.AddDate(0, -1, 0)
	to := today
	if rawFrom != "" {
		parsed, err := time.ParseInLocation(reportDateLayout, rawFrom, loc)
		if err != nil {
			return repository.DateWindow{}, apperrors.NewValidation("date_from", "The date from is not a valid date.")
		}
		from = parsed
	}
	if rawTo != "" {
		parsed, err := time.ParseInLocation(reportDateLayout, rawTo, loc)
		if err != nil {
			return repository.DateWindow{}, apperrors.NewValidation("date_to", "The date to is not a valid date.")
		}
		to = parsed
	}
	if to.Before(from) {
		return repository.DateWindow{}, apperrors.NewValidation("date_to", "The date to must be a date after or equal to date from.")
	}

	until := time.Date(to.Year(), to.Month(), to.Day()+1, 0, 0, 0, 0, loc)
	return repository.DateWindow{From: from, Until: until}, nil
}

func (s *adminDashboardService) ensureReportFilters(ctx context.Context, req dto.ReportRequest) error {
	validation := &apperrors.ValidationError{}
	if req.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *req.CategoryID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			validation.Add("category_id", "The selected category id is invalid.")
		}
	}
	if req.StatusID != nil {
		if _, err := s.statuses.GetByID(ctx, *req.StatusID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			validation.Add("status_id", "The selected status id is invalid.")
		}
	}
	return validation.OrNil()
}

func resolutionRate(total, resolved int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(resolved)/float64(total)*100*100) / 100
}

func categoryCounts(rows []repository.CategoryCountRow) []dto.CategoryCount {
	items := make([]dto.CategoryCount, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.CategoryCount{CategoryID: row.CategoryID, Category: row.Name, Count: row.Total})
	}
	return items
}

func statusCounts(rows []repository.StatusCountRow) []dto.StatusCount {
	items := make([]dto.StatusCount, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.StatusCount{StatusID: row.StatusID, Status: row.Name, Color: row.Color, Count: row.Total})
	}
	return items
}
