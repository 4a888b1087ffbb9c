package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/campus-complaint-api/internal/apperrors"
	"github.com/noah-isme/campus-complaint-api/internal/dto"
	"github.com/noah-isme/campus-complaint-api/internal/models"
	"github.com/noah-isme/campus-complaint-api/internal/policy"
	"github.com/noah-isme/campus-complaint-api/internal/repository"
)

// ActivityEntry captures the details required to persist an audit entry.
type ActivityEntry struct {
	Actor      policy.Actor
	Action     string
	EntityType string
	EntityID   *uint
	Metadata   map[string]interface{}
}

// ActivityRecorder defines behaviour for recording activity logs.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) (dto.AdminActivityResponse, error)
}

// ActivityService exposes methods to query and persist activity logs.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, actor policy.Actor, req dto.AdminActivityListRequest) (dto.AdminActivityListResponse, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
}

// NewActivityService constructs the activity log service.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) (dto.AdminActivityResponse, error) {
	if strings.TrimSpace(entry.Action) == "" {
		return dto.AdminActivityResponse{}, fmt.Errorf("action is required")
	}
	if strings.TrimSpace(entry.EntityType) == "" {
		return dto.AdminActivityResponse{}, fmt.Errorf("entity type is required")
	}

	model := models.ActivityLog{
		ActorID:    entry.Actor.ID,
		ActorRole:  entry.Actor.Role,
		Action:     strings.ToLower(strings.TrimSpace(entry.Action)),
		EntityType: strings.ToLower(strings.TrimSpace(entry.EntityType)),
		EntityID:   entry.EntityID,
		Metadata:   sanitizeMetadata(entry.Metadata),
	}
	if model.ActorRole == "" {
		model.ActorRole = "system"
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Str("action", model.Action).Msg("failed to persist activity log")
		return dto.AdminActivityResponse{}, err
	}

	return dto.NewAdminActivityResponse(model), nil
}

func (s *activityService) List(ctx context.Context, actor policy.Actor, req dto.AdminActivityListRequest) (dto.AdminActivityListResponse, error) {
	if err := requireCapability(actor, policy.CapViewReports, "You do not have permission to view activity logs"); err != nil {
		return dto.AdminActivityListResponse{}, err
	}

	page, pageSize := normalizePaging(req.Page, req.PageSize)
	filter := repository.ActivityLogFilter{
		Page:       page,
		PageSize:   pageSize,
		Action:     strings.ToLower(strings.TrimSpace(req.Action)),
		EntityType: strings.ToLower(strings.TrimSpace(req.EntityType)),
	}
	if req.ActorID > 0 {
		filter.ActorID = &req.ActorID
	}
	if req.EntityID > 0 {
		if filter.EntityType == "" {
			return dto.AdminActivityListResponse{}, apperrors.NewValidation("entity_type", "The entity type field is required when entity id is present.")
		}
		filter.EntityID = &req.EntityID
	}
	if req.Since != nil {
		since := req.Since.UTC()
		filter.Since = &since
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AdminActivityListResponse{}, err
	}

	items := make([]dto.AdminActivityResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewAdminActivityResponse(entry))
	}

	return dto.AdminActivityListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}, nil
}

// recordActivity writes an audit entry; failures are logged, never returned.
func recordActivity(ctx context.Context, recorder ActivityRecorder, logger zerolog.Logger, entry ActivityEntry) {
	if recorder == nil {
		return
	}
	if _, err := recorder.Record(ctx, entry); err != nil {
		logger.Warn().Err(err).Str("action", entry.Action).Msg("activity not recorded")
	}
}

// sanitizeMetadata masks email values and blanks secrets before they reach
// the audit table.
func sanitizeMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	sanitized := make(datatypes.JSONMap, len(metadata))
	for key, value := range metadata {
		lower := strings.ToLower(key)
		switch {
		case strings.Contains(lower, "password"), strings.Contains(lower, "token"):
			sanitized[key] = "***"
		case strings.Contains(lower, "email"):
			if email, ok := value.(string); ok {
				sanitized[key] = maskEmail(email)
			} else {
				sanitized[key] = "***"
			}
		default:
			sanitized[key] = value
		}
	}
	return sanitized
}
