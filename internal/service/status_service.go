package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-complaint-api/internal/apperrors"
	"github.com/noah-isme/campus-complaint-api/internal/dto"
	"github.com/noah-isme/campus-complaint-api/internal/models"
	"github.com/noah-isme/campus-complaint-api/internal/policy"
	"github.com/noah-isme/campus-complaint-api/internal/repository"
)

const statusNotFound = "Status not found"

// StatusService manages complaint workflow statuses.
type StatusService interface {
	List(ctx context.Context, activeOnly bool) ([]dto.StatusResponse, error)
	Get(ctx context.Context, id uint) (dto.StatusResponse, error)
	Create(ctx context.Context, actor policy.Actor, req dto.StatusCreateRequest) (dto.StatusResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uint, req dto.StatusUpdateRequest) (dto.StatusResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uint) error
}

type statusService struct {
	repo      repository.StatusRepository
	validator *validator.Validate
	activity  ActivityRecorder
	dashboard DashboardInvalidator
	logger    zerolog.Logger
}

// NewStatusService constructs the status service.
func NewStatusService(repo repository.StatusRepository, validate *validator.Validate, activity ActivityRecorder, dashboard DashboardInvalidator, logger zerolog.Logger) StatusService {
	return &statusService{
		repo:      repo,
		validator: validate,
		activity:  activity,
		dashboard: dashboard,
		logger:    logger.With().Str("component", "status_service").Logger(),
	}
}

func (s *statusService) List(ctx context.Context, activeOnly bool) ([]dto.StatusResponse, error) {
	statuses, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StatusResponse, 0, len(statuses))
	for _, status := range statuses {
		items = append(items, dto.NewStatusResponse(status))
	}
	return items, nil
}

func (s *statusService) Get(ctx context.Context, id uint) (dto.StatusResponse, error) {
	status, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.StatusResponse{}, notFoundAs(err, statusNotFound)
	}
	return dto.NewStatusResponse(status), nil
}

func (s *statusService) Create(ctx context.Context, actor policy.Actor, req dto.StatusCreateRequest) (dto.StatusResponse, error) {
	if err := requireCapability(actor, policy.CapManageTaxonomy, "You do not have permission to create statuses"); err != nil {
		return dto.StatusResponse{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Color = trimmedPtr(req.Color)
	if err := validatePayload(s.validator, req); err != nil {
		return dto.StatusResponse{}, err
	}
	if err := s.ensureNameAvailable(ctx, req.Name, 0); err != nil {
		return dto.StatusResponse{}, err
	}

	status := models.ComplaintStatus{
		Name:        req.Name,
		Description: trimmedPtr(req.Description),
		Color:       models.DefaultStatusColor,
		IsActive:    boolValue(req.IsActive, true),
	}
	if req.Color != nil {
		status.Color = *req.Color
	}

	if err := s.repo.Create(ctx, &status); err != nil {
		return dto.StatusResponse{}, err
	}
	dropDashboardCache(ctx, s.dashboard)

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "status.created",
		EntityType: "complaint_status",
		EntityID:   &status.ID,
		Metadata:   map[string]interface{}{"name": status.Name, "color": status.Color},
	})
	s.logger.Info().Uint("status_id", status.ID).Uint("actor_id", actor.ID).Msg("status created")

	return dto.NewStatusResponse(status), nil
}

func (s *statusService) Update(ctx context.Context, actor policy.Actor, id uint, req dto.StatusUpdateRequest) (dto.StatusResponse, error) {
	if err := requireCapability(actor, policy.CapManageTaxonomy, "You do not have permission to update statuses"); err != nil {
		return dto.StatusResponse{}, err
	}
	status, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.StatusResponse{}, notFoundAs(err, statusNotFound)
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	req.Color = trimmedPtr(req.Color)
	if err := validatePayload(s.validator, req); err != nil {
		return dto.StatusResponse{}, err
	}

	changes := map[string]interface{}{}
	if req.Name != nil && *req.Name != status.Name {
		if err := s.ensureNameAvailable(ctx, *req.Name, status.ID); err != nil {
			return dto.StatusResponse{}, err
		}
		status.Name = *req.Name
		changes["name"] = status.Name
	}
	if req.Description != nil {
		status.Description = trimmedPtr(req.Description)
		changes["description"] = status.Description
	}
	if req.Color != nil {
		status.Color = *req.Color
		changes["color"] = status.Color
	}
	if req.IsActive != nil {
		status.IsActive = *req.IsActive
		changes["is_active"] = status.IsActive
	}

	if err := s.repo.Save(ctx, &status); err != nil {
		return dto.StatusResponse{}, err
	}
	dropDashboardCache(ctx, s.dashboard)

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "status.updated",
		EntityType: "complaint_status",
		EntityID:   &status.ID,
		Metadata:   changes,
	})

	return dto.NewStatusResponse(status), nil
}

func (s *statusService) Delete(ctx context.Context, actor policy.Actor, id uint) error {
	if err := requireCapability(actor, policy.CapManageTaxonomy, "You do not have permission to delete statuses"); err != nil {
		return err
	}
	status, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notFoundAs(err, statusNotFound)
	}

	inUse, err := s.repo.CountComplaints(ctx, status.ID)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return apperrors.Conflict("Cannot delete status with associated complaints. Deactivate it instead.")
	}

	if err := s.repo.Delete(ctx, status.ID); err != nil {
		return notFoundAs(err, statusNotFound)
	}
	dropDashboardCache(ctx, s.dashboard)

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "status.deleted",
		EntityType: "complaint_status",
		EntityID:   &status.ID,
		Metadata:   map[string]interface{}{"name": status.Name},
	})
	return nil
}

func (s *statusService) ensureNameAvailable(ctx context.Context, name string, excludeID uint) error {
	taken, err := s.repo.NameTaken(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.NewValidation("name", "The name has already been taken.")
	}
	return nil
}
