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

const categoryNotFound = "Category not found"

// CategoryService manages complaint categories.
type CategoryService interface {
	List(ctx context.Context, activeOnly bool) ([]dto.CategoryResponse, error)
	Get(ctx context.Context, id uint) (dto.CategoryResponse, error)
	Create(ctx context.Context, actor policy.Actor, req dto.CategoryCreateRequest) (dto.CategoryResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uint, req dto.CategoryUpdateRequest) (dto.CategoryResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uint) error
}

type categoryService struct {
	repo      repository.CategoryRepository
	validator *validator.Validate
	activity  ActivityRecorder
	dashboard DashboardInvalidator
	logger    zerolog.Logger
}

// NewCategoryService constructs the category service.
func NewCategoryService(repo repository.CategoryRepository, validate *validator.Validate, activity ActivityRecorder, dashboard DashboardInvalidator, logger zerolog.Logger) CategoryService {
	return &categoryService{
		repo:      repo,
		validator: validate,
		activity:  activity,
		dashboard: dashboard,
		logger:    logger.With().Str("component", "category_service").Logger(),
	}
}

func (s *categoryService) List(ctx context.Context, activeOnly bool) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		items = append(items, dto.NewCategoryResponse(category))
	}
	return items, nil
}

func (s *categoryService) Get(ctx context.Context, id uint) (dto.CategoryResponse, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.CategoryResponse{}, notFoundAs(err, categoryNotFound)
	}
	return dto.NewCategoryResponse(category), nil
}

func (s *categoryService) Create(ctx context.Context, actor policy.Actor, req dto.CategoryCreateRequest) (dto.CategoryResponse, error) {
	if err := requireCapability(actor, policy.CapManageTaxonomy, "You do not have permission to create categories"); err != nil {
		return dto.CategoryResponse{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validatePayload(s.validator, req); err != nil {
		return dto.CategoryResponse{}, err
	}
	if err := s.ensureNameAvailable(ctx, req.Name, 0); err != nil {
		return dto.CategoryResponse{}, err
	}

	category := models.ComplaintCategory{
		Name:        req.Name,
		Description: trimmedPtr(req.Description),
		IsActive:    boolValue(req.IsActive, true),
	}
	if err := s.repo.Create(ctx, &category); err != nil {
		return dto.CategoryResponse{}, err
	}
	dropDashboardCache(ctx, s.dashboard)

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "category.created",
		EntityType: "complaint_category",
		EntityID:   &category.ID,
		Metadata:   map[string]interface{}{"name": category.Name},
	})
	s.logger.Info().Uint("category_id", category.ID).Uint("actor_id", actor.ID).Msg("category created")

	return dto.NewCategoryResponse(category), nil
}

func (s *categoryService) Update(ctx context.Context, actor policy.Actor, id uint, req dto.CategoryUpdateRequest) (dto.CategoryResponse, error) {
	if err := requireCapability(actor, policy.CapManageTaxonomy, "You do not have permission to update categories"); err != nil {
		return dto.CategoryResponse{}, err
	}
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.CategoryResponse{}, notFoundAs(err, categoryNotFound)
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := validatePayload(s.validator, req); err != nil {
		return dto.CategoryResponse{}, err
	}

	changes := map[string]interface{}{}
	if req.Name != nil && *req.Name != category.Name {
		if err := s.ensureNameAvailable(ctx, *req.Name, category.ID); err != nil {
			return dto.CategoryResponse{}, err
		}
		category.Name = *req.Name
		changes["name"] = category.Name
	}
	if req.Description != nil {
		category.Description = trimmedPtr(req.Description)
		changes["description"] = category.Description
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
		changes["is_active"] = category.IsActive
	}

	if err := s.repo.Save(ctx, &category); err != nil {
		return dto.CategoryResponse{}, err
	}
	dropDashboardCache(ctx, s.dashboard)

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "category.updated",
		EntityType: "complaint_category",
		EntityID:   &category.ID,
		Metadata:   changes,
	})

	return dto.NewCategoryResponse(category), nil
}

func (s *categoryService) Delete(ctx context.Context, actor policy.Actor, id uint) error {
	if err := requireCapability(actor, policy.CapManageTaxonomy, "You do not have permission to delete categories"); err != nil {
		return err
	}
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notFoundAs(err, categoryNotFound)
	}

	count, err := s.repo.CountComplaints(ctx, category.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Conflict("Cannot delete category with associated complaints. Deactivate it instead.")
	}

	if err := s.repo.Delete(ctx, category.ID); err != nil {
		return notFoundAs(err, categoryNotFound)
	}
	dropDashboardCache(ctx, s.dashboard)

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "category.deleted",
		EntityType: "complaint_category",
		EntityID:   &category.ID,
		Metadata:   map[string]interface{}{"name": category.Name},
	})
	return nil
}

func (s *categoryService) ensureNameAvailable(ctx context.Context, name string, excludeID uint) error {
	taken, err := s.repo.NameTaken(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.NewValidation("name", "The name has already been taken.")
	}
	return nil
}
