package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-complaint-api/internal/apperrors"
	"github.com/noah-isme/campus-complaint-api/internal/auth"
	"github.com/noah-isme/campus-complaint-api/internal/dto"
	"github.com/noah-isme/campus-complaint-api/internal/models"
	"github.com/noah-isme/campus-complaint-api/internal/policy"
	"github.com/noah-isme/campus-complaint-api/internal/repository"
)

// AdminUserService exposes account administration.
type AdminUserService interface {
	List(ctx context.Context, actor policy.Actor, req dto.AdminUserListRequest) (dto.UserListResponse, error)
	Create(ctx context.Context, actor policy.Actor, req dto.AdminUserCreateRequest) (dto.UserResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uint, req dto.AdminUserUpdateRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uint) error
}

type adminUserService struct {
	users       repository.UserRepository
	attachments AttachmentService
	validator   *validator.Validate
	activity    ActivityRecorder
	dashboard   DashboardInvalidator
	logger      zerolog.Logger
	hash        func(string) (string, error)
}

// NewAdminUserService constructs the account administration service.
func NewAdminUserService(users repository.UserRepository, attachments AttachmentService, validate *validator.Validate, activity ActivityRecorder, dashboard DashboardInvalidator, logger zerolog.Logger) AdminUserService {
	return &adminUserService{
		users:       users,
		attachments: attachments,
		validator:   validate,
		activity:    activity,
		dashboard:   dashboard,
		logger:      logger.With().Str("component", "admin_user_service").Logger(),
		hash:        auth.HashPassword,
	}
}

func (s *adminUserService) List(ctx context.Context, actor policy.Actor, req dto.AdminUserListRequest) (dto.UserListResponse, error) {
	if err := requireCapability(actor, policy.CapManageUsers, "You do not have permission to access this resource"); err != nil {
		return dto.UserListResponse{}, err
	}

	page, pageSize := normalizePaging(req.Page, req.PageSize)
	filter := repository.UserFilter{
		Search:        strings.TrimSpace(req.Search),
		SortField:     req.SortField,
		SortDirection: req.SortDirection,
		Page:          page,
		PageSize:      pageSize,
	}
	if strings.TrimSpace(req.Role) != "" {
		role, ok := models.ParseRole(req.Role)
		if !ok {
			return dto.UserListResponse{}, apperrors.NewValidation("role", "The selected role is invalid.")
		}
		filter.Role = role.String()
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return dto.UserListResponse{}, err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.NewUserResponse(user))
	}
	return dto.UserListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}, nil
}

func (s *adminUserService) Create(ctx context.Context, actor policy.Actor, req dto.AdminUserCreateRequest) (dto.UserResponse, error) {
	if err := requireCapability(actor, policy.CapManageUsers, "You do not have permission to access this resource"); err != nil {
		return dto.UserResponse{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if err := validatePayload(s.validator, req); err != nil {
		return dto.UserResponse{}, err
	}
	role, _ := models.ParseRole(req.Role)

	if err := ensureEmailAvailable(ctx, s.users, req.Email, 0); err != nil {
		return dto.UserResponse{}, err
	}
	hashed, err := s.hash(req.Password)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Name:       req.Name,
		Email:      req.Email,
		Password:   hashed,
		Role:       role,
		StudentID:  trimmedPtr(req.StudentID),
		Department: trimmedPtr(req.Department),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "user.created",
		EntityType: "user",
		EntityID:   &user.ID,
		Metadata:   map[string]interface{}{"role": user.Role.String()},
	})
	dropDashboardCache(ctx, s.dashboard)

	return dto.NewUserResponse(user), nil
}

func (s *adminUserService) Update(ctx context.Context, actor policy.Actor, id uint, req dto.AdminUserUpdateRequest) (dto.UserResponse, error) {
	if err := requireCapability(actor, policy.CapManageUsers, "You do not have permission to access this resource"); err != nil {
		return dto.UserResponse{}, err
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = &email
	}
	if req.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*req.Role))
		req.Role = &role
	}
	if err := validatePayload(s.validator, req); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return dto.UserResponse{}, notFoundAs(err, userNotFound)
	}

	changes := map[string]interface{}{}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
		changes["name"] = user.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		if err := ensureEmailAvailable(ctx, s.users, *req.Email, user.ID); err != nil {
			return dto.UserResponse{}, err
		}
		user.Email = *req.Email
		changes["email"] = user.Email
	}
	if req.Password != nil {
		hashed, err := s.hash(*req.Password)
		if err != nil {
			return dto.UserResponse{}, err
		}
		user.Password = hashed
		changes["password"] = true
	}
	if req.Role != nil {
		role, _ := models.ParseRole(*req.Role)
		if role != user.Role {
			changes["role"] = role.String()
		}
		user.Role = role
	}
	if req.StudentID != nil {
		user.StudentID = trimmedPtr(req.StudentID)
	}
	if req.Department != nil {
		user.Department = trimmedPtr(req.Department)
	}

	if err := s.users.Save(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "user.updated",
		EntityType: "user",
		EntityID:   &user.ID,
		Metadata:   changes,
	})
	if _, roleChanged := changes["role"]; roleChanged {
		dropDashboardCache(ctx, s.dashboard)
	}

	return dto.NewUserResponse(user), nil
}

func (s *adminUserService) Delete(ctx context.Context, actor policy.Actor, id uint) error {
	if err := requireCapability(actor, policy.CapManageUsers, "You do not have permission to access this resource"); err != nil {
		return err
	}
	if id == actor.ID {
		return apperrors.Conflict("You cannot delete your own account")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return notFoundAs(err, userNotFound)
	}

	refs, err := s.users.Delete(ctx, user.ID)
	if err != nil {
		return notFoundAs(err, userNotFound)
	}
	if s.attachments != nil && len(refs) > 0 {
		s.attachments.Remove(ctx, refs)
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "user.deleted",
		EntityType: "user",
		EntityID:   &user.ID,
		Metadata:   map[string]interface{}{"email": user.Email, "role": user.Role.String()},
	})
	dropDashboardCache(ctx, s.dashboard)
	s.logger.Info().Uint("user_id", user.ID).Uint("actor_id", actor.ID).Msg("user deleted")
	return nil
}
