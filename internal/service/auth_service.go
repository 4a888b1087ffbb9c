package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-complaint-api/internal/apperrors"
	"github.com/noah-isme/campus-complaint-api/internal/auth"
	"github.com/noah-isme/campus-complaint-api/internal/dto"
	"github.com/noah-isme/campus-complaint-api/internal/models"
	"github.com/noah-isme/campus-complaint-api/internal/policy"
	"github.com/noah-isme/campus-complaint-api/internal/repository"
)

const (
	userNotFound       = "User not found"
	invalidCredentials = "Invalid login credentials"
	emailTakenMessage  = "The email has already been taken."
	bearerTokenType    = "Bearer"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(user models.User) (auth.IssuedToken, error)
}

// AuthService handles self-service account operations.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	Me(ctx context.Context, actor policy.Actor) (dto.UserResponse, error)
	UpdateProfile(ctx context.Context, actor policy.Actor, req dto.UpdateProfileRequest) (dto.UserResponse, error)
}

type authService struct {
	users     repository.UserRepository
	tokens    TokenIssuer
	denylist  auth.Denylist
	validator *validator.Validate
	dashboard DashboardInvalidator
	logger    zerolog.Logger
	hash      func(string) (string, error)
}

// NewAuthService constructs the account service.
func NewAuthService(users repository.UserRepository, tokens TokenIssuer, denylist auth.Denylist, validate *validator.Validate, dashboard DashboardInvalidator, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		tokens:    tokens,
		denylist:  denylist,
		validator: validate,
		dashboard: dashboard,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		hash:      auth.HashPassword,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (dto.AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := validatePayload(s.validator, req); err != nil {
		return dto.AuthResponse{}, err
	}
	if err := ensureEmailAvailable(ctx, s.users, req.Email, 0); err != nil {
		return dto.AuthResponse{}, err
	}

	hashed, err := s.hash(req.Password)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	user := models.User{
		Name:       req.Name,
		Email:      req.Email,
		Password:   hashed,
		Role:       models.RoleStudent,
		StudentID:  trimmedPtr(req.StudentID),
		Department: trimmedPtr(req.Department),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return dto.AuthResponse{}, err
	}
	dropDashboardCache(ctx, s.dashboard)

	s.logger.Info().Uint("user_id", user.ID).Msg("account registered")
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validatePayload(s.validator, req); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Str("email", maskEmail(req.Email)).Msg("login for unknown account")
			return dto.AuthResponse{}, apperrors.Unauthorized(invalidCredentials)
		}
		return dto.AuthResponse{}, err
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Warn().Uint("user_id", user.ID).Msg("login rejected")
		return dto.AuthResponse{}, apperrors.Unauthorized(invalidCredentials)
	}

	return s.issue(user)
}

func (s *authService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if strings.TrimSpace(tokenID) == "" {
		return apperrors.Unauthorized("Unauthenticated.")
	}
	if s.denylist == nil {
		return nil
	}
	return s.denylist.Revoke(ctx, tokenID, expiresAt)
}

func (s *authService) Me(ctx context.Context, actor policy.Actor) (dto.UserResponse, error) {
	if err := requireActor(actor); err != nil {
		return dto.UserResponse{}, err
	}
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return dto.UserResponse{}, notFoundAs(err, userNotFound)
	}
	return dto.NewUserResponse(user), nil
}

func (s *authService) UpdateProfile(ctx context.Context, actor policy.Actor, req dto.UpdateProfileRequest) (dto.UserResponse, error) {
	if err := requireActor(actor); err != nil {
		return dto.UserResponse{}, err
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = &email
	}
	if err := validatePayload(s.validator, req); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return dto.UserResponse{}, notFoundAs(err, userNotFound)
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil && *req.Email != user.Email {
		if err := ensureEmailAvailable(ctx, s.users, *req.Email, user.ID); err != nil {
			return dto.UserResponse{}, err
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		hashed, err := s.hash(*req.Password)
		if err != nil {
			return dto.UserResponse{}, err
		}
		user.Password = hashed
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
	return dto.NewUserResponse(user), nil
}

func (s *authService) issue(user models.User) (dto.AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	return dto.AuthResponse{
		User:        dto.NewUserResponse(user),
		AccessToken: token.Token,
		TokenType:   bearerTokenType,
		ExpiresAt:   token.ExpiresAt,
	}, nil
}

func ensureEmailAvailable(ctx context.Context, users repository.UserRepository, email string, excludeID uint) error {
	taken, err := users.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.NewValidation("email", emailTakenMessage)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
