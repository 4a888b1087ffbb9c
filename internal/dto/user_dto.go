package dto

import (
	"time"

	"github.com/noah-isme/campus-complaint-api/internal/models"
)

// RegisterRequest captures self-service sign up payloads. New accounts are always students.
type RegisterRequest struct {
	Name                 string  `json:"name" validate:"required,max=255"`
	Email                string  `json:"email" validate:"required,email,max=255"`
	Password             string  `json:"password" validate:"required,min=8"`
	PasswordConfirmation string  `json:"password_confirmation" validate:"required,eqfield=Password"`
	StudentID            *string `json:"student_id" validate:"omitempty,max=50"`
	Department           *string `json:"department" validate:"omitempty,max=255"`
}

// LoginRequest captures credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest is the self-update payload. Role is deliberately absent.
type UpdateProfileRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=255"`
	Email      *string `json:"email" validate:"omitempty,email,max=255"`
	Password   *string `json:"password" validate:"omitempty,min=8"`
	StudentID  *string `json:"student_id" validate:"omitempty,max=50"`
	Department *string `json:"department" validate:"omitempty,max=255"`
}

// UserResponse serializes an account without its credentials.
type UserResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	StudentID  *string   `json:"student_id"`
	Department *string   `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewUserResponse converts a user model into a DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role.String(),
		StudentID:  user.StudentID,
		Department: user.Department,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

// UserSummary is the trimmed author view embedded in complaints and responses.
type UserSummary struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	StudentID  *string `json:"student_id,omitempty"`
	Department *string `json:"department,omitempty"`
}

func newUserSummary(user *models.User) *UserSummary {
	if user == nil || user.ID == 0 {
		return nil
	}
	return &UserSummary{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role.String(),
		StudentID:  user.StudentID,
		Department: user.Department,
	}
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// AdminUserListRequest defines filters for listing accounts.
type AdminUserListRequest struct {
	Page          int
	PageSize      int
	Role          string
	Search        string
	SortField     string
	SortDirection string
}

// AdminUserCreateRequest captures accounts created by administrators.
type AdminUserCreateRequest struct {
	Name       string  `json:"name" validate:"required,max=255"`
	Email      string  `json:"email" validate:"required,email,max=255"`
	Password   string  `json:"password" validate:"required,min=8"`
	Role       string  `json:"role" validate:"required,oneof=student staff admin"`
	StudentID  *string `json:"student_id" validate:"omitempty,max=50"`
	Department *string `json:"department" validate:"omitempty,max=255"`
}

// AdminUserUpdateRequest captures partial account updates by administrators.
type AdminUserUpdateRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=255"`
	Email      *string `json:"email" validate:"omitempty,email,max=255"`
	Password   *string `json:"password" validate:"omitempty,min=8"`
	Role       *string `json:"role" validate:"omitempty,oneof=student staff admin"`
	StudentID  *string `json:"student_id" validate:"omitempty,max=50"`
	Department *string `json:"department" validate:"omitempty,max=255"`
}

// UserListResponse wraps a paginated account listing.
type UserListResponse struct {
	Items      []UserResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}
