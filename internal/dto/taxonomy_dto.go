package dto

import (
	"time"

	"github.com/noah-isme/campus-complaint-api/internal/models"
)

// CategoryCreateRequest captures new complaint categories.
type CategoryCreateRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// CategoryUpdateRequest captures partial category updates.
type CategoryUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// CategoryResponse serializes a complaint category.
type CategoryResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCategoryResponse converts a category model into a DTO.
func NewCategoryResponse(category models.ComplaintCategory) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		IsActive:    category.IsActive,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

// StatusCreateRequest captures new complaint statuses.
type StatusCreateRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description"`
	Color       *string `json:"color" validate:"omitempty,hexcolor,max=7"`
	IsActive    *bool   `json:"is_active"`
}

// StatusUpdateRequest captures partial status updates.
type StatusUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Color       *string `json:"color" validate:"omitempty,hexcolor,max=7"`
	IsActive    *bool   `json:"is_active"`
}

// StatusResponse serializes a complaint status.
type StatusResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Color       string    `json:"color"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewStatusResponse converts a status model into a DTO.
func NewStatusResponse(status models.ComplaintStatus) StatusResponse {
	return StatusResponse{
		ID:          status.ID,
		Name:        status.Name,
		Description: status.Description,
		Color:       status.Color,
		IsActive:    status.IsActive,
		CreatedAt:   status.CreatedAt,
		UpdatedAt:   status.UpdatedAt,
	}
}
