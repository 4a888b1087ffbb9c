package models

import "time"

// DefaultStatusColor is applied to statuses created without an explicit color.
const DefaultStatusColor = "#3498db"

// ComplaintCategory classifies complaints by subject area.
type ComplaintCategory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ComplaintStatus describes a workflow stage of a complaint.
type ComplaintStatus struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	Color       string    `gorm:"size:7;not null;default:'#3498db'" json:"color"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
