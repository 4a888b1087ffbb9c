package models

import (
	"time"

	"gorm.io/datatypes"
)

// Complaint is a grievance filed by a user.
type Complaint struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	UserID      uint                        `gorm:"not null;index" json:"user_id"`
	CategoryID  uint                        `gorm:"not null;index" json:"category_id"`
	StatusID    uint                        `gorm:"not null;index" json:"status_id"`
	Subject     string                      `gorm:"size:255;not null" json:"subject"`
	Description string                      `gorm:"type:text;not null" json:"description"`
	Attachments datatypes.JSONSlice[string] `gorm:"type:json" json:"attachments"`
	IsAnonymous bool                        `gorm:"not null;default:false" json:"is_anonymous"`
	IsResolved  bool                        `gorm:"not null;default:false;index" json:"is_resolved"`
	ResolvedAt  *time.Time                  `json:"resolved_at"`
	CreatedAt   time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
	User        *User                       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
	Category    *ComplaintCategory          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category,omitempty"`
	Status      *ComplaintStatus            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"status,omitempty"`
	Responses   []ComplaintResponse         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"responses,omitempty"`
}

// IsOwnedBy reports whether the complaint was filed by the given user.
func (c Complaint) IsOwnedBy(userID uint) bool {
	return userID != 0 && c.UserID == userID
}

// MarkResolved applies a resolution flag change. Every false→true
// transition stamps ResolvedAt; nothing ever clears it.
func (c *Complaint) MarkResolved(resolved bool, now time.Time) {
	if resolved && !c.IsResolved {
		stamp := now
		c.ResolvedAt = &stamp
	}
	c.IsResolved = resolved
}

// ComplaintResponse is a message in a complaint's thread.
type ComplaintResponse struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	ComplaintID uint                        `gorm:"not null;index" json:"complaint_id"`
	UserID      uint                        `gorm:"not null;index" json:"user_id"`
	Response    string                      `gorm:"type:text;not null" json:"response"`
	Attachments datatypes.JSONSlice[string] `gorm:"type:json" json:"attachments"`
	IsPrivate   bool                        `gorm:"not null;default:false" json:"is_private"`
	CreatedAt   time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
	User        *User                       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
}

// IsAuthoredBy reports whether the response was written by the given user.
func (r ComplaintResponse) IsAuthoredBy(userID uint) bool {
	return userID != 0 && r.UserID == userID
}
