package models

import (
	"strings"
	"time"
)

// Role is the closed set of account roles recognised by the API.
type Role string

const (
	// RoleStudent files complaints and follows their own threads.
	RoleStudent Role = "student"
	// RoleStaff triages and answers complaints.
	RoleStaff Role = "staff"
	// RoleAdmin manages taxonomy, users and reports.
	RoleAdmin Role = "admin"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleStudent, RoleStaff, RoleAdmin}

// ParseRole normalises a raw role string and reports whether it is a known role.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	switch role {
	case RoleStudent, RoleStaff, RoleAdmin:
		return role, true
	default:
		return "", false
	}
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// User is an authenticated account of the complaint desk.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Email      string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"size:255;not null" json:"-"`
	Role       Role      `gorm:"size:16;not null;default:student;index" json:"role"`
	StudentID  *string   `gorm:"size:50" json:"student_id"`
	Department *string   `gorm:"size:100" json:"department"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
