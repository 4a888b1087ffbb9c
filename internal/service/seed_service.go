package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-complaint-api/internal/auth"
	"github.com/noah-isme/campus-complaint-api/internal/models"
	"github.com/noah-isme/campus-complaint-api/internal/repository"
)

// ErrAdminCredentialsRequired indicates EnsureAdmin was called without credentials.
var ErrAdminCredentialsRequired = errors.New("admin name, email and password are required")

// SeedResult reports how many default rows were inserted.
type SeedResult struct {
	Categories int64 `json:"categories"`
	Statuses   int64 `json:"statuses"`
}

// SeedService installs the default taxonomy and bootstrap accounts.
type SeedService interface {
	SeedDefaults(ctx context.Context) (SeedResult, error)
	EnsureAdmin(ctx context.Context, name, email, password string) (models.User, bool, error)
}

type seedService struct {
	categories repository.CategoryRepository
	statuses   repository.StatusRepository
	users      repository.UserRepository
	logger     zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(categories repository.CategoryRepository, statuses repository.StatusRepository, users repository.UserRepository, logger zerolog.Logger) SeedService {
	return &seedService{
		categories: categories,
		statuses:   statuses,
		users:      users,
		logger:     logger.With().Str("component", "seed_service").Logger(),
	}
}

// SeedDefaults inserts the default categories and statuses, skipping names that exist.
func (s *seedService) SeedDefaults(ctx context.Context) (SeedResult, error) {
	categories, err := s.categories.InsertMissing(ctx, DefaultCategories())
	if err != nil {
		return SeedResult{}, err
	}
	statuses, err := s.statuses.InsertMissing(ctx, DefaultStatuses())
	if err != nil {
		return SeedResult{}, err
	}

	s.logger.Info().Int64("categories", categories).Int64("statuses", statuses).Msg("taxonomy seeded")
	return SeedResult{Categories: categories, Statuses: statuses}, nil
}

// EnsureAdmin creates an administrator unless the email already exists. The
// boolean result reports whether an account was created.
func (s *seedService) EnsureAdmin(ctx context.Context, name, email, password string) (models.User, bool, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return models.User{}, false, ErrAdminCredentialsRequired
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, false, err
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, false, err
	}
	user := models.User{Name: name, Email: email, Password: hashed, Role: models.RoleAdmin}
	if err := s.users.Create(ctx, &user); err != nil {
		return models.User{}, false, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("admin account created")
	return user, true, nil
}

// DefaultCategories lists the complaint categories installed on a fresh system.
func DefaultCategories() []models.ComplaintCategory {
	defaults := []struct{ name, description string }{
		{"Academic Issues", "Issues related to courses, exams, grades, and academic policies"},
		{"Administrative Issues", "Issues related to administrative procedures, documentation, and services"},
		{"Facility Issues", "Issues related to campus facilities, classrooms, laboratories, and infrastructure"},
		{"Financial Issues", "Issues related to fees, scholarships, financial aid, and payments"},
		{"Harassment or Discrimination", "Issues related to harassment, discrimination, or unfair treatment"},
		{"IT Services", "Issues related to IT infrastructure, internet, software, and technical support"},
		{"Library Services", "Issues related to library resources, access, and services"},
		{"Hostel/Accommodation", "Issues related to student housing and accommodation facilities"},
		{"Transportation", "Issues related to campus transportation and parking"},
		{"Other", "Any other issues not covered by the above categories"},
	}
	items := make([]models.ComplaintCategory, 0, len(defaults))
	for _, item := range defaults {
		description := item.description
		items = append(items, models.ComplaintCategory{Name: item.name, Description: &description, IsActive: true})
	}
	return items
}

// DefaultStatuses lists the workflow statuses installed on a fresh system. New comes first.
func DefaultStatuses() []models.ComplaintStatus {
	defaults := []struct{ name, description, color string }{
		{"New", "Complaint has been submitted but not yet reviewed", "#3498db"},
		{"Under Review", "Complaint is being reviewed by the staff", "#f39c12"},
		{"In Progress", "Complaint is being addressed by the staff", "#9b59b6"},
		{"On Hold", "Complaint resolution is temporarily paused", "#e74c3c"},
		{"Resolved", "Complaint has been resolved", "#2ecc71"},
		{"Closed", "Complaint has been closed without resolution", "#7f8c8d"},
		{"Reopened", "Previously resolved complaint has been reopened", "#e67e22"},
	}
	items := make([]models.ComplaintStatus, 0, len(defaults))
	for _, item := range defaults {
		description := item.description
		items = append(items, models.ComplaintStatus{Name: item.name, Description: &description, Color: item.color, IsActive: true})
	}
	return items
}
