package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/campus-complaint-api/internal/models"
)

// UserSortFields maps accepted sort_field values to columns.
var UserSortFields = map[string]string{
	"id":         "users.id",
	"name":       "users.name",
	"email":      "users.email",
	"role":       "users.role",
	"created_at": "users.created_at",
	"updated_at": "users.updated_at",
}

// UserFilter narrows account listings.
type UserFilter struct {
	Role          string
	Search        string
	SortField     string
	SortDirection string
	Page          int
	PageSize      int
}

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error)
	Save(ctx context.Context, user *models.User) error
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	Delete(ctx context.Context, id uint) ([]string, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the account repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) Save(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := containsPattern(search)
		query = query.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR LOWER(COALESCE(student_id, '')) LIKE ? ESCAPE '\')`, like, like, like)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(orderClause(UserSortFields, filter.SortField, filter.SortDirection, "users.created_at")).
		Order("users.id DESC")
	query = applyPage(query, filter.Page, filter.PageSize)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Delete removes the account together with its complaints and every response
// it wrote or that was written on its complaints. It returns the attachment
// references that belonged to the removed rows.
func (r *userRepository) Delete(ctx context.Context, id uint) ([]string, error) {
	var refs []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Select("id").First(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}

		ownComplaints := func() *gorm.DB {
			return tx.Model(&models.Complaint{}).Select("id").Where("user_id = ?", id)
		}

		var responses []models.ComplaintResponse
		if err := tx.Select("id", "attachments").
			Where("user_id = ? OR complaint_id IN (?)", id, ownComplaints()).
			Find(&responses).Error; err != nil {
			return err
		}
		var complaints []models.Complaint
		if err := tx.Select("id", "attachments").Where("user_id = ?", id).Find(&complaints).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ? OR complaint_id IN (?)", id, ownComplaints()).
			Delete(&models.ComplaintResponse{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Complaint{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.User{}, id).Error; err != nil {
			return err
		}

		for _, response := range responses {
			refs = append(refs, response.Attachments...)
		}
		for _, complaint := range complaints {
			refs = append(refs, complaint.Attachments...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}
