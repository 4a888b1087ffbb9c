package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/campus-complaint-api/internal/models"
)

// CategoryRepository persists complaint categories.
type CategoryRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.ComplaintCategory, error)
	GetByID(ctx context.Context, id uint) (models.ComplaintCategory, error)
	NameTaken(ctx context.Context, name string, excludeID uint) (bool, error)
	Create(ctx context.Context, category *models.ComplaintCategory) error
	Save(ctx context.Context, category *models.ComplaintCategory) error
	Delete(ctx context.Context, id uint) error
	CountComplaints(ctx context.Context, id uint) (int64, error)
	InsertMissing(ctx context.Context, items []models.ComplaintCategory) (int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository constructs the category repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context, activeOnly bool) ([]models.ComplaintCategory, error) {
	query := r.db.WithContext(ctx).Model(&models.ComplaintCategory{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var categories []models.ComplaintCategory
	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (models.ComplaintCategory, error) {
	var category models.ComplaintCategory
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return models.ComplaintCategory{}, err
	}
	return category, nil
}

func (r *categoryRepository) NameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	return nameTaken(r.db.WithContext(ctx).Model(&models.ComplaintCategory{}), name, excludeID)
}

func (r *categoryRepository) Create(ctx context.Context, category *models.ComplaintCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) Save(ctx context.Context, category *models.ComplaintCategory) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.ComplaintCategory{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *categoryRepository) CountComplaints(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Complaint{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}

// InsertMissing inserts the given categories, skipping names that already exist.
func (r *categoryRepository) InsertMissing(ctx context.Context, items []models.ComplaintCategory) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&items)
	return result.RowsAffected, result.Error
}

func nameTaken(query *gorm.DB, name string, excludeID uint) (bool, error) {
	query = query.Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
