package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/campus-complaint-api/internal/models"
)

// DefaultStatusNames are tried in order when a complaint is filed.
var DefaultStatusNames = []string{"Pending", "New"}

// StatusRepository persists complaint statuses.
type StatusRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.ComplaintStatus, error)
	GetByID(ctx context.Context, id uint) (models.ComplaintStatus, error)
	FindDefault(ctx context.Context) (models.ComplaintStatus, error)
	NameTaken(ctx context.Context, name string, excludeID uint) (bool, error)
	Create(ctx context.Context, status *models.ComplaintStatus) error
	Save(ctx context.Context, status *models.ComplaintStatus) error
	Delete(ctx context.Context, id uint) error
	CountComplaints(ctx context.Context, id uint) (int64, error)
	InsertMissing(ctx context.Context, items []models.ComplaintStatus) (int64, error)
}

type statusRepository struct {
	db *gorm.DB
}

// NewStatusRepository constructs the status repository.
func NewStatusRepository(db *gorm.DB) StatusRepository {
	return &statusRepository{db: db}
}

func (r *statusRepository) List(ctx context.Context, activeOnly bool) ([]models.ComplaintStatus, error) {
	query := r.db.WithContext(ctx).Model(&models.ComplaintStatus{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var statuses []models.ComplaintStatus
	if err := query.Order("name ASC").Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *statusRepository) GetByID(ctx context.Context, id uint) (models.ComplaintStatus, error) {
	var status models.ComplaintStatus
	if err := r.db.WithContext(ctx).First(&status, id).Error; err != nil {
		return models.ComplaintStatus{}, err
	}
	return status, nil
}

// FindDefault returns the first status named in DefaultStatusNames, falling
// back to the lowest id. gorm.ErrRecordNotFound means no status exists.
func (r *statusRepository) FindDefault(ctx context.Context) (models.ComplaintStatus, error) {
	for _, name := range DefaultStatusNames {
		var status models.ComplaintStatus
		err := r.db.WithContext(ctx).Where("name = ?", name).First(&status).Error
		if err == nil {
			return status, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ComplaintStatus{}, err
		}
	}

	var status models.ComplaintStatus
	if err := r.db.WithContext(ctx).Order("id ASC").First(&status).Error; err != nil {
		return models.ComplaintStatus{}, err
	}
	return status, nil
}

func (r *statusRepository) NameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	return nameTaken(r.db.WithContext(ctx).Model(&models.ComplaintStatus{}), name, excludeID)
}

func (r *statusRepository) Create(ctx context.Context, status *models.ComplaintStatus) error {
	return r.db.WithContext(ctx).Create(status).Error
}

func (r *statusRepository) Save(ctx context.Context, status *models.ComplaintStatus) error {
	return r.db.WithContext(ctx).Save(status).Error
}

func (r *statusRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.ComplaintStatus{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *statusRepository) CountComplaints(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Complaint{}).Where("status_id = ?", id).Count(&count).Error
	return count, err
}

// InsertMissing inserts the given statuses, skipping names that already exist.
func (r *statusRepository) InsertMissing(ctx context.Context, items []models.ComplaintStatus) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&items)
	return result.RowsAffected, result.Error
}
