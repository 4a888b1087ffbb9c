package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/campus-complaint-api/internal/models"
)

// ComplaintResponseRepository persists the replies of complaint threads.
type ComplaintResponseRepository interface {
	ListByComplaint(ctx context.Context, complaintID uint) ([]models.ComplaintResponse, error)
	GetByID(ctx context.Context, complaintID, id uint) (models.ComplaintResponse, error)
	Create(ctx context.Context, response *models.ComplaintResponse) error
	Save(ctx context.Context, response *models.ComplaintResponse) error
	Delete(ctx context.Context, id uint) error
}

type complaintResponseRepository struct {
	db *gorm.DB
}

// NewComplaintResponseRepository constructs the response repository.
func NewComplaintResponseRepository(db *gorm.DB) ComplaintResponseRepository {
	return &complaintResponseRepository{db: db}
}

// ListByComplaint returns the thread in the order it was written.
func (r *complaintResponseRepository) ListByComplaint(ctx context.Context, complaintID uint) ([]models.ComplaintResponse, error) {
	var responses []models.ComplaintResponse
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("complaint_id = ?", complaintID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// GetByID only matches responses that belong to the given complaint.
func (r *complaintResponseRepository) GetByID(ctx context.Context, complaintID, id uint) (models.ComplaintResponse, error) {
	var response models.ComplaintResponse
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("complaint_id = ?", complaintID).
		First(&response, id).Error
	if err != nil {
		return models.ComplaintResponse{}, err
	}
	return response, nil
}

func (r *complaintResponseRepository) Create(ctx context.Context, response *models.ComplaintResponse) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(response).Error
}

func (r *complaintResponseRepository) Save(ctx context.Context, response *models.ComplaintResponse) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(response).Error
}

func (r *complaintResponseRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.ComplaintResponse{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
