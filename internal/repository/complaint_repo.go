package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/campus-complaint-api/internal/models"
)

// ComplaintSortFields maps accepted sort_field values to columns.
var ComplaintSortFields = map[string]string{
	"id":          "complaints.id",
	"subject":     "complaints.subject",
	"created_at":  "complaints.created_at",
	"updated_at":  "complaints.updated_at",
	"category_id": "complaints.category_id",
	"status_id":   "complaints.status_id",
	"is_resolved": "complaints.is_resolved",
	"resolved_at": "complaints.resolved_at",
	"user_id":     "complaints.user_id",
}

// ComplaintFilter narrows complaint listings. All set filters are combined with AND.
type ComplaintFilter struct {
	UserID        *uint
	CategoryID    *uint
	StatusID      *uint
	IsResolved    *bool
	Search        string
	SortField     string
	SortDirection string
	Page          int
	PageSize      int
}

// ComplaintRepository persists complaints.
type ComplaintRepository interface {
	List(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, int64, error)
	GetByID(ctx context.Context, id uint) (models.Complaint, error)
	Create(ctx context.Context, complaint *models.Complaint) error
	Save(ctx context.Context, complaint *models.Complaint) error
	Delete(ctx context.Context, id uint) ([]string, error)
}

type complaintRepository struct {
	db *gorm.DB
}

// NewComplaintRepository constructs the complaint repository.
func NewComplaintRepository(db *gorm.DB) ComplaintRepository {
	return &complaintRepository{db: db}
}

func (r *complaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Complaint{})

	if filter.UserID != nil {
		query = query.Where("complaints.user_id = ?", *filter.UserID)
	}
	if filter.CategoryID != nil {
		query = query.Where("complaints.category_id = ?", *filter.CategoryID)
	}
	if filter.StatusID != nil {
		query = query.Where("complaints.status_id = ?", *filter.StatusID)
	}
	if filter.IsResolved != nil {
		query = query.Where("complaints.is_resolved = ?", *filter.IsResolved)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := containsPattern(search)
		query = query.Where(`(LOWER(complaints.subject) LIKE ? ESCAPE '\' OR LOWER(complaints.description) LIKE ? ESCAPE '\')`, like, like)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(orderClause(ComplaintSortFields, filter.SortField, filter.SortDirection, "complaints.created_at")).
		Order("complaints.id DESC")
	query = applyPage(query, filter.Page, filter.PageSize)

	var complaints []models.Complaint
	if err := withComplaintRelations(query).Find(&complaints).Error; err != nil {
		return nil, 0, err
	}
	return complaints, total, nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id uint) (models.Complaint, error) {
	var complaint models.Complaint
	if err := withComplaintRelations(r.db.WithContext(ctx)).First(&complaint, id).Error; err != nil {
		return models.Complaint{}, err
	}
	return complaint, nil
}

func (r *complaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(complaint).Error
}

func (r *complaintRepository) Save(ctx context.Context, complaint *models.Complaint) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(complaint).Error
}

// Delete removes the complaint and its responses in one transaction and
// returns every attachment reference the removed rows held.
func (r *complaintRepository) Delete(ctx context.Context, id uint) ([]string, error) {
	var refs []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var complaint models.Complaint
		if err := tx.Select("id", "attachments").First(&complaint, id).Error; err != nil {
			return err
		}

		var responses []models.ComplaintResponse
		if err := tx.Select("id", "attachments").Where("complaint_id = ?", id).Find(&responses).Error; err != nil {
			return err
		}

		if err := tx.Where("complaint_id = ?", id).Delete(&models.ComplaintResponse{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Complaint{}, id).Error; err != nil {
			return err
		}

		refs = append(refs, complaint.Attachments...)
		for _, response := range responses {
			refs = append(refs, response.Attachments...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

func withComplaintRelations(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Category").
		Preload("Status").
		Preload("User")
}
