package dto

import (
	"time"

	"github.com/noah-isme/campus-complaint-api/internal/models"
	"github.com/noah-isme/campus-complaint-api/internal/policy"
)

// ComplaintListRequest carries list filters, sorting and paging.
type ComplaintListRequest struct {
	Page          int
	PerPage       int
	CategoryID    *uint
	StatusID      *uint
	IsResolved    *bool
	Search        string
	SortField     string
	SortDirection string
}

// ComplaintCreateRequest captures a new complaint. Attachments arrive as multipart files.
type ComplaintCreateRequest struct {
	CategoryID  uint   `json:"category_id" form:"category_id" validate:"required,gt=0"`
	Subject     string `json:"subject" form:"subject" validate:"required,max=255"`
	Description string `json:"description" form:"description" validate:"required"`
	IsAnonymous bool   `json:"is_anonymous" form:"is_anonymous"`
}

// ComplaintUpdateRequest captures a partial complaint update.
type ComplaintUpdateRequest struct {
	CategoryID  *uint   `json:"category_id" form:"category_id" validate:"omitempty,gt=0"`
	StatusID    *uint   `json:"status_id" form:"status_id" validate:"omitempty,gt=0"`
	Subject     *string `json:"subject" form:"subject" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" form:"description" validate:"omitempty,min=1"`
	IsAnonymous *bool   `json:"is_anonymous" form:"is_anonymous"`
	IsResolved  *bool   `json:"is_resolved" form:"is_resolved"`
}

// Fields lists the complaint fields present in the payload.
func (r ComplaintUpdateRequest) Fields(hasAttachments bool) policy.FieldSet {
	fields := policy.NewFieldSet()
	if r.CategoryID != nil {
		fields.Add(policy.FieldCategoryID)
	}
	if r.StatusID != nil {
		fields.Add(policy.FieldStatusID)
	}
	if r.Subject != nil {
		fields.Add(policy.FieldSubject)
	}
	if r.Description != nil {
		fields.Add(policy.FieldDescription)
	}
	if r.IsAnonymous != nil {
		fields.Add(policy.FieldIsAnonymous)
	}
	if r.IsResolved != nil {
		fields.Add(policy.FieldIsResolved)
	}
	if hasAttachments {
		fields.Add(policy.FieldAttachments)
	}
	return fields
}

// Restrict clears every field outside the allow-list.
func (r ComplaintUpdateRequest) Restrict(allowed policy.FieldSet) ComplaintUpdateRequest {
	if !allowed.Has(policy.FieldCategoryID) {
		r.CategoryID = nil
	}
	if !allowed.Has(policy.FieldStatusID) {
		r.StatusID = nil
	}
	if !allowed.Has(policy.FieldSubject) {
		r.Subject = nil
	}
	if !allowed.Has(policy.FieldDescription) {
		r.Description = nil
	}
	if !allowed.Has(policy.FieldIsAnonymous) {
		r.IsAnonymous = nil
	}
	if !allowed.Has(policy.FieldIsResolved) {
		r.IsResolved = nil
	}
	return r
}

// ComplaintResponse serializes a complaint, optionally with its visible thread.
type ComplaintResponse struct {
	ID          uint              `json:"id"`
	UserID      *uint             `json:"user_id"`
	CategoryID  uint              `json:"category_id"`
	StatusID    uint              `json:"status_id"`
	Subject     string            `json:"subject"`
	Description string            `json:"description"`
	Attachments []string          `json:"attachments"`
	IsAnonymous bool              `json:"is_anonymous"`
	IsResolved  bool              `json:"is_resolved"`
	ResolvedAt  *time.Time        `json:"resolved_at"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Category    *CategoryResponse `json:"category,omitempty"`
	Status      *StatusResponse   `json:"status,omitempty"`
	User        *UserSummary      `json:"user,omitempty"`
	Responses   []ResponseEntry   `json:"responses,omitempty"`
}

// NewComplaintResponse converts a complaint into a DTO. When revealAuthor is
// false and the complaint is anonymous, the author identity is omitted.
func NewComplaintResponse(complaint models.Complaint, revealAuthor bool) ComplaintResponse {
	resp := ComplaintResponse{
		ID:          complaint.ID,
		CategoryID:  complaint.CategoryID,
		StatusID:    complaint.StatusID,
		Subject:     complaint.Subject,
		Description: complaint.Description,
		Attachments: attachmentList(complaint.Attachments),
		IsAnonymous: complaint.IsAnonymous,
		IsResolved:  complaint.IsResolved,
		ResolvedAt:  complaint.ResolvedAt,
		CreatedAt:   complaint.CreatedAt,
		UpdatedAt:   complaint.UpdatedAt,
	}

	if revealAuthor || !complaint.IsAnonymous {
		userID := complaint.UserID
		resp.UserID = &userID
		resp.User = newUserSummary(complaint.User)
	}
	if complaint.Category != nil && complaint.Category.ID != 0 {
		category := NewCategoryResponse(*complaint.Category)
		resp.Category = &category
	}
	if complaint.Status != nil && complaint.Status.ID != 0 {
		status := NewStatusResponse(*complaint.Status)
		resp.Status = &status
	}
	if len(complaint.Responses) > 0 {
		resp.Responses = make([]ResponseEntry, 0, len(complaint.Responses))
		for _, item := range complaint.Responses {
			resp.Responses = append(resp.Responses, NewResponseEntry(item))
		}
	}

	return resp
}

// ComplaintListResponse wraps a paginated complaint listing.
type ComplaintListResponse struct {
	Items      []ComplaintResponse `json:"items"`
	Pagination PaginationMeta      `json:"pagination"`
}

// ResponseCreateRequest captures a new reply in a complaint thread.
type ResponseCreateRequest struct {
	Response  string `json:"response" form:"response" validate:"required"`
	IsPrivate bool   `json:"is_private" form:"is_private"`
}

// ResponseUpdateRequest captures a partial reply update.
type ResponseUpdateRequest struct {
	Response  *string `json:"response" form:"response" validate:"omitempty,min=1"`
	IsPrivate *bool   `json:"is_private" form:"is_private"`
}

// ResponseEntry serializes a reply in a complaint thread.
type ResponseEntry struct {
	ID          uint         `json:"id"`
	ComplaintID uint         `json:"complaint_id"`
	UserID      uint         `json:"user_id"`
	Response    string       `json:"response"`
	Attachments []string     `json:"attachments"`
	IsPrivate   bool         `json:"is_private"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	User        *UserSummary `json:"user,omitempty"`
}

// NewResponseEntry converts a response model into a DTO.
func NewResponseEntry(response models.ComplaintResponse) ResponseEntry {
	return ResponseEntry{
		ID:          response.ID,
		ComplaintID: response.ComplaintID,
		UserID:      response.UserID,
		Response:    response.Response,
		Attachments: attachmentList(response.Attachments),
		IsPrivate:   response.IsPrivate,
		CreatedAt:   response.CreatedAt,
		UpdatedAt:   response.UpdatedAt,
		User:        newUserSummary(response.User),
	}
}

func attachmentList(refs []string) []string {
	if len(refs) == 0 {
		return []string{}
	}
	out := make([]string, len(refs))
	copy(out, refs)
	return out
}
