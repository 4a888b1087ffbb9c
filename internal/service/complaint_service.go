package service

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-complaint-api/internal/apperrors"
	"github.com/noah-isme/campus-complaint-api/internal/dto"
	"github.com/noah-isme/campus-complaint-api/internal/events"
	"github.com/noah-isme/campus-complaint-api/internal/models"
	"github.com/noah-isme/campus-complaint-api/internal/observability"
	"github.com/noah-isme/campus-complaint-api/internal/policy"
	"github.com/noah-isme/campus-complaint-api/internal/repository"
)

const complaintNotFound = "Complaint not found"

// DashboardInvalidator drops cached dashboard aggregates.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context)
}

// ComplaintService implements the complaint lifecycle.
type ComplaintService interface {
	List(ctx context.Context, actor policy.Actor, req dto.ComplaintListRequest) (dto.ComplaintListResponse, error)
	Get(ctx context.Context, actor policy.Actor, id uint) (dto.ComplaintResponse, error)
	Create(ctx context.Context, actor policy.Actor, req dto.ComplaintCreateRequest, files []*multipart.FileHeader) (dto.ComplaintResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uint, req dto.ComplaintUpdateRequest, files []*multipart.FileHeader) (dto.ComplaintResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uint) error
}

// ComplaintServiceDeps groups the collaborators of the complaint service.
// Activity, Events and Dashboard are optional.
type ComplaintServiceDeps struct {
	Complaints  repository.ComplaintRepository
	Responses   repository.ComplaintResponseRepository
	Categories  repository.CategoryRepository
	Statuses    repository.StatusRepository
	Attachments AttachmentService
	Validator   *validator.Validate
	Activity    ActivityRecorder
	Events      events.Publisher
	Dashboard   DashboardInvalidator
	Logger      zerolog.Logger
}

type complaintService struct {
	complaints  repository.ComplaintRepository
	responses   repository.ComplaintResponseRepository
	categories  repository.CategoryRepository
	statuses    repository.StatusRepository
	attachments AttachmentService
	validator   *validator.Validate
	activity    ActivityRecorder
	events      events.Publisher
	dashboard   DashboardInvalidator
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewComplaintService constructs the complaint workflow service.
func NewComplaintService(deps ComplaintServiceDeps) ComplaintService {
	publisher := deps.Events
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	return &complaintService{
		complaints:  deps.Complaints,
		responses:   deps.Responses,
		categories:  deps.Categories,
		statuses:    deps.Statuses,
		attachments: deps.Attachments,
		validator:   deps.Validator,
		activity:    deps.Activity,
		events:      publisher,
		dashboard:   deps.Dashboard,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      deps.Logger.With().Str("component", "complaint_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/campus-complaint-api/internal/service/complaint"),
		now:         time.Now,
	}
}

func (s *complaintService) List(ctx context.Context, actor policy.Actor, req dto.ComplaintListRequest) (dto.ComplaintListResponse, error) {
	if err := requireActor(actor); err != nil {
		return dto.ComplaintListResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "complaint.list")
	defer span.End()

	page, pageSize := normalizePaging(req.Page, req.PerPage)
	filter := repository.ComplaintFilter{
		CategoryID:    req.CategoryID,
		StatusID:      req.StatusID,
		IsResolved:    req.IsResolved,
		Search:        req.Search,
		SortField:     req.SortField,
		SortDirection: req.SortDirection,
		Page:          page,
		PageSize:      pageSize,
	}
	if !actor.Can(policy.CapViewAllComplaints) {
		ownerID := actor.ID
		filter.UserID = &ownerID
	}
	span.SetAttributes(
		attribute.Int("complaint.page", page),
		attribute.Bool("complaint.own_only", filter.UserID != nil),
	)

	complaints, total, err := s.complaints.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return dto.ComplaintListResponse{}, err
	}

	items := make([]dto.ComplaintResponse, 0, len(complaints))
	for _, complaint := range complaints {
		items = append(items, dto.NewComplaintResponse(complaint, revealsAuthor(actor, complaint)))
	}

	return dto.ComplaintListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}, nil
}

func (s *complaintService) Get(ctx context.Context, actor policy.Actor, id uint) (dto.ComplaintResponse, error) {
	if err := requireActor(actor); err != nil {
		return dto.ComplaintResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "complaint.get")
	defer span.End()
	span.SetAttributes(attribute.Int("complaint.id", int(id)))

	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return dto.ComplaintResponse{}, notFoundAs(err, complaintNotFound)
	}
	if !policy.CanViewComplaint(actor, complaint) {
		return dto.ComplaintResponse{}, apperrors.Forbidden("You do not have permission to view this complaint")
	}

	thread, err := s.responses.ListByComplaint(ctx, complaint.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "thread failed")
		return dto.ComplaintResponse{}, err
	}
	complaint.Responses = visibleResponses(actor, complaint, thread)

	return dto.NewComplaintResponse(complaint, revealsAuthor(actor, complaint)), nil
}

func (s *complaintService) Create(ctx context.Context, actor policy.Actor, req dto.ComplaintCreateRequest, files []*multipart.FileHeader) (dto.ComplaintResponse, error) {
	if err := requireActor(actor); err != nil {
		return dto.ComplaintResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "complaint.create")
	defer span.End()
	span.SetAttributes(attribute.Int("complaint.attachments", len(files)))

	if err := validatePayload(s.validator, req); err != nil {
		return dto.ComplaintResponse{}, err
	}
	subject := cleanText(s.sanitizer, req.Subject)
	description := cleanText(s.sanitizer, req.Description)
	if err := requireCleanText(subject, description); err != nil {
		return dto.ComplaintResponse{}, err
	}
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return dto.ComplaintResponse{}, err
	}

	status, err := s.statuses.FindDefault(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ComplaintResponse{}, apperrors.Conflict("No complaint status is configured")
		}
		return dto.ComplaintResponse{}, err
	}

	refs, err := s.storeAttachments(ctx, ComplaintAttachmentFolder, files)
	if err != nil {
		return dto.ComplaintResponse{}, err
	}

	complaint := models.Complaint{
		UserID:      actor.ID,
		CategoryID:  req.CategoryID,
		StatusID:    status.ID,
		Subject:     subject,
		Description: description,
		Attachments: refs,
		IsAnonymous: req.IsAnonymous,
		IsResolved:  false,
	}
	if err := s.complaints.Create(ctx, &complaint); err != nil {
		s.removeAttachments(ctx, refs)
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.ComplaintResponse{}, err
	}

	created, err := s.complaints.GetByID(ctx, complaint.ID)
	if err != nil {
		return dto.ComplaintResponse{}, err
	}

	s.publish(ctx, actor, events.ComplaintCreated, created.ID, nil, map[string]interface{}{
		"category_id": created.CategoryID,
		"status_id":   created.StatusID,
	})
	dropDashboardCache(ctx, s.dashboard)
	s.logger.Info().Uint("complaint_id", created.ID).Uint("user_id", actor.ID).Msg("complaint filed")

	return dto.NewComplaintResponse(created, true), nil
}

func (s *complaintService) Update(ctx context.Context, actor policy.Actor, id uint, req dto.ComplaintUpdateRequest, files []*multipart.FileHeader) (dto.ComplaintResponse, error) {
	if err := requireActor(actor); err != nil {
		return dto.ComplaintResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "complaint.update")
	defer span.End()
	span.SetAttributes(attribute.Int("complaint.id", int(id)))

	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return dto.ComplaintResponse{}, notFoundAs(err, complaintNotFound)
	}

	req = req.Restrict(policy.ComplaintFieldsFor(actor))
	fields := req.Fields(len(files) > 0)
	if !policy.CanMutateComplaint(actor, complaint, fields) {
		if !complaint.IsOwnedBy(actor.ID) {
			return dto.ComplaintResponse{}, apperrors.Forbidden("You do not have permission to update this complaint")
		}
		return dto.ComplaintResponse{}, apperrors.Forbidden("Cannot update a resolved complaint")
	}

	if err := validatePayload(s.validator, req); err != nil {
		return dto.ComplaintResponse{}, err
	}

	changes := map[string]interface{}{}
	if req.CategoryID != nil {
		if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
			return dto.ComplaintResponse{}, err
		}
		complaint.CategoryID = *req.CategoryID
		changes["category_id"] = complaint.CategoryID
	}
	if req.StatusID != nil {
		if _, err := s.statuses.GetByID(ctx, *req.StatusID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ComplaintResponse{}, apperrors.NewValidation("status_id", "The selected status id is invalid.")
			}
			return dto.ComplaintResponse{}, err
		}
		complaint.StatusID = *req.StatusID
		changes["status_id"] = complaint.StatusID
	}
	if req.Subject != nil {
		subject := cleanText(s.sanitizer, *req.Subject)
		if subject == "" {
			return dto.ComplaintResponse{}, apperrors.NewValidation("subject", "The subject field is required.")
		}
		complaint.Subject = subject
	}
	if req.Description != nil {
		description := cleanText(s.sanitizer, *req.Description)
		if description == "" {
			return dto.ComplaintResponse{}, apperrors.NewValidation("description", "The description field is required.")
		}
		complaint.Description = description
	}
	if req.IsAnonymous != nil {
		complaint.IsAnonymous = *req.IsAnonymous
	}

	wasResolved := complaint.IsResolved
	if req.IsResolved != nil {
		complaint.MarkResolved(*req.IsResolved, s.now())
		changes["is_resolved"] = complaint.IsResolved
	}

	refs, err := s.storeAttachments(ctx, ComplaintAttachmentFolder, files)
	if err != nil {
		return dto.ComplaintResponse{}, err
	}
	if len(refs) > 0 {
		complaint.Attachments = append(complaint.Attachments, refs...)
	}

	if err := s.complaints.Save(ctx, &complaint); err != nil {
		s.removeAttachments(ctx, refs)
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.ComplaintResponse{}, err
	}

	updated, err := s.complaints.GetByID(ctx, complaint.ID)
	if err != nil {
		return dto.ComplaintResponse{}, err
	}

	if fields.Has(policy.FieldStatusID) || fields.Has(policy.FieldIsResolved) {
		recordActivity(ctx, s.activity, s.logger, ActivityEntry{
			Actor:      actor,
			Action:     "complaint.triaged",
			EntityType: "complaint",
			EntityID:   &updated.ID,
			Metadata:   changes,
		})
	}
	s.publish(ctx, actor, events.ComplaintUpdated, updated.ID, nil, changes)
	if !wasResolved && updated.IsResolved {
		s.publish(ctx, actor, events.ComplaintResolved, updated.ID, nil, map[string]interface{}{
			"resolved_at": updated.ResolvedAt,
		})
	}
	dropDashboardCache(ctx, s.dashboard)

	return dto.NewComplaintResponse(updated, revealsAuthor(actor, updated)), nil
}

func (s *complaintService) Delete(ctx context.Context, actor policy.Actor, id uint) error {
	if err := requireActor(actor); err != nil {
		return err
	}

	ctx, span := s.tracer.Start(ctx, "complaint.delete")
	defer span.End()
	span.SetAttributes(attribute.Int("complaint.id", int(id)))

	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return notFoundAs(err, complaintNotFound)
	}
	if !policy.CanDeleteComplaint(actor, complaint) {
		return apperrors.Forbidden("You do not have permission to delete this complaint")
	}

	refs, err := s.complaints.Delete(ctx, complaint.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return notFoundAs(err, complaintNotFound)
	}
	s.removeAttachments(ctx, refs)

	if !complaint.IsOwnedBy(actor.ID) {
		recordActivity(ctx, s.activity, s.logger, ActivityEntry{
			Actor:      actor,
			Action:     "complaint.deleted",
			EntityType: "complaint",
			EntityID:   &complaint.ID,
			Metadata:   map[string]interface{}{"owner_id": complaint.UserID, "subject": complaint.Subject},
		})
	}
	s.publish(ctx, actor, events.ComplaintDeleted, complaint.ID, nil, nil)
	dropDashboardCache(ctx, s.dashboard)
	return nil
}

func (s *complaintService) ensureCategory(ctx context.Context, id uint) error {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewValidation("category_id", "The selected category id is invalid.")
		}
		return err
	}
	return nil
}

func (s *complaintService) storeAttachments(ctx context.Context, folder string, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 || s.attachments == nil {
		return nil, nil
	}
	return s.attachments.Store(ctx, folder, files)
}

func (s *complaintService) removeAttachments(ctx context.Context, refs []string) {
	if len(refs) == 0 || s.attachments == nil {
		return
	}
	s.attachments.Remove(ctx, refs)
}

func (s *complaintService) publish(ctx context.Context, actor policy.Actor, eventType string, complaintID uint, responseID *uint, data map[string]interface{}) {
	publishEvent(ctx, s.events, s.logger, events.Event{
		Type:        eventType,
		OccurredAt:  s.now().UTC(),
		ActorID:     actor.ID,
		ActorRole:   actor.Role.String(),
		ComplaintID: complaintID,
		ResponseID:  responseID,
		Data:        data,
	})
}

func publishEvent(ctx context.Context, publisher events.Publisher, logger zerolog.Logger, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn().Err(err).Str("event", event.Type).Uint("complaint_id", event.ComplaintID).Msg("event not published")
		return
	}
	observability.ComplaintEvents().WithLabelValues(event.Type).Inc()
}

// revealsAuthor reports whether the author of an anonymous complaint may be shown.
func revealsAuthor(actor policy.Actor, complaint models.Complaint) bool {
	return complaint.IsOwnedBy(actor.ID) || actor.IsAdmin()
}

func visibleResponses(actor policy.Actor, complaint models.Complaint, thread []models.ComplaintResponse) []models.ComplaintResponse {
	visible := make([]models.ComplaintResponse, 0, len(thread))
	for _, response := range thread {
		if policy.CanViewResponse(actor, complaint, response) {
			visible = append(visible, response)
		}
	}
	return visible
}

func requireCleanText(subject, description string) error {
	validation := &apperrors.ValidationError{}
	if subject == "" {
		validation.Add("subject", "The subject field is required.")
	}
	if description == "" {
		validation.Add("description", "The description field is required.")
	}
	return validation.OrNil()
}
