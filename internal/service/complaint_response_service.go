package service

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/campus-complaint-api/internal/apperrors"
	"github.com/noah-isme/campus-complaint-api/internal/dto"
	"github.com/noah-isme/campus-complaint-api/internal/events"
	"github.com/noah-isme/campus-complaint-api/internal/models"
	"github.com/noah-isme/campus-complaint-api/internal/policy"
	"github.com/noah-isme/campus-complaint-api/internal/repository"
)

const responseNotFound = "Response not found"

// ComplaintResponseService manages the reply thread of a complaint.
type ComplaintResponseService interface {
	List(ctx context.Context, actor policy.Actor, complaintID uint) ([]dto.ResponseEntry, error)
	Get(ctx context.Context, actor policy.Actor, complaintID, responseID uint) (dto.ResponseEntry, error)
	Create(ctx context.Context, actor policy.Actor, complaintID uint, req dto.ResponseCreateRequest, files []*multipart.FileHeader) (dto.ResponseEntry, error)
	Update(ctx context.Context, actor policy.Actor, complaintID, responseID uint, req dto.ResponseUpdateRequest, files []*multipart.FileHeader) (dto.ResponseEntry, error)
	Delete(ctx context.Context, actor policy.Actor, complaintID, responseID uint) error
}

// ComplaintResponseServiceDeps groups the collaborators of the response service.
type ComplaintResponseServiceDeps struct {
	Complaints  repository.ComplaintRepository
	Responses   repository.ComplaintResponseRepository
	Attachments AttachmentService
	Validator   *validator.Validate
	Events      events.Publisher
	Logger      zerolog.Logger
}

type complaintResponseService struct {
	complaints  repository.ComplaintRepository
	responses   repository.ComplaintResponseRepository
	attachments AttachmentService
	validator   *validator.Validate
	events      events.Publisher
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewComplaintResponseService constructs the response thread service.
func NewComplaintResponseService(deps ComplaintResponseServiceDeps) ComplaintResponseService {
	publisher := deps.Events
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	return &complaintResponseService{
		complaints:  deps.Complaints,
		responses:   deps.Responses,
		attachments: deps.Attachments,
		validator:   deps.Validator,
		events:      publisher,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      deps.Logger.With().Str("component", "complaint_response_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/campus-complaint-api/internal/service/complaint_response"),
		now:         time.Now,
	}
}

func (s *complaintResponseService) List(ctx context.Context, actor policy.Actor, complaintID uint) ([]dto.ResponseEntry, error) {
	complaint, err := s.loadComplaint(ctx, actor, complaintID, "You do not have permission to view responses for this complaint")
	if err != nil {
		return nil, err
	}

	thread, err := s.responses.ListByComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ResponseEntry, 0, len(thread))
	for _, response := range visibleResponses(actor, complaint, thread) {
		items = append(items, dto.NewResponseEntry(response))
	}
	return items, nil
}

func (s *complaintResponseService) Get(ctx context.Context, actor policy.Actor, complaintID, responseID uint) (dto.ResponseEntry, error) {
	complaint, err := s.loadComplaint(ctx, actor, complaintID, "You do not have permission to view this response")
	if err != nil {
		return dto.ResponseEntry{}, err
	}

	response, err := s.responses.GetByID(ctx, complaint.ID, responseID)
	if err != nil {
		return dto.ResponseEntry{}, notFoundAs(err, responseNotFound)
	}
	if !policy.CanViewResponse(actor, complaint, response) {
		return dto.ResponseEntry{}, apperrors.Forbidden("You do not have permission to view this private response")
	}
	return dto.NewResponseEntry(response), nil
}

func (s *complaintResponseService) Create(ctx context.Context, actor policy.Actor, complaintID uint, req dto.ResponseCreateRequest, files []*multipart.FileHeader) (dto.ResponseEntry, error) {
	ctx, span := s.tracer.Start(ctx, "response.create")
	defer span.End()
	span.SetAttributes(
		attribute.Int("complaint.id", int(complaintID)),
		attribute.Bool("response.private", req.IsPrivate),
	)

	complaint, err := s.loadComplaint(ctx, actor, complaintID, "You do not have permission to respond to this complaint")
	if err != nil {
		return dto.ResponseEntry{}, err
	}
	if !policy.CanCreateResponse(actor, complaint, req.IsPrivate) {
		return dto.ResponseEntry{}, apperrors.Forbidden("Students cannot create private responses")
	}

	if err := validatePayload(s.validator, req); err != nil {
		return dto.ResponseEntry{}, err
	}
	text := cleanText(s.sanitizer, req.Response)
	if text == "" {
		return dto.ResponseEntry{}, apperrors.NewValidation("response", "The response field is required.")
	}

	refs, err := s.storeAttachments(ctx, files)
	if err != nil {
		return dto.ResponseEntry{}, err
	}

	response := models.ComplaintResponse{
		ComplaintID: complaint.ID,
		UserID:      actor.ID,
		Response:    text,
		Attachments: refs,
		IsPrivate:   req.IsPrivate && policy.CanSetPrivate(actor),
	}
	if err := s.responses.Create(ctx, &response); err != nil {
		s.removeAttachments(ctx, refs)
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.ResponseEntry{}, err
	}

	created, err := s.responses.GetByID(ctx, complaint.ID, response.ID)
	if err != nil {
		return dto.ResponseEntry{}, err
	}

	publishEvent(ctx, s.events, s.logger, events.Event{
		Type:        events.ResponseCreated,
		OccurredAt:  s.now().UTC(),
		ActorID:     actor.ID,
		ActorRole:   actor.Role.String(),
		ComplaintID: complaint.ID,
		ResponseID:  &created.ID,
		Data:        map[string]interface{}{"is_private": created.IsPrivate},
	})

	return dto.NewResponseEntry(created), nil
}

func (s *complaintResponseService) Update(ctx context.Context, actor policy.Actor, complaintID, responseID uint, req dto.ResponseUpdateRequest, files []*multipart.FileHeader) (dto.ResponseEntry, error) {
	ctx, span := s.tracer.Start(ctx, "response.update")
	defer span.End()
	span.SetAttributes(attribute.Int("response.id", int(responseID)))

	complaint, err := s.findComplaint(ctx, actor, complaintID)
	if err != nil {
		return dto.ResponseEntry{}, err
	}
	response, err := s.responses.GetByID(ctx, complaint.ID, responseID)
	if err != nil {
		return dto.ResponseEntry{}, notFoundAs(err, responseNotFound)
	}
	if !policy.CanMutateResponse(actor, response) {
		return dto.ResponseEntry{}, apperrors.Forbidden("You do not have permission to update this response")
	}
	if req.IsPrivate != nil && *req.IsPrivate && !policy.CanSetPrivate(actor) {
		return dto.ResponseEntry{}, apperrors.Forbidden("Students cannot create private responses")
	}

	if err := validatePayload(s.validator, req); err != nil {
		return dto.ResponseEntry{}, err
	}
	if req.Response != nil {
		text := cleanText(s.sanitizer, *req.Response)
		if text == "" {
			return dto.ResponseEntry{}, apperrors.NewValidation("response", "The response field is required.")
		}
		response.Response = text
	}
	if req.IsPrivate != nil && policy.CanSetPrivate(actor) {
		response.IsPrivate = *req.IsPrivate
	}

	refs, err := s.storeAttachments(ctx, files)
	if err != nil {
		return dto.ResponseEntry{}, err
	}
	if len(refs) > 0 {
		response.Attachments = append(response.Attachments, refs...)
	}

	if err := s.responses.Save(ctx, &response); err != nil {
		s.removeAttachments(ctx, refs)
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.ResponseEntry{}, err
	}

	updated, err := s.responses.GetByID(ctx, complaint.ID, response.ID)
	if err != nil {
		return dto.ResponseEntry{}, err
	}
	return dto.NewResponseEntry(updated), nil
}

func (s *complaintResponseService) Delete(ctx context.Context, actor policy.Actor, complaintID, responseID uint) error {
	complaint, err := s.findComplaint(ctx, actor, complaintID)
	if err != nil {
		return err
	}
	response, err := s.responses.GetByID(ctx, complaint.ID, responseID)
	if err != nil {
		return notFoundAs(err, responseNotFound)
	}
	if !policy.CanDeleteResponse(actor, response) {
		return apperrors.Forbidden("You do not have permission to delete this response")
	}

	if err := s.responses.Delete(ctx, response.ID); err != nil {
		return notFoundAs(err, responseNotFound)
	}
	s.removeAttachments(ctx, response.Attachments)

	s.logger.Info().
		Uint("response_id", response.ID).
		Uint("complaint_id", complaint.ID).
		Uint("actor_id", actor.ID).
		Msg("response deleted")
	return nil
}

func (s *complaintResponseService) findComplaint(ctx context.Context, actor policy.Actor, complaintID uint) (models.Complaint, error) {
	if err := requireActor(actor); err != nil {
		return models.Complaint{}, err
	}
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return models.Complaint{}, notFoundAs(err, complaintNotFound)
	}
	return complaint, nil
}

// loadComplaint fetches the parent complaint and rejects actors who cannot see it.
func (s *complaintResponseService) loadComplaint(ctx context.Context, actor policy.Actor, complaintID uint, forbidden string) (models.Complaint, error) {
	complaint, err := s.findComplaint(ctx, actor, complaintID)
	if err != nil {
		return models.Complaint{}, err
	}
	if !policy.CanViewComplaint(actor, complaint) {
		return models.Complaint{}, apperrors.Forbidden(forbidden)
	}
	return complaint, nil
}

func (s *complaintResponseService) storeAttachments(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 || s.attachments == nil {
		return nil, nil
	}
	return s.attachments.Store(ctx, ResponseAttachmentFolder, files)
}

func (s *complaintResponseService) removeAttachments(ctx context.Context, refs []string) {
	if len(refs) == 0 || s.attachments == nil {
		return
	}
	s.attachments.Remove(ctx, refs)
}
