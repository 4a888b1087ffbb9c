package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-complaint-api/internal/dto"
	"github.com/noah-isme/campus-complaint-api/internal/service"
	"github.com/noah-isme/campus-complaint-api/internal/utils"
)

const responseNotFound = "Response not found"

// ComplaintResponseHandler exposes the reply thread under a complaint.
type ComplaintResponseHandler struct {
	service service.ComplaintResponseService
	logger  zerolog.Logger
}

// NewComplaintResponseHandler constructs the handler.
func NewComplaintResponseHandler(service service.ComplaintResponseService, logger zerolog.Logger) *ComplaintResponseHandler {
	return &ComplaintResponseHandler{
		service: service,
		logger:  logger.With().Str("component", "complaint_response_handler").Logger(),
	}
}

// Register attaches thread routes. The group path must bind the complaint as :id.
func (h *ComplaintResponseHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:responseId", h.get)
	router.Put("/:responseId", h.update)
	router.Delete("/:responseId", h.delete)
}

// threadIDs parses both path ids, writing a 404 when either is malformed.
func (h *ComplaintResponseHandler) threadIDs(c *fiber.Ctx) (uint, uint, bool) {
	complaintID, ok := parseIDParam(c, "id")
	if !ok {
		_ = utils.SendError(c, fiber.StatusNotFound, complaintNotFound)
		return 0, 0, false
	}
	responseID, ok := parseIDParam(c, "responseId")
	if !ok {
		_ = utils.SendError(c, fiber.StatusNotFound, responseNotFound)
		return 0, 0, false
	}
	return complaintID, responseID, true
}

func (h *ComplaintResponseHandler) list(c *fiber.Ctx) error {
	complaintID, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, complaintNotFound)
	}

	items, err := h.service.List(c.UserContext(), actorFromContext(c), complaintID)
	if err != nil {
		return writeError(c, h.logger, err, "failed to list responses")
	}

	return utils.SendSuccess(c, "Responses retrieved successfully", items)
}

func (h *ComplaintResponseHandler) get(c *fiber.Ctx) error {
	complaintID, responseID, ok := h.threadIDs(c)
	if !ok {
		return nil
	}

	item, err := h.service.Get(c.UserContext(), actorFromContext(c), complaintID, responseID)
	if err != nil {
		return writeError(c, h.logger, err, "failed to load response")
	}

	return utils.SendSuccess(c, "Response retrieved successfully", item)
}

func (h *ComplaintResponseHandler) create(c *fiber.Ctx) error {
	complaintID, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, complaintNotFound)
	}

	var payload dto.ResponseCreateRequest
	if err := parseBody(c, &payload); err != nil {
		return invalidPayload(c)
	}
	files, err := uploadedAttachments(c)
	if err != nil {
		return invalidPayload(c)
	}

	item, err := h.service.Create(c.UserContext(), actorFromContext(c), complaintID, payload, files)
	if err != nil {
		return writeError(c, h.logger, err, "failed to create response")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Response added successfully", item)
}

func (h *ComplaintResponseHandler) update(c *fiber.Ctx) error {
	complaintID, responseID, ok := h.threadIDs(c)
	if !ok {
		return nil
	}

	var payload dto.ResponseUpdateRequest
	if err := parseBody(c, &payload); err != nil {
		return invalidPayload(c)
	}
	files, err := uploadedAttachments(c)
	if err != nil {
		return invalidPayload(c)
	}

	item, err := h.service.Update(c.UserContext(), actorFromContext(c), complaintID, responseID, payload, files)
	if err != nil {
		return writeError(c, h.logger, err, "failed to update response")
	}

	return utils.SendSuccess(c, "Response updated successfully", item)
}

func (h *ComplaintResponseHandler) delete(c *fiber.Ctx) error {
	complaintID, responseID, ok := h.threadIDs(c)
	if !ok {
		return nil
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), complaintID, responseID); err != nil {
		return writeError(c, h.logger, err, "failed to delete response")
	}

	return utils.SendSuccess(c, "Response deleted successfully", nil)
}
