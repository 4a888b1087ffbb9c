package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-complaint-api/internal/dto"
	"github.com/noah-isme/campus-complaint-api/internal/service"
	"github.com/noah-isme/campus-complaint-api/internal/utils"
)

const complaintNotFound = "Complaint not found"

// ComplaintHandler exposes the complaint workflow endpoints.
type ComplaintHandler struct {
	service service.ComplaintService
	logger  zerolog.Logger
}

// NewComplaintHandler constructs the handler.
func NewComplaintHandler(service service.ComplaintService, logger zerolog.Logger) *ComplaintHandler {
	return &ComplaintHandler{
		service: service,
		logger:  logger.With().Str("component", "complaint_handler").Logger(),
	}
}

// Register attaches complaint routes to the router group.
func (h *ComplaintHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *ComplaintHandler) list(c *fiber.Ctx) error {
	req, err := complaintListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.List(c.UserContext(), actorFromContext(c), req)
	if err != nil {
		return writeError(c, h.logger, err, "failed to list complaints")
	}

	return utils.SendSuccess(c, "Complaints retrieved successfully", result)
}

func (h *ComplaintHandler) get(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, complaintNotFound)
	}

	complaint, err := h.service.Get(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return writeError(c, h.logger, err, "failed to load complaint")
	}

	return utils.SendSuccess(c, "Complaint retrieved successfully", complaint)
}

func (h *ComplaintHandler) create(c *fiber.Ctx) error {
	var payload dto.ComplaintCreateRequest
	if err := parseBody(c, &payload); err != nil {
		return invalidPayload(c)
	}
	files, err := uploadedAttachments(c)
	if err != nil {
		return invalidPayload(c)
	}

	complaint, err := h.service.Create(c.UserContext(), actorFromContext(c), payload, files)
	if err != nil {
		return writeError(c, h.logger, err, "failed to create complaint")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Complaint created successfully", complaint)
}

func (h *ComplaintHandler) update(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, complaintNotFound)
	}

	var payload dto.ComplaintUpdateRequest
	if err := parseBody(c, &payload); err != nil {
		return invalidPayload(c)
	}
	files, err := uploadedAttachments(c)
	if err != nil {
		return invalidPayload(c)
	}

	complaint, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload, files)
	if err != nil {
		return writeError(c, h.logger, err, "failed to update complaint")
	}

	return utils.SendSuccess(c, "Complaint updated successfully", complaint)
}

func (h *ComplaintHandler) delete(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, complaintNotFound)
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return writeError(c, h.logger, err, "failed to delete complaint")
	}

	return utils.SendSuccess(c, "Complaint deleted successfully", nil)
}

type queryError string

func (e queryError) Error() string { return string(e) }

func complaintListRequest(c *fiber.Ctx) (dto.ComplaintListRequest, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return dto.ComplaintListRequest{}, queryError("invalid page")
	}
	perPage, err := parseQueryInt(c, "per_page")
	if err != nil {
		return dto.ComplaintListRequest{}, queryError("invalid per_page")
	}
	categoryID, err := parseQueryUint(c, "category_id")
	if err != nil {
		return dto.ComplaintListRequest{}, queryError("invalid category_id")
	}
	statusID, err := parseQueryUint(c, "status_id")
	if err != nil {
		return dto.ComplaintListRequest{}, queryError("invalid status_id")
	}
	resolved, err := parseQueryBool(c, "is_resolved")
	if err != nil {
		return dto.ComplaintListRequest{}, queryError("invalid is_resolved")
	}

	return dto.ComplaintListRequest{
		Page:          page,
		PerPage:       perPage,
		CategoryID:    categoryID,
		StatusID:      statusID,
		IsResolved:    resolved,
		Search:        strings.TrimSpace(c.Query("search")),
		SortField:     strings.TrimSpace(c.Query("sort_field")),
		SortDirection: strings.ToLower(strings.TrimSpace(c.Query("sort_direction"))),
	}, nil
}
