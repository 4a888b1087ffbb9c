package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-complaint-api/internal/dto"
	"github.com/noah-isme/campus-complaint-api/internal/service"
	"github.com/noah-isme/campus-complaint-api/internal/utils"
)

// StatusHandler exposes complaint status endpoints.
type StatusHandler struct {
	service service.StatusService
	logger  zerolog.Logger
}

// NewStatusHandler constructs the handler.
func NewStatusHandler(service service.StatusService, logger zerolog.Logger) *StatusHandler {
	return &StatusHandler{
		service: service,
		logger:  logger.With().Str("component", "status_handler").Logger(),
	}
}

// Register attaches the read routes available to every authenticated user.
func (h *StatusHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
}

// RegisterAdmin attaches the mutation routes.
func (h *StatusHandler) RegisterAdmin(router fiber.Router) {
	router.Post("", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *StatusHandler) list(c *fiber.Ctx) error {
	activeOnly, err := parseQueryBool(c, "active_only")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid active_only filter")
	}

	items, err := h.service.List(c.UserContext(), activeOnly != nil && *activeOnly)
	if err != nil {
		return writeError(c, h.logger, err, "failed to list statuses")
	}

	return utils.SendSuccess(c, "Statuses retrieved successfully", items)
}

func (h *StatusHandler) get(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "Status not found")
	}

	item, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.logger, err, "failed to load status")
	}

	return utils.SendSuccess(c, "Status retrieved successfully", item)
}

func (h *StatusHandler) create(c *fiber.Ctx) error {
	var payload dto.StatusCreateRequest
	if err := parseBody(c, &payload); err != nil {
		return invalidPayload(c)
	}

	item, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return writeError(c, h.logger, err, "failed to create status")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Status created successfully", item)
}

func (h *StatusHandler) update(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "Status not found")
	}

	var payload dto.StatusUpdateRequest
	if err := parseBody(c, &payload); err != nil {
		return invalidPayload(c)
	}

	item, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return writeError(c, h.logger, err, "failed to update status")
	}

	return utils.SendSuccess(c, "Status updated successfully", item)
}

func (h *StatusHandler) delete(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "Status not found")
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return writeError(c, h.logger, err, "failed to delete status")
	}

	return utils.SendSuccess(c, "Status deleted successfully", nil)
}
