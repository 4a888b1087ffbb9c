package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-complaint-api/internal/dto"
	"github.com/noah-isme/campus-complaint-api/internal/service"
	"github.com/noah-isme/campus-complaint-api/internal/utils"
)

// AdminActivityHandler exposes the audit trail.
type AdminActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewAdminActivityHandler constructs the handler.
func NewAdminActivityHandler(service service.ActivityService, logger zerolog.Logger) *AdminActivityHandler {
	return &AdminActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_activity_handler").Logger(),
	}
}

// Register attaches activity log routes to the router group.
func (h *AdminActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *AdminActivityHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	perPage, err := parseQueryInt(c, "per_page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid per_page")
	}
	actorID, err := parseQueryUint(c, "actor_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid actor_id")
	}
	entityID, err := parseQueryUint(c, "entity_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid entity_id")
	}

	req := dto.AdminActivityListRequest{
		Page:       page,
		PageSize:   perPage,
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
	}
	if actorID != nil {
		req.ActorID = *actorID
	}
	if entityID != nil {
		req.EntityID = *entityID
	}
	if raw := strings.TrimSpace(c.Query("since")); raw != "" {
		since, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid since, expected YYYY-MM-DD")
		}
		req.Since = &since
	}

	response, err := h.service.List(c.UserContext(), actorFromContext(c), req)
	if err != nil {
		return writeError(c, h.logger, err, "failed to list activity logs")
	}

	return utils.SendSuccess(c, "Activity logs retrieved successfully", response)
}
