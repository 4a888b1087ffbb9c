package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-complaint-api/internal/dto"
	"github.com/noah-isme/campus-complaint-api/internal/service"
	"github.com/noah-isme/campus-complaint-api/internal/utils"
)

// AdminUserHandler exposes account administration.
type AdminUserHandler struct {
	service service.AdminUserService
	logger  zerolog.Logger
}

// NewAdminUserHandler constructs the handler.
func NewAdminUserHandler(service service.AdminUserService, logger zerolog.Logger) *AdminUserHandler {
	return &AdminUserHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_user_handler").Logger(),
	}
}

// Register attaches user management routes to the router group.
func (h *AdminUserHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *AdminUserHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	perPage, err := parseQueryInt(c, "per_page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid per_page")
	}

	result, err := h.service.List(c.UserContext(), actorFromContext(c), dto.AdminUserListRequest{
		Page:          page,
		PageSize:      perPage,
		Role:          strings.TrimSpace(c.Query("role")),
		Search:        strings.TrimSpace(c.Query("search")),
		SortField:     strings.TrimSpace(c.Query("sort_field")),
		SortDirection: strings.ToLower(strings.TrimSpace(c.Query("sort_direction"))),
	})
	if err != nil {
		return writeError(c, h.logger, err, "failed to list users")
	}

	return utils.SendSuccess(c, "Users retrieved successfully", result)
}

func (h *AdminUserHandler) create(c *fiber.Ctx) error {
	var payload dto.AdminUserCreateRequest
	if err := parseBody(c, &payload); err != nil {
		return invalidPayload(c)
	}

	user, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return writeError(c, h.logger, err, "failed to create user")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "User created successfully", user)
}

func (h *AdminUserHandler) update(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "User not found")
	}

	var payload dto.AdminUserUpdateRequest
	if err := parseBody(c, &payload); err != nil {
		return invalidPayload(c)
	}

	user, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return writeError(c, h.logger, err, "failed to update user")
	}

	return utils.SendSuccess(c, "User updated successfully", user)
}

func (h *AdminUserHandler) delete(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "User not found")
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return writeError(c, h.logger, err, "failed to delete user")
	}

	return utils.SendSuccess(c, "User deleted successfully", nil)
}
