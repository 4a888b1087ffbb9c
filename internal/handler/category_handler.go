package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-complaint-api/internal/dto"
	"github.com/noah-isme/campus-complaint-api/internal/service"
	"github.com/noah-isme/campus-complaint-api/internal/utils"
)

// CategoryHandler exposes complaint category endpoints.
type CategoryHandler struct {
	service service.CategoryService
	logger  zerolog.Logger
}

// NewCategoryHandler constructs the handler.
func NewCategoryHandler(service service.CategoryService, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		logger:  logger.With().Str("component", "category_handler").Logger(),
	}
}

// Register attaches the read routes available to every authenticated user.
func (h *CategoryHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
}

// RegisterAdmin attaches the mutation routes.
func (h *CategoryHandler) RegisterAdmin(router fiber.Router) {
	router.Post("", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *CategoryHandler) list(c *fiber.Ctx) error {
	activeOnly, err := parseQueryBool(c, "active_only")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid active_only filter")
	}

	items, err := h.service.List(c.UserContext(), activeOnly != nil && *activeOnly)
	if err != nil {
		return writeError(c, h.logger, err, "failed to list categories")
	}

	return utils.SendSuccess(c, "Categories retrieved successfully", items)
}

func (h *CategoryHandler) get(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "Category not found")
	}

	item, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.logger, err, "failed to load category")
	}

	return utils.SendSuccess(c, "Category retrieved successfully", item)
}

func (h *CategoryHandler) create(c *fiber.Ctx) error {
	var payload dto.CategoryCreateRequest
	if err := parseBody(c, &payload); err != nil {
		return invalidPayload(c)
	}

	item, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return writeError(c, h.logger, err, "failed to create category")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Category created successfully", item)
}

func (h *CategoryHandler) update(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "Category not found")
	}

	var payload dto.CategoryUpdateRequest
	if err := parseBody(c, &payload); err != nil {
		return invalidPayload(c)
	}

	item, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return writeError(c, h.logger, err, "failed to update category")
	}

	return utils.SendSuccess(c, "Category updated successfully", item)
}

func (h *CategoryHandler) delete(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "Category not found")
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return writeError(c, h.logger, err, "failed to delete category")
	}

	return utils.SendSuccess(c, "Category deleted successfully", nil)
}
