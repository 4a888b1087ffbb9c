package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-complaint-api/internal/service"
	"github.com/noah-isme/campus-complaint-api/internal/utils"
)

// SeedHandler lets administrators reinstall the default taxonomy.
type SeedHandler struct {
	service service.SeedService
	logger  zerolog.Logger
}

// NewSeedHandler constructs a seed handler.
func NewSeedHandler(service service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires seed routes.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("", h.seedDefaults)
}

func (h *SeedHandler) seedDefaults(c *fiber.Ctx) error {
	result, err := h.service.SeedDefaults(c.UserContext())
	if err != nil {
		return writeError(c, h.logger, err, "failed to seed defaults")
	}

	requestLogger(h.logger, c).Info().
		Uint("actor_id", userIDFromContext(c)).
		Int64("categories", result.Categories).
		Int64("statuses", result.Statuses).
		Msg("defaults seeded")

	return utils.SendSuccess(c, "Defaults seeded successfully", result)
}
