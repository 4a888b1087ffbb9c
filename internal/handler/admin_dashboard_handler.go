package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-complaint-api/internal/dto"
	"github.com/noah-isme/campus-complaint-api/internal/service"
	"github.com/noah-isme/campus-complaint-api/internal/utils"
)

// AdminDashboardHandler exposes the dashboard summary and reports.
type AdminDashboardHandler struct {
	service service.AdminDashboardService
	logger  zerolog.Logger
}

// NewAdminDashboardHandler constructs the handler.
func NewAdminDashboardHandler(service service.AdminDashboardService, logger zerolog.Logger) *AdminDashboardHandler {
	return &AdminDashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_dashboard_handler").Logger(),
	}
}

// Register attaches the reporting routes to the admin group.
func (h *AdminDashboardHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.dashboard)
	router.Get("/reports", h.report)
}

func (h *AdminDashboardHandler) dashboard(c *fiber.Ctx) error {
	summary, err := h.service.Dashboard(c.UserContext(), actorFromContext(c))
	if err != nil {
		return writeError(c, h.logger, err, "failed to build dashboard")
	}

	return utils.SendSuccess(c, "Dashboard statistics retrieved successfully", summary)
}

func (h *AdminDashboardHandler) report(c *fiber.Ctx) error {
	var req dto.ReportRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid report query")
	}

	report, err := h.service.Report(c.UserContext(), actorFromContext(c), req)
	if err != nil {
		return writeError(c, h.logger, err, "failed to generate report")
	}

	return utils.SendSuccess(c, "Report generated successfully", report)
}
