package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workorder-service/internal/service"
)

// DashboardHandler serves aggregate counters for the landing page.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboardService}
}

// Summary GET /dashboard.
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	if _, err := actorFromContext(c); err != nil {
		return err
	}
	summary, err := h.service.Summary(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}
