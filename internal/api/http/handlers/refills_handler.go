package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workorder-service/internal/api/dto"
	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/repository"
	"github.com/spec-kit/workorder-service/internal/service"
	util "github.com/spec-kit/workorder-service/pkg/util"
)

// RefillsHandler manages supply-refill endpoints.
type RefillsHandler struct {
	service *service.RefillService
}

// NewRefillsHandler constructs handler.
func NewRefillsHandler(refillService *service.RefillService) *RefillsHandler {
	return &RefillsHandler{service: refillService}
}

func refillInputFromRequest(req dto.RefillRequest) service.RefillInput {
	return service.RefillInput{
		Status:        req.Status,
		Department:    req.Department,
		Sector:        req.Sector,
		EquipmentID:   req.EquipmentID,
		SupplyType:    req.SupplyType,
		SupplyModel:   req.SupplyModel,
		Color:         req.Color,
		Quantity:      req.Quantity,
		Supplier:      req.Supplier,
		Cost:          req.Cost,
		InvoiceNumber: req.InvoiceNumber,
		OrderNumber:   req.OrderNumber,
		OrderKind:     req.OrderKind,
		Notes:         req.Notes,
		SentAt:        req.SentAt,
		ReturnedAt:    req.ReturnedAt,
	}
}

// Create POST /refills.
func (h *RefillsHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.RefillRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	refill, err := h.service.Register(c.Context(), actor, refillInputFromRequest(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewRefillResponse(refill)})
}

// Get GET /refills/:id.
func (h *RefillsHandler) Get(c *fiber.Ctx) error {
	if _, err := actorFromContext(c); err != nil {
		return err
	}
	refill, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRefillResponse(refill)})
}

// List GET /refills.
func (h *RefillsHandler) List(c *fiber.Ctx) error {
	if _, err := actorFromContext(c); err != nil {
		return err
	}
	filter := repository.RefillFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.RefillStatus(strings.TrimSpace(part)))
		}
	}
	filter.Department = optionalString(c.Query("department"))
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	refills, err := h.service.List(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRefillResponses(refills)})
}

// Update PUT /refills/:id.
func (h *RefillsHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.RefillRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	refill, err := h.service.Update(c.Context(), actor, c.Params("id"), refillInputFromRequest(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRefillResponse(refill)})
}

// Printers GET /refills/printers lists printer equipment for refill forms.
func (h *RefillsHandler) Printers(c *fiber.Ctx) error {
	if _, err := actorFromContext(c); err != nil {
		return err
	}
	printers, err := h.service.Printers(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEquipmentResponses(printers)})
}
