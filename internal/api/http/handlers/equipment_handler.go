package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workorder-service/internal/api/dto"
	"github.com/spec-kit/workorder-service/internal/repository"
	"github.com/spec-kit/workorder-service/internal/service"
	util "github.com/spec-kit/workorder-service/pkg/util"
)

// EquipmentHandler manages inventory endpoints.
type EquipmentHandler struct {
	service *service.EquipmentService
}

// NewEquipmentHandler constructs handler.
func NewEquipmentHandler(equipmentService *service.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{service: equipmentService}
}

func equipmentInputFromRequest(req dto.EquipmentRequest) service.EquipmentInput {
	return service.EquipmentInput{
		Category:      req.Category,
		AssetTag:      req.AssetTag,
		Hostname:      req.Hostname,
		Specification: req.Specification,
		Department:    req.Department,
		Sector:        req.Sector,
		Location:      req.Location,
		IP:            req.IP,
		MAC:           req.MAC,
		Subnet:        req.Subnet,
		Gateway:       req.Gateway,
		DNS:           req.DNS,
		SerialNumber:  req.SerialNumber,
		Notes:         req.Notes,
	}
}

// Create POST /equipment.
func (h *EquipmentHandler) Create(c *fiber.Ctx) error {
	if _, err := actorFromContext(c); err != nil {
		return err
	}
	var req dto.EquipmentRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	item, err := h.service.Create(c.Context(), equipmentInputFromRequest(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewEquipmentResponse(item)})
}

// Get GET /equipment/:id.
func (h *EquipmentHandler) Get(c *fiber.Ctx) error {
	if _, err := actorFromContext(c); err != nil {
		return err
	}
	item, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEquipmentResponse(item)})
}

// Update PUT /equipment/:id.
func (h *EquipmentHandler) Update(c *fiber.Ctx) error {
	if _, err := actorFromContext(c); err != nil {
		return err
	}
	var req dto.EquipmentRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	item, err := h.service.Update(c.Context(), c.Params("id"), equipmentInputFromRequest(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEquipmentResponse(item)})
}

// Delete DELETE /equipment/:id. Admin only.
func (h *EquipmentHandler) Delete(c *fiber.Ctx) error {
	if _, err := actorFromContext(c); err != nil {
		return err
	}
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// List GET /equipment.
func (h *EquipmentHandler) List(c *fiber.Ctx) error {
	if _, err := actorFromContext(c); err != nil {
		return err
	}
	filter := repository.EquipmentFilter{}
	filter.Category = optionalString(c.Query("category"))
	filter.Department = optionalString(c.Query("department"))
	filter.SearchTerm = optionalString(c.Query("q"))
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	items, err := h.service.List(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEquipmentResponses(items)})
}
