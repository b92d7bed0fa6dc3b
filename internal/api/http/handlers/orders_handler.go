package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workorder-service/internal/api/dto"
	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/lifecycle"
	"github.com/spec-kit/workorder-service/internal/service"
	util "github.com/spec-kit/workorder-service/pkg/util"
)

// OrdersHandler manages work-order endpoints.
type OrdersHandler struct {
	service *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orderService *service.OrderService) *OrdersHandler {
	return &OrdersHandler{service: orderService}
}

// Create POST /orders.
func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	openedAt := time.Now()
	if req.OpenedAt != nil {
		openedAt = *req.OpenedAt
	}
	input := service.OrderCreateInput{
		Kind:        req.Kind,
		Department:  req.Department,
		Sector:      req.Sector,
		Requester:   req.Requester,
		Phone:       req.Phone,
		Request:     req.Request,
		Category:    req.Category,
		AssetTag:    req.AssetTag,
		Equipment:   req.Equipment,
		Description: req.Description,
		Technician:  req.Technician,
		OpenedAt:    openedAt,
	}
	order, err := h.service.Register(c.Context(), actor, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}

// List GET /orders.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	if _, err := actorFromContext(c); err != nil {
		return err
	}
	orders, err := h.service.List(c.Context(), parseOrderQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponses(orders)})
}

// Get GET /orders/:kind/:number.
func (h *OrdersHandler) Get(c *fiber.Ctx) error {
	if _, err := actorFromContext(c); err != nil {
		return err
	}
	kind, number, err := orderKeyFromParams(c)
	if err != nil {
		return err
	}
	order, err := h.service.Get(c.Context(), kind, number)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}

// Transition PATCH /orders/:kind/:number/status.
func (h *OrdersHandler) Transition(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	kind, number, err := orderKeyFromParams(c)
	if err != nil {
		return err
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	payload := lifecycle.Payload{
		WorkDescription: req.WorkDescription,
		PickupName:      req.PickupName,
	}
	order, err := h.service.Transition(c.Context(), actor, kind, number, req.Status, payload)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}

// Finish POST /orders/:kind/:number/finish.
func (h *OrdersHandler) Finish(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	kind, number, err := orderKeyFromParams(c)
	if err != nil {
		return err
	}
	var req dto.FinishRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	order, err := h.service.Finish(c.Context(), actor, kind, number, req.WorkDescription)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}

// ConfirmPickup POST /orders/:kind/:number/pickup.
func (h *OrdersHandler) ConfirmPickup(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	kind, number, err := orderKeyFromParams(c)
	if err != nil {
		return err
	}
	var req dto.PickupRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	order, err := h.service.ConfirmPickup(c.Context(), actor, kind, number, req.PickupName)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}

// UpdateDetails PUT /orders/:kind/:number.
func (h *OrdersHandler) UpdateDetails(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	kind, number, err := orderKeyFromParams(c)
	if err != nil {
		return err
	}
	var req dto.UpdateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	input := service.OrderUpdateInput{
		Department:  req.Department,
		Sector:      req.Sector,
		Requester:   req.Requester,
		Phone:       req.Phone,
		Request:     req.Request,
		Category:    req.Category,
		AssetTag:    req.AssetTag,
		Equipment:   req.Equipment,
		Description: req.Description,
		Technician:  req.Technician,
	}
	order, err := h.service.UpdateDetails(c.Context(), actor, kind, number, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}

// Worklist GET /orders/worklist.
func (h *OrdersHandler) Worklist(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	technician := actor.DisplayName
	if actor.Role == domain.RoleAdmin {
		if override := c.Query("technician"); override != "" {
			technician = override
		}
	}
	worklist, err := h.service.WorklistFor(c.Context(), technician)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.WorklistResponse{
		Pending:  dto.NewOrderResponses(worklist.Pending),
		Resolved: dto.NewOrderResponses(worklist.Resolved),
	}})
}

func parseOrderQuery(c *fiber.Ctx) service.OrderListFilter {
	filter := service.OrderListFilter{}
	if kindStr := c.Query("kind"); kindStr != "" {
		kind := domain.OrderKind(strings.ToUpper(kindStr))
		filter.Kind = &kind
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.OrderStatus(strings.TrimSpace(part)))
		}
	}
	filter.Technician = optionalString(c.Query("technician"))
	filter.Department = optionalString(c.Query("department"))
	filter.SearchTerm = optionalString(c.Query("q"))
	if from := parseTime(c.Query("opened_from")); from != nil {
		filter.OpenedFrom = from
	}
	if to := parseTime(c.Query("opened_to")); to != nil {
		filter.OpenedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}
