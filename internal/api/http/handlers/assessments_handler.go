package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workorder-service/internal/api/dto"
	"github.com/spec-kit/workorder-service/internal/service"
	util "github.com/spec-kit/workorder-service/pkg/util"
)

// AssessmentsHandler manages assessment-report endpoints.
type AssessmentsHandler struct {
	service *service.AssessmentService
}

// NewAssessmentsHandler constructs handler.
func NewAssessmentsHandler(assessmentService *service.AssessmentService) *AssessmentsHandler {
	return &AssessmentsHandler{service: assessmentService}
}

// File POST /assessments.
func (h *AssessmentsHandler) File(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateAssessmentRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	input := service.AssessmentCreateInput{
		OrderNumber:   req.OrderNumber,
		OrderKind:     req.OrderKind,
		Component:     req.Component,
		Specification: req.Specification,
		PurchaseLink:  req.PurchaseLink,
		Notes:         req.Notes,
	}
	assessment, err := h.service.File(c.Context(), actor, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAssessmentResponse(assessment)})
}

// ListByOrder GET /orders/:kind/:number/assessments.
func (h *AssessmentsHandler) ListByOrder(c *fiber.Ctx) error {
	if _, err := actorFromContext(c); err != nil {
		return err
	}
	kind, number, err := orderKeyFromParams(c)
	if err != nil {
		return err
	}
	items, err := h.service.ListByOrder(c.Context(), kind, number)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAssessmentResponses(items)})
}

// Resolve PATCH /assessments/:id. Admin only.
func (h *AssessmentsHandler) Resolve(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.ResolveAssessmentRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	assessment, err := h.service.Resolve(c.Context(), actor, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAssessmentResponse(assessment)})
}
