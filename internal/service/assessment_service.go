package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/events"
	"github.com/spec-kit/workorder-service/internal/repository"
	util "github.com/spec-kit/workorder-service/pkg/util"
)

// AssessmentService manages technical assessment reports.
type AssessmentService struct {
	assessments repository.AssessmentRepository
	orders      repository.WorkOrderRepository
	orderSvc    *OrderService
	dispatcher  events.Dispatcher
}

// AssessmentDependencies bundles collaborators for the assessment service.
type AssessmentDependencies struct {
	AssessmentRepo repository.AssessmentRepository
	OrderRepo      repository.WorkOrderRepository
	OrderService   *OrderService
	Dispatcher     events.Dispatcher
}

// AssessmentCreateInput describes a new component finding.
type AssessmentCreateInput struct {
	OrderNumber   string
	OrderKind     domain.OrderKind
	Component     string
	Specification string
	PurchaseLink  string
	Notes         string
}

// NewAssessmentService constructs the service.
func NewAssessmentService(deps AssessmentDependencies) *AssessmentService {
	return &AssessmentService{
		assessments: deps.AssessmentRepo,
		orders:      deps.OrderRepo,
		orderSvc:    deps.OrderService,
		dispatcher:  deps.Dispatcher,
	}
}

// File records an assessment against an order and forces the order into
// AWAITING_PARTS. The insert and the status write share one transaction.
func (s *AssessmentService) File(ctx context.Context, actor Actor, input AssessmentCreateInput) (*domain.Assessment, error) {
	if !input.OrderKind.Valid() {
		return nil, util.NewValidationError("unknown order kind", nil)
	}
	if strings.TrimSpace(input.Component) == "" || strings.TrimSpace(input.Specification) == "" {
		return nil, util.NewValidationError("component and specification required", nil)
	}

	order, err := s.orders.GetByNumber(ctx, input.OrderKind, input.OrderNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("work order", map[string]any{"number": input.OrderNumber})
		}
		return nil, err
	}

	// System-triggered transition: no role gate, terminal guard still holds.
	result, err := s.orderSvc.ForceAwaitingParts(order)
	if err != nil {
		return nil, err
	}

	assessment := &domain.Assessment{
		OrderNumber:   order.Number,
		OrderKind:     order.Kind,
		Component:     strings.TrimSpace(input.Component),
		Specification: strings.TrimSpace(input.Specification),
		PurchaseLink:  strings.TrimSpace(input.PurchaseLink),
		Notes:         strings.TrimSpace(input.Notes),
		Technician:    actor.DisplayName,
		Status:        domain.AssessmentStatusPending,
	}
	if assessment.Technician == "" {
		assessment.Technician = actor.Username
	}

	if err := s.assessments.FileAgainstOrder(ctx, assessment, order.ID, order.Status, result.Status); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, util.NewConflict("order status changed concurrently", map[string]any{"number": order.Number})
		}
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventAssessmentFiled,
		OrderNumber: order.Number,
		OrderKind:   &order.Kind,
		Actor:       eventActor(actor),
		Payload: events.AssessmentFiledPayload{
			AssessmentID: assessment.ID,
			Component:    assessment.Component,
			Technician:   assessment.Technician,
		},
	})
	return assessment, nil
}

// ListByOrder returns the assessments filed against an order.
func (s *AssessmentService) ListByOrder(ctx context.Context, kind domain.OrderKind, number string) ([]domain.Assessment, error) {
	if !kind.Valid() {
		return nil, util.NewValidationError("unknown order kind", nil)
	}
	return s.assessments.ListByOrder(ctx, kind, number)
}

// Resolve records the purchasing decision for an assessment.
func (s *AssessmentService) Resolve(ctx context.Context, actor Actor, id string, status domain.AssessmentStatus) (*domain.Assessment, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, util.NewForbidden("only admins may resolve assessments")
	}
	// A resolution is a decision; filing is the only way back to pending.
	if status != domain.AssessmentStatusApproved && status != domain.AssessmentStatusDenied {
		return nil, util.NewValidationError("resolution must be APPROVED or DENIED", nil)
	}

	resolvedAt := time.Now()
	if err := s.assessments.UpdateStatus(ctx, id, status, resolvedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("assessment", map[string]any{"id": id})
		}
		return nil, err
	}
	assessment, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("assessment", map[string]any{"id": id})
		}
		return nil, err
	}
	return assessment, nil
}

func (s *AssessmentService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
