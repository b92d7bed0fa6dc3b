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
	"github.com/spec-kit/workorder-service/internal/lifecycle"
	"github.com/spec-kit/workorder-service/internal/repository"
	util "github.com/spec-kit/workorder-service/pkg/util"
)

// Actor identifies the authenticated operator performing an action.
type Actor struct {
	Username    string
	DisplayName string
	Role        domain.Role
}

// OrderService coordinates work-order workflows.
type OrderService struct {
	orders     repository.WorkOrderRepository
	machine    *lifecycle.Machine
	dispatcher events.Dispatcher
}

// OrderDependencies bundles collaborators for the order service.
type OrderDependencies struct {
	OrderRepo  repository.WorkOrderRepository
	Machine    *lifecycle.Machine
	Dispatcher events.Dispatcher
}

// OrderCreateInput describes order registration payload.
type OrderCreateInput struct {
	Kind        domain.OrderKind
	Department  string
	Sector      string
	Requester   string
	Phone       string
	Request     string
	Category    string
	AssetTag    string
	Equipment   string
	Description string
	Technician  string
	OpenedAt    time.Time
}

// OrderUpdateInput describes the editable descriptive fields.
type OrderUpdateInput struct {
	Department  string
	Sector      string
	Requester   string
	Phone       string
	Request     string
	Category    string
	AssetTag    string
	Equipment   string
	Description string
	Technician  string
}

// OrderListFilter describes listing filters.
type OrderListFilter struct {
	Kind       *domain.OrderKind
	Statuses   []domain.OrderStatus
	Technician *string
	Department *string
	SearchTerm *string
	OpenedFrom *time.Time
	OpenedTo   *time.Time
	Limit      int
	Offset     int
}

// Worklist groups a technician's orders by activity.
type Worklist struct {
	Pending  []domain.WorkOrder
	Resolved []domain.WorkOrder
}

// NewOrderService constructs the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	machine := deps.Machine
	if machine == nil {
		machine = lifecycle.NewMachine(nil)
	}
	return &OrderService{
		orders:     deps.OrderRepo,
		machine:    machine,
		dispatcher: deps.Dispatcher,
	}
}

// Register allocates a number and creates the order in OPEN.
func (s *OrderService) Register(ctx context.Context, actor Actor, input OrderCreateInput) (*domain.WorkOrder, error) {
	if !input.Kind.Valid() {
		return nil, util.NewValidationError("unknown order kind", nil)
	}
	// Technicians always register orders under their own name.
	technician := strings.TrimSpace(input.Technician)
	if actor.Role == domain.RoleTechnician && actor.DisplayName != "" {
		technician = actor.DisplayName
	}
	if technician == "" {
		return nil, util.NewValidationError("technician required", nil)
	}
	missing := map[string]any{}
	for field, value := range map[string]string{
		"department": input.Department,
		"sector":     input.Sector,
		"requester":  input.Requester,
		"phone":      input.Phone,
		"request":    input.Request,
		"category":   input.Category,
		"equipment":  input.Equipment,
	} {
		if strings.TrimSpace(value) == "" {
			missing[field] = "required"
		}
	}
	if len(missing) > 0 {
		return nil, util.NewValidationError("missing required fields", missing)
	}

	openedAt := input.OpenedAt
	if openedAt.IsZero() {
		openedAt = time.Now()
	}

	order := &domain.WorkOrder{
		Kind:         input.Kind,
		Department:   strings.TrimSpace(input.Department),
		Sector:       strings.TrimSpace(input.Sector),
		Requester:    strings.TrimSpace(input.Requester),
		Phone:        strings.TrimSpace(input.Phone),
		Request:      strings.TrimSpace(input.Request),
		Category:     strings.TrimSpace(input.Category),
		AssetTag:     strings.TrimSpace(input.AssetTag),
		Equipment:    strings.TrimSpace(input.Equipment),
		Description:  strings.TrimSpace(input.Description),
		Status:       domain.OrderStatusOpen,
		Technician:   technician,
		RegisteredBy: actor.Username,
		OpenedAt:     openedAt,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:        events.EventOrderRegistered,
		OrderNumber: order.Number,
		OrderKind:   &order.Kind,
		Actor:       eventActor(actor),
		Payload: events.OrderRegisteredPayload{
			Department: order.Department,
			Category:   order.Category,
			Equipment:  order.Equipment,
			Technician: order.Technician,
		},
	})
	return order, nil
}

// Get fetches an order by kind and number.
func (s *OrderService) Get(ctx context.Context, kind domain.OrderKind, number string) (*domain.WorkOrder, error) {
	if !kind.Valid() {
		return nil, util.NewValidationError("unknown order kind", nil)
	}
	order, err := s.orders.GetByNumber(ctx, kind, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("work order", map[string]any{"number": number})
		}
		return nil, err
	}
	return order, nil
}

// List returns orders matching the filter.
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]domain.WorkOrder, error) {
	return s.orders.ListWithFilter(ctx, repository.OrderFilter{
		Kind:       filter.Kind,
		Statuses:   filter.Statuses,
		Technician: filter.Technician,
		Department: filter.Department,
		SearchTerm: filter.SearchTerm,
		OpenedFrom: filter.OpenedFrom,
		OpenedTo:   filter.OpenedTo,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// WorklistFor returns the technician's pending and resolved orders.
func (s *OrderService) WorklistFor(ctx context.Context, technician string) (*Worklist, error) {
	pending, err := s.orders.ListWithFilter(ctx, repository.OrderFilter{
		Technician: &technician,
		Statuses:   []domain.OrderStatus{domain.OrderStatusOpen, domain.OrderStatusAwaitingParts},
		Limit:      100,
	})
	if err != nil {
		return nil, err
	}
	resolved, err := s.orders.ListWithFilter(ctx, repository.OrderFilter{
		Technician: &technician,
		Statuses:   []domain.OrderStatus{domain.OrderStatusAwaitingPickup, domain.OrderStatusDelivered},
		Limit:      100,
	})
	if err != nil {
		return nil, err
	}
	return &Worklist{Pending: pending, Resolved: resolved}, nil
}

// Transition validates and applies a status change through the lifecycle
// machine, then persists exactly the fields the machine computed.
func (s *OrderService) Transition(ctx context.Context, actor Actor, kind domain.OrderKind, number string, requested domain.OrderStatus, payload lifecycle.Payload) (*domain.WorkOrder, error) {
	order, err := s.Get(ctx, kind, number)
	if err != nil {
		return nil, err
	}

	result, err := s.machine.Apply(order, requested, actor.Role, payload)
	if err != nil {
		return nil, err
	}

	if err := s.orders.ApplyTransition(ctx, order.ID, order.Status, result); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, util.NewConflict("order status changed concurrently", map[string]any{"number": number})
		}
		return nil, err
	}

	oldStatus := order.Status
	applyResult(order, result)
	s.publishEvent(ctx, events.Event{
		Type:        events.EventOrderStatusChanged,
		OrderNumber: order.Number,
		OrderKind:   &order.Kind,
		Actor:       eventActor(actor),
		Payload: events.OrderStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: order.Status,
		},
	})
	return order, nil
}

// Finish records the end of active repair work.
func (s *OrderService) Finish(ctx context.Context, actor Actor, kind domain.OrderKind, number, workDescription string) (*domain.WorkOrder, error) {
	return s.Transition(ctx, actor, kind, number, domain.OrderStatusFinished, lifecycle.Payload{
		WorkDescription: workDescription,
	})
}

// ConfirmPickup records the physical handover to the requester.
func (s *OrderService) ConfirmPickup(ctx context.Context, actor Actor, kind domain.OrderKind, number, pickupName string) (*domain.WorkOrder, error) {
	return s.Transition(ctx, actor, kind, number, domain.OrderStatusDelivered, lifecycle.Payload{
		PickupName: pickupName,
	})
}

// UpdateDetails edits descriptive fields. Status is never touched here;
// only the lifecycle machine moves it.
func (s *OrderService) UpdateDetails(ctx context.Context, actor Actor, kind domain.OrderKind, number string, input OrderUpdateInput) (*domain.WorkOrder, error) {
	if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleClerk {
		return nil, util.NewForbidden("role not permitted to edit orders")
	}
	order, err := s.Get(ctx, kind, number)
	if err != nil {
		return nil, err
	}

	order.Department = strings.TrimSpace(input.Department)
	order.Sector = strings.TrimSpace(input.Sector)
	order.Requester = strings.TrimSpace(input.Requester)
	order.Phone = strings.TrimSpace(input.Phone)
	order.Request = strings.TrimSpace(input.Request)
	order.Category = strings.TrimSpace(input.Category)
	order.AssetTag = strings.TrimSpace(input.AssetTag)
	order.Equipment = strings.TrimSpace(input.Equipment)
	order.Description = strings.TrimSpace(input.Description)
	order.Technician = strings.TrimSpace(input.Technician)
	if order.Department == "" || order.Technician == "" {
		return nil, util.NewValidationError("department and technician required", nil)
	}

	if err := s.orders.UpdateDetails(ctx, order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("work order", map[string]any{"number": number})
		}
		return nil, err
	}
	return order, nil
}

// ForceAwaitingParts applies the system-triggered transition caused by an
// assessment filing. Exposed for the assessment service.
func (s *OrderService) ForceAwaitingParts(order *domain.WorkOrder) (*lifecycle.Result, error) {
	return s.machine.FileAssessment(order)
}

func applyResult(order *domain.WorkOrder, result *lifecycle.Result) {
	order.Status = result.Status
	if result.Description != nil {
		order.Description = *result.Description
	}
	if result.WorkDone != nil {
		order.WorkDone = *result.WorkDone
	}
	if result.CompletedAt != nil {
		order.CompletedAt = result.CompletedAt
	}
	if result.PickedUpAt != nil {
		order.PickedUpAt = result.PickedUpAt
	}
	if result.PickedUpBy != nil {
		order.PickedUpBy = result.PickedUpBy
	}
}

func (s *OrderService) publishEvent(ctx context.Context, event events.Event) {
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

func eventActor(actor Actor) events.Actor {
	role := actor.Role
	return events.Actor{Username: actor.Username, Role: &role}
}
