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

// RefillService manages printer-supply refill requests.
type RefillService struct {
	refills    repository.RefillRepository
	equipment  repository.EquipmentRepository
	dispatcher events.Dispatcher
}

// RefillDependencies bundles collaborators for the refill service.
type RefillDependencies struct {
	RefillRepo    repository.RefillRepository
	EquipmentRepo repository.EquipmentRepository
	Dispatcher    events.Dispatcher
}

// RefillInput describes registration and update payloads.
type RefillInput struct {
	Status        domain.RefillStatus
	Department    string
	Sector        string
	EquipmentID   *string
	SupplyType    domain.SupplyType
	SupplyModel   string
	Color         string
	Quantity      int
	Supplier      string
	Cost          float64
	InvoiceNumber string
	OrderNumber   *string
	OrderKind     *domain.OrderKind
	Notes         string
	SentAt        *time.Time
	ReturnedAt    *time.Time
}

// NewRefillService constructs the service.
func NewRefillService(deps RefillDependencies) *RefillService {
	return &RefillService{
		refills:    deps.RefillRepo,
		equipment:  deps.EquipmentRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Register creates a refill request with its own sequential number.
func (s *RefillService) Register(ctx context.Context, actor Actor, input RefillInput) (*domain.Refill, error) {
	if strings.TrimSpace(input.Department) == "" {
		return nil, util.NewValidationError("department required", nil)
	}
	if input.Quantity <= 0 {
		return nil, util.NewValidationError("quantity must be positive", nil)
	}
	status := input.Status
	if status == "" {
		status = domain.RefillStatusRequested
	}
	if !status.Valid() {
		return nil, util.NewValidationError("unknown refill status", nil)
	}

	refill := &domain.Refill{
		Status:        status,
		Department:    strings.TrimSpace(input.Department),
		Sector:        strings.TrimSpace(input.Sector),
		EquipmentID:   input.EquipmentID,
		SupplyType:    input.SupplyType,
		SupplyModel:   strings.TrimSpace(input.SupplyModel),
		Color:         strings.TrimSpace(input.Color),
		Quantity:      input.Quantity,
		Supplier:      strings.TrimSpace(input.Supplier),
		Cost:          input.Cost,
		InvoiceNumber: strings.TrimSpace(input.InvoiceNumber),
		OrderNumber:   input.OrderNumber,
		OrderKind:     input.OrderKind,
		Notes:         strings.TrimSpace(input.Notes),
		RequestedAt:   time.Now(),
		SentAt:        input.SentAt,
		ReturnedAt:    input.ReturnedAt,
		RegisteredBy:  actor.Username,
	}
	if input.EquipmentID != nil {
		item, err := s.equipment.GetByID(ctx, *input.EquipmentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, util.NewNotFound("equipment", map[string]any{"id": *input.EquipmentID})
			}
			return nil, err
		}
		refill.EquipmentName = item.Hostname
	}

	if err := s.refills.Create(ctx, refill); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:  events.EventRefillRegistered,
		Actor: eventActor(actor),
		Payload: events.RefillRegisteredPayload{
			RefillNumber:  refill.Number,
			EquipmentName: refill.EquipmentName,
			SupplyModel:   refill.SupplyModel,
		},
	})
	return refill, nil
}

// Get fetches a refill by id.
func (s *RefillService) Get(ctx context.Context, id string) (*domain.Refill, error) {
	refill, err := s.refills.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("refill", map[string]any{"id": id})
		}
		return nil, err
	}
	return refill, nil
}

// List returns refills matching the filter.
func (s *RefillService) List(ctx context.Context, filter repository.RefillFilter) ([]domain.Refill, error) {
	return s.refills.List(ctx, filter)
}

// Update rewrites a refill's mutable fields. The number never changes.
func (s *RefillService) Update(ctx context.Context, actor Actor, id string, input RefillInput) (*domain.Refill, error) {
	refill, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !input.Status.Valid() {
		return nil, util.NewValidationError("unknown refill status", nil)
	}
	if input.Quantity <= 0 {
		return nil, util.NewValidationError("quantity must be positive", nil)
	}

	refill.Status = input.Status
	refill.Department = strings.TrimSpace(input.Department)
	refill.Sector = strings.TrimSpace(input.Sector)
	refill.EquipmentID = input.EquipmentID
	refill.SupplyType = input.SupplyType
	refill.SupplyModel = strings.TrimSpace(input.SupplyModel)
	refill.Color = strings.TrimSpace(input.Color)
	refill.Quantity = input.Quantity
	refill.Supplier = strings.TrimSpace(input.Supplier)
	refill.Cost = input.Cost
	refill.InvoiceNumber = strings.TrimSpace(input.InvoiceNumber)
	refill.OrderNumber = input.OrderNumber
	refill.OrderKind = input.OrderKind
	refill.Notes = strings.TrimSpace(input.Notes)
	refill.SentAt = input.SentAt
	refill.ReturnedAt = input.ReturnedAt
	if input.EquipmentID != nil {
		item, err := s.equipment.GetByID(ctx, *input.EquipmentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, util.NewNotFound("equipment", map[string]any{"id": *input.EquipmentID})
			}
			return nil, err
		}
		refill.EquipmentName = item.Hostname
	}

	if err := s.refills.Update(ctx, refill); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("refill", map[string]any{"id": id})
		}
		return nil, err
	}
	return refill, nil
}

// Printers lists inventory items usable in the refill form.
func (s *RefillService) Printers(ctx context.Context) ([]domain.Equipment, error) {
	return s.equipment.ListPrinters(ctx)
}

func (s *RefillService) publishEvent(ctx context.Context, event events.Event) {
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
