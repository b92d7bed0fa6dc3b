// Package lifecycle decides work-order status transitions. The machine is
// pure: it validates a requested transition against the current state and
// the acting role, and returns the exact field set the caller must persist.
// Persistence stays a dumb executor of the returned result.
package lifecycle

import (
	"strings"
	"time"

	"github.com/spec-kit/workorder-service/internal/domain"
	util "github.com/spec-kit/workorder-service/pkg/util"
)

// Clock abstracts the current-time source used for completion and pickup
// timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Payload carries the edge-specific inputs of a transition request.
type Payload struct {
	// WorkDescription is required by the finish-work edge and optional on
	// manual edits, where it updates the order description.
	WorkDescription string
	// PickupName is required by the confirm-pickup edge.
	PickupName string
}

// Result is the outcome of an accepted transition: the new status plus the
// fields that must be written alongside it. Nil pointers mean "leave the
// column untouched".
type Result struct {
	Status      domain.OrderStatus
	Description *string
	WorkDone    *string
	CompletedAt *time.Time
	PickedUpAt  *time.Time
	PickedUpBy  *string
}

// Machine evaluates lifecycle transitions.
type Machine struct {
	clock Clock
}

// NewMachine builds a machine. A nil clock defaults to the system clock.
func NewMachine(clock Clock) *Machine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Machine{clock: clock}
}

// Apply validates the requested transition for the given actor role and
// computes its side effects. The order is not mutated.
//
// Guard order: terminal state, edge reachability, role gate, payload
// validation. A FINISHED request is always normalized to AWAITING_PICKUP;
// no caller can mark an order client-facing closed without the pickup
// confirmation performed by an admin or clerk.
func (m *Machine) Apply(order *domain.WorkOrder, requested domain.OrderStatus, role domain.Role, payload Payload) (*Result, error) {
	if order.Status == domain.OrderStatusDelivered {
		return nil, util.NewTerminalState("order already delivered")
	}
	if !requested.Valid() {
		return nil, util.NewInvalidTransition("unknown status requested", map[string]any{
			"requested": requested,
		})
	}

	switch requested {
	case domain.OrderStatusFinished, domain.OrderStatusAwaitingPickup:
		return m.finishWork(order, role, payload)
	case domain.OrderStatusDelivered:
		return m.confirmPickup(order, role, payload)
	case domain.OrderStatusOpen:
		return m.reopen(order, role, payload)
	case domain.OrderStatusAwaitingParts:
		return m.markAwaitingParts(order, role, payload)
	}
	return nil, util.NewInvalidTransition("unknown status requested", nil)
}

// FileAssessment is the system-triggered transition applied when an
// assessment report is filed against the order. No role gate applies; the
// terminal guard still does.
func (m *Machine) FileAssessment(order *domain.WorkOrder) (*Result, error) {
	if order.Status == domain.OrderStatusDelivered {
		return nil, util.NewTerminalState("order already delivered")
	}
	return &Result{Status: domain.OrderStatusAwaitingParts}, nil
}

func (m *Machine) finishWork(order *domain.WorkOrder, role domain.Role, payload Payload) (*Result, error) {
	if order.Status != domain.OrderStatusOpen && order.Status != domain.OrderStatusAwaitingParts {
		return nil, invalidEdge(order.Status, domain.OrderStatusAwaitingPickup)
	}
	if !role.Valid() {
		return nil, util.NewForbidden("role not permitted to finish work")
	}
	work := strings.TrimSpace(payload.WorkDescription)
	if work == "" {
		return nil, util.NewValidationError("work description required to finish an order", nil)
	}

	res := &Result{
		Status:   domain.OrderStatusAwaitingPickup,
		WorkDone: &work,
	}
	if order.CompletedAt == nil {
		now := m.clock.Now()
		res.CompletedAt = &now
	}
	return res, nil
}

func (m *Machine) confirmPickup(order *domain.WorkOrder, role domain.Role, payload Payload) (*Result, error) {
	if order.Status != domain.OrderStatusAwaitingPickup {
		return nil, invalidEdge(order.Status, domain.OrderStatusDelivered)
	}
	// The technician who fixed the equipment cannot certify the handover.
	if role != domain.RoleAdmin && role != domain.RoleClerk {
		return nil, util.NewForbidden("role not permitted to confirm pickup")
	}
	name := strings.TrimSpace(payload.PickupName)
	if name == "" {
		return nil, util.NewValidationError("pickup person name required", nil)
	}

	now := m.clock.Now()
	res := &Result{
		Status:     domain.OrderStatusDelivered,
		PickedUpAt: &now,
		PickedUpBy: &name,
	}
	// Pickup can land before an explicit finish was ever recorded.
	if order.CompletedAt == nil {
		res.CompletedAt = &now
	}
	return res, nil
}

func (m *Machine) reopen(order *domain.WorkOrder, role domain.Role, payload Payload) (*Result, error) {
	if order.Status != domain.OrderStatusAwaitingParts {
		return nil, invalidEdge(order.Status, domain.OrderStatusOpen)
	}
	if role != domain.RoleAdmin {
		return nil, util.NewForbidden("only admins may edit an order awaiting parts")
	}
	res := &Result{Status: domain.OrderStatusOpen}
	if desc := strings.TrimSpace(payload.WorkDescription); desc != "" {
		res.Description = &desc
	}
	return res, nil
}

func (m *Machine) markAwaitingParts(order *domain.WorkOrder, role domain.Role, payload Payload) (*Result, error) {
	switch order.Status {
	case domain.OrderStatusOpen:
		if role != domain.RoleAdmin && role != domain.RoleClerk {
			return nil, util.NewForbidden("role not permitted to mark order awaiting parts")
		}
	case domain.OrderStatusAwaitingParts:
		if role != domain.RoleAdmin {
			return nil, util.NewForbidden("only admins may edit an order awaiting parts")
		}
	default:
		return nil, invalidEdge(order.Status, domain.OrderStatusAwaitingParts)
	}
	res := &Result{Status: domain.OrderStatusAwaitingParts}
	if desc := strings.TrimSpace(payload.WorkDescription); desc != "" {
		res.Description = &desc
	}
	return res, nil
}

func invalidEdge(from, to domain.OrderStatus) error {
	return util.NewInvalidTransition("status transition not allowed", map[string]any{
		"from": from,
		"to":   to,
	})
}
