package events

import (
	"time"

	"github.com/spec-kit/workorder-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOrderRegistered    EventType = "order_registered"
	EventOrderStatusChanged EventType = "order_status_changed"
	EventAssessmentFiled    EventType = "assessment_filed"
	EventRefillRegistered   EventType = "refill_registered"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Username string       `json:"username"`
	Role     *domain.Role `json:"role,omitempty"`
	System   bool         `json:"system,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string            `json:"id"`
	Type        EventType         `json:"type"`
	OrderNumber string            `json:"order_number,omitempty"`
	OrderKind   *domain.OrderKind `json:"order_kind,omitempty"`
	Actor       Actor             `json:"actor"`
	Timestamp   time.Time         `json:"timestamp"`
	Payload     interface{}       `json:"payload"`
}

// OrderRegisteredPayload payload.
type OrderRegisteredPayload struct {
	Department string `json:"department"`
	Category   string `json:"category"`
	Equipment  string `json:"equipment"`
	Technician string `json:"technician"`
}

// OrderStatusChangedPayload payload.
type OrderStatusChangedPayload struct {
	OldStatus domain.OrderStatus `json:"old_status"`
	NewStatus domain.OrderStatus `json:"new_status"`
}

// AssessmentFiledPayload payload.
type AssessmentFiledPayload struct {
	AssessmentID string `json:"assessment_id"`
	Component    string `json:"component"`
	Technician   string `json:"technician"`
}

// RefillRegisteredPayload payload.
type RefillRegisteredPayload struct {
	RefillNumber  string `json:"refill_number"`
	EquipmentName string `json:"equipment_name"`
	SupplyModel   string `json:"supply_model"`
}
