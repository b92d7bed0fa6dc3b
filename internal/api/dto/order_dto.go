package dto

import (
	"time"

	"github.com/spec-kit/workorder-service/internal/domain"
)

// CreateOrderRequest payload.
type CreateOrderRequest struct {
	Kind        domain.OrderKind `json:"kind"`
	Department  string           `json:"department"`
	Sector      string           `json:"sector"`
	Requester   string           `json:"requester"`
	Phone       string           `json:"phone"`
	Request     string           `json:"request"`
	Category    string           `json:"category"`
	AssetTag    string           `json:"asset_tag"`
	Equipment   string           `json:"equipment"`
	Description string           `json:"description"`
	Technician  string           `json:"technician"`
	OpenedAt    *time.Time       `json:"opened_at"`
}

// UpdateOrderRequest carries the editable descriptive fields.
type UpdateOrderRequest struct {
	Department  string `json:"department"`
	Sector      string `json:"sector"`
	Requester   string `json:"requester"`
	Phone       string `json:"phone"`
	Request     string `json:"request"`
	Category    string `json:"category"`
	AssetTag    string `json:"asset_tag"`
	Equipment   string `json:"equipment"`
	Description string `json:"description"`
	Technician  string `json:"technician"`
}

// TransitionRequest asks for a status change.
type TransitionRequest struct {
	Status          domain.OrderStatus `json:"status"`
	WorkDescription string             `json:"work_description,omitempty"`
	PickupName      string             `json:"pickup_name,omitempty"`
}

// FinishRequest closes out the repair work on an order.
type FinishRequest struct {
	WorkDescription string `json:"work_description"`
}

// PickupRequest certifies the handover to the requester.
type PickupRequest struct {
	PickupName string `json:"pickup_name"`
}

// OrderResponse provides full order info.
type OrderResponse struct {
	ID           string             `json:"id"`
	Number       string             `json:"number"`
	Kind         domain.OrderKind   `json:"kind"`
	Department   string             `json:"department"`
	Sector       string             `json:"sector"`
	Requester    string             `json:"requester"`
	Phone        string             `json:"phone"`
	Request      string             `json:"request"`
	Category     string             `json:"category"`
	AssetTag     string             `json:"asset_tag"`
	Equipment    string             `json:"equipment"`
	Description  string             `json:"description"`
	WorkDone     string             `json:"work_done"`
	Status       domain.OrderStatus `json:"status"`
	Technician   string             `json:"technician"`
	RegisteredBy string             `json:"registered_by"`
	OpenedAt     time.Time          `json:"opened_at"`
	CompletedAt  *time.Time         `json:"completed_at"`
	PickedUpAt   *time.Time         `json:"picked_up_at"`
	PickedUpBy   *string            `json:"picked_up_by"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// WorklistResponse groups a technician's orders by progress.
type WorklistResponse struct {
	Pending  []OrderResponse `json:"pending"`
	Resolved []OrderResponse `json:"resolved"`
}

// NewOrderResponse maps a domain order.
func NewOrderResponse(order *domain.WorkOrder) OrderResponse {
	return OrderResponse{
		ID:           order.ID,
		Number:       order.Number,
		Kind:         order.Kind,
		Department:   order.Department,
		Sector:       order.Sector,
		Requester:    order.Requester,
		Phone:        order.Phone,
		Request:      order.Request,
		Category:     order.Category,
		AssetTag:     order.AssetTag,
		Equipment:    order.Equipment,
		Description:  order.Description,
		WorkDone:     order.WorkDone,
		Status:       order.Status,
		Technician:   order.Technician,
		RegisteredBy: order.RegisteredBy,
		OpenedAt:     order.OpenedAt,
		CompletedAt:  order.CompletedAt,
		PickedUpAt:   order.PickedUpAt,
		PickedUpBy:   order.PickedUpBy,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
}

// NewOrderResponses maps a slice of domain orders.
func NewOrderResponses(orders []domain.WorkOrder) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}
