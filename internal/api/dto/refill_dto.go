package dto

import (
	"time"

	"github.com/spec-kit/workorder-service/internal/domain"
)

// RefillRequest covers both registration and updates.
type RefillRequest struct {
	Status        domain.RefillStatus `json:"status"`
	Department    string              `json:"department"`
	Sector        string              `json:"sector"`
	EquipmentID   *string             `json:"equipment_id"`
	SupplyType    domain.SupplyType   `json:"supply_type"`
	SupplyModel   string              `json:"supply_model"`
	Color         string              `json:"color"`
	Quantity      int                 `json:"quantity"`
	Supplier      string              `json:"supplier"`
	Cost          float64             `json:"cost"`
	InvoiceNumber string              `json:"invoice_number"`
	OrderNumber   *string             `json:"order_number"`
	OrderKind     *domain.OrderKind   `json:"order_kind"`
	Notes         string              `json:"notes"`
	SentAt        *time.Time          `json:"sent_at"`
	ReturnedAt    *time.Time          `json:"returned_at"`
}

// RefillResponse provides full refill info.
type RefillResponse struct {
	ID            string              `json:"id"`
	Number        string              `json:"number"`
	Status        domain.RefillStatus `json:"status"`
	Department    string              `json:"department"`
	Sector        string              `json:"sector"`
	EquipmentID   *string             `json:"equipment_id"`
	EquipmentName string              `json:"equipment_name"`
	SupplyType    domain.SupplyType   `json:"supply_type"`
	SupplyModel   string              `json:"supply_model"`
	Color         string              `json:"color"`
	Quantity      int                 `json:"quantity"`
	Supplier      string              `json:"supplier"`
	Cost          float64             `json:"cost"`
	InvoiceNumber string              `json:"invoice_number"`
	OrderNumber   *string             `json:"order_number"`
	OrderKind     *domain.OrderKind   `json:"order_kind"`
	Notes         string              `json:"notes"`
	RequestedAt   time.Time           `json:"requested_at"`
	SentAt        *time.Time          `json:"sent_at"`
	ReturnedAt    *time.Time          `json:"returned_at"`
	RegisteredBy  string              `json:"registered_by"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// NewRefillResponse maps a domain refill.
func NewRefillResponse(r *domain.Refill) RefillResponse {
	return RefillResponse{
		ID:            r.ID,
		Number:        r.Number,
		Status:        r.Status,
		Department:    r.Department,
		Sector:        r.Sector,
		EquipmentID:   r.EquipmentID,
		EquipmentName: r.EquipmentName,
		SupplyType:    r.SupplyType,
		SupplyModel:   r.SupplyModel,
		Color:         r.Color,
		Quantity:      r.Quantity,
		Supplier:      r.Supplier,
		Cost:          r.Cost,
		InvoiceNumber: r.InvoiceNumber,
		OrderNumber:   r.OrderNumber,
		OrderKind:     r.OrderKind,
		Notes:         r.Notes,
		RequestedAt:   r.RequestedAt,
		SentAt:        r.SentAt,
		ReturnedAt:    r.ReturnedAt,
		RegisteredBy:  r.RegisteredBy,
		UpdatedAt:     r.UpdatedAt,
	}
}

// NewRefillResponses maps a slice of refills.
func NewRefillResponses(items []domain.Refill) []RefillResponse {
	out := make([]RefillResponse, 0, len(items))
	for i := range items {
		out = append(out, NewRefillResponse(&items[i]))
	}
	return out
}
