package dto

import (
	"time"

	"github.com/spec-kit/workorder-service/internal/domain"
)

// EquipmentRequest covers both registration and updates.
type EquipmentRequest struct {
	Category      string `json:"category"`
	AssetTag      string `json:"asset_tag"`
	Hostname      string `json:"hostname"`
	Specification string `json:"specification"`
	Department    string `json:"department"`
	Sector        string `json:"sector"`
	Location      string `json:"location"`
	IP            string `json:"ip"`
	MAC           string `json:"mac"`
	Subnet        string `json:"subnet"`
	Gateway       string `json:"gateway"`
	DNS           string `json:"dns"`
	SerialNumber  string `json:"serial_number"`
	Notes         string `json:"notes"`
}

// EquipmentResponse provides full inventory-item info.
type EquipmentResponse struct {
	ID            string    `json:"id"`
	Category      string    `json:"category"`
	AssetTag      string    `json:"asset_tag"`
	Hostname      string    `json:"hostname"`
	Specification string    `json:"specification"`
	Department    string    `json:"department"`
	Sector        string    `json:"sector"`
	Location      string    `json:"location"`
	IP            string    `json:"ip"`
	MAC           string    `json:"mac"`
	Subnet        string    `json:"subnet"`
	Gateway       string    `json:"gateway"`
	DNS           string    `json:"dns"`
	SerialNumber  string    `json:"serial_number"`
	Notes         string    `json:"notes"`
	RegisteredAt  time.Time `json:"registered_at"`
}

// NewEquipmentResponse maps a domain inventory item.
func NewEquipmentResponse(e *domain.Equipment) EquipmentResponse {
	return EquipmentResponse{
		ID:            e.ID,
		Category:      e.Category,
		AssetTag:      e.AssetTag,
		Hostname:      e.Hostname,
		Specification: e.Specification,
		Department:    e.Department,
		Sector:        e.Sector,
		Location:      e.Location,
		IP:            e.IP,
		MAC:           e.MAC,
		Subnet:        e.Subnet,
		Gateway:       e.Gateway,
		DNS:           e.DNS,
		SerialNumber:  e.SerialNumber,
		Notes:         e.Notes,
		RegisteredAt:  e.RegisteredAt,
	}
}

// NewEquipmentResponses maps a slice of inventory items.
func NewEquipmentResponses(items []domain.Equipment) []EquipmentResponse {
	out := make([]EquipmentResponse, 0, len(items))
	for i := range items {
		out = append(out, NewEquipmentResponse(&items[i]))
	}
	return out
}
