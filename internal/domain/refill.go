package domain

import "time"

// RefillStatus enumerates the stages of a printer-supply refill request.
type RefillStatus string

const (
	RefillStatusRequested RefillStatus = "REQUESTED"
	RefillStatusSent      RefillStatus = "SENT"
	RefillStatusRefilling RefillStatus = "REFILLING"
	RefillStatusReturned  RefillStatus = "RETURNED"
	RefillStatusInUse     RefillStatus = "IN_USE"
	RefillStatusScrapped  RefillStatus = "SCRAPPED"
)

// Valid reports whether the status is a known refill state.
func (s RefillStatus) Valid() bool {
	switch s {
	case RefillStatusRequested, RefillStatusSent, RefillStatusRefilling,
		RefillStatusReturned, RefillStatusInUse, RefillStatusScrapped:
		return true
	}
	return false
}

// SupplyType distinguishes cartridge and toner refills.
type SupplyType string

const (
	SupplyTypeCartridge SupplyType = "CARTRIDGE"
	SupplyTypeToner     SupplyType = "TONER"
)

// Refill is a printer-supply refill request. Refills carry their own
// year-scoped sequence, independent of work-order numbering.
type Refill struct {
	ID            string
	Number        string
	Status        RefillStatus
	Department    string
	Sector        string
	EquipmentID   *string
	EquipmentName string
	SupplyType    SupplyType
	SupplyModel   string
	Color         string
	Quantity      int
	Supplier      string
	Cost          float64
	InvoiceNumber string
	OrderNumber   *string
	OrderKind     *OrderKind
	Notes         string
	RequestedAt   time.Time
	SentAt        *time.Time
	ReturnedAt    *time.Time
	RegisteredBy  string
	UpdatedAt     time.Time
}
