package domain

import "time"

// OrderKind separates the two parallel work-order categories. Each kind
// carries its own numbering sequence.
type OrderKind string

const (
	OrderKindInternal OrderKind = "INTERNAL"
	OrderKindExternal OrderKind = "EXTERNAL"
)

// Valid reports whether the kind is one of the two known categories.
func (k OrderKind) Valid() bool {
	return k == OrderKindInternal || k == OrderKindExternal
}

// OrderStatus enumerates lifecycle states for work orders.
type OrderStatus string

const (
	OrderStatusOpen OrderStatus = "OPEN"
	// OrderStatusAwaitingParts is entered when an assessment report is
	// filed against the order or via a manual edit.
	OrderStatusAwaitingParts OrderStatus = "AWAITING_PARTS"
	// OrderStatusFinished is transient: the lifecycle machine always
	// normalizes it to AWAITING_PICKUP before anything is persisted.
	OrderStatusFinished       OrderStatus = "FINISHED"
	OrderStatusAwaitingPickup OrderStatus = "AWAITING_PICKUP"
	// OrderStatusDelivered is terminal.
	OrderStatusDelivered OrderStatus = "DELIVERED"
)

// Valid reports whether the status is a known lifecycle state.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusOpen, OrderStatusAwaitingParts, OrderStatusFinished,
		OrderStatusAwaitingPickup, OrderStatusDelivered:
		return true
	}
	return false
}

// WorkOrder is the aggregate for internal and external service orders.
type WorkOrder struct {
	ID           string
	Number       string
	Kind         OrderKind
	Department   string
	Sector       string
	Requester    string
	Phone        string
	Request      string
	Category     string
	AssetTag     string
	Equipment    string
	Description  string
	WorkDone     string
	Status       OrderStatus
	Technician   string
	RegisteredBy string
	OpenedAt     time.Time
	CompletedAt  *time.Time
	PickedUpAt   *time.Time
	PickedUpBy   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
