package domain

import "time"

// AssessmentStatus tracks the purchasing decision for an assessed component.
type AssessmentStatus string

const (
	AssessmentStatusPending  AssessmentStatus = "PENDING"
	AssessmentStatusApproved AssessmentStatus = "APPROVED"
	AssessmentStatusDenied   AssessmentStatus = "DENIED"
)

// Valid reports whether the status is a known assessment state.
func (s AssessmentStatus) Valid() bool {
	return s == AssessmentStatusPending || s == AssessmentStatusApproved || s == AssessmentStatusDenied
}

// Assessment is a technical finding (laudo) filed against a work order.
// Filing one forces the referenced order into AWAITING_PARTS.
type Assessment struct {
	ID            string
	OrderNumber   string
	OrderKind     OrderKind
	Component     string
	Specification string
	PurchaseLink  string
	Notes         string
	Technician    string
	Status        AssessmentStatus
	FiledAt       time.Time
	ResolvedAt    *time.Time
}
