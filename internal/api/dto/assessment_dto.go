package dto

import (
	"time"

	"github.com/spec-kit/workorder-service/internal/domain"
)

// CreateAssessmentRequest payload.
type CreateAssessmentRequest struct {
	OrderNumber   string           `json:"order_number"`
	OrderKind     domain.OrderKind `json:"order_kind"`
	Component     string           `json:"component"`
	Specification string           `json:"specification"`
	PurchaseLink  string           `json:"purchase_link"`
	Notes         string           `json:"notes"`
}

// ResolveAssessmentRequest records the purchasing decision.
type ResolveAssessmentRequest struct {
	Status domain.AssessmentStatus `json:"status"`
}

// AssessmentResponse provides full assessment info.
type AssessmentResponse struct {
	ID            string                  `json:"id"`
	OrderNumber   string                  `json:"order_number"`
	OrderKind     domain.OrderKind        `json:"order_kind"`
	Component     string                  `json:"component"`
	Specification string                  `json:"specification"`
	PurchaseLink  string                  `json:"purchase_link"`
	Notes         string                  `json:"notes"`
	Technician    string                  `json:"technician"`
	Status        domain.AssessmentStatus `json:"status"`
	FiledAt       time.Time               `json:"filed_at"`
	ResolvedAt    *time.Time              `json:"resolved_at"`
}

// NewAssessmentResponse maps a domain assessment.
func NewAssessmentResponse(a *domain.Assessment) AssessmentResponse {
	return AssessmentResponse{
		ID:            a.ID,
		OrderNumber:   a.OrderNumber,
		OrderKind:     a.OrderKind,
		Component:     a.Component,
		Specification: a.Specification,
		PurchaseLink:  a.PurchaseLink,
		Notes:         a.Notes,
		Technician:    a.Technician,
		Status:        a.Status,
		FiledAt:       a.FiledAt,
		ResolvedAt:    a.ResolvedAt,
	}
}

// NewAssessmentResponses maps a slice of assessments.
func NewAssessmentResponses(items []domain.Assessment) []AssessmentResponse {
	out := make([]AssessmentResponse, 0, len(items))
	for i := range items {
		out = append(out, NewAssessmentResponse(&items[i]))
	}
	return out
}
