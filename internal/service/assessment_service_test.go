package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/events"
	"github.com/spec-kit/workorder-service/internal/repository"
)

// fakeAssessmentRepo mimics the transactional filing behavior: the
// assessment insert and the order status write happen together, and the
// order write is conditional on the expected status. beforeFile, when set,
// runs ahead of the filing so tests can interleave a competing writer.
type fakeAssessmentRepo struct {
	mu          sync.Mutex
	orders      *fakeOrderRepo
	assessments map[string]*domain.Assessment
	nextID      int
	beforeFile  func()
}

func newFakeAssessmentRepo(orders *fakeOrderRepo) *fakeAssessmentRepo {
	return &fakeAssessmentRepo{orders: orders, assessments: map[string]*domain.Assessment{}}
}

func (r *fakeAssessmentRepo) FileAgainstOrder(ctx context.Context, assessment *domain.Assessment, orderID string, fromStatus, toStatus domain.OrderStatus) error {
	if r.beforeFile != nil {
		r.beforeFile()
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders.mu.Lock()
	order, ok := r.orders.orders[orderID]
	if !ok || order.Status != fromStatus {
		r.orders.mu.Unlock()
		return repository.ErrStaleStatus
	}
	order.Status = toStatus
	r.orders.mu.Unlock()

	r.nextID++
	assessment.ID = fmt.Sprintf("assessment-%d", r.nextID)
	assessment.FiledAt = time.Now()
	clone := *assessment
	r.assessments[assessment.ID] = &clone
	return nil
}

func (r *fakeAssessmentRepo) GetByID(_ context.Context, id string) (*domain.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	assessment, ok := r.assessments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *assessment
	return &clone, nil
}

func (r *fakeAssessmentRepo) ListByOrder(_ context.Context, kind domain.OrderKind, number string) ([]domain.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Assessment
	for _, assessment := range r.assessments {
		if assessment.OrderKind == kind && assessment.OrderNumber == number {
			out = append(out, *assessment)
		}
	}
	return out, nil
}

func (r *fakeAssessmentRepo) UpdateStatus(_ context.Context, id string, status domain.AssessmentStatus, resolvedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	assessment, ok := r.assessments[id]
	if !ok {
		return pgx.ErrNoRows
	}
	assessment.Status = status
	assessment.ResolvedAt = &resolvedAt
	return nil
}

func newAssessmentService(t *testing.T) (*AssessmentService, *OrderService, *fakeOrderRepo, *recordingDispatcher) {
	t.Helper()
	orderRepo := newFakeOrderRepo()
	dispatcher := &recordingDispatcher{}
	orderSvc := NewOrderService(OrderDependencies{OrderRepo: orderRepo, Dispatcher: dispatcher})
	svc := NewAssessmentService(AssessmentDependencies{
		AssessmentRepo: newFakeAssessmentRepo(orderRepo),
		OrderRepo:      orderRepo,
		OrderService:   orderSvc,
		Dispatcher:     dispatcher,
	})
	return svc, orderSvc, orderRepo, dispatcher
}

func TestFileAssessmentMovesOrderToAwaitingParts(t *testing.T) {
	svc, orderSvc, repo, dispatcher := newAssessmentService(t)
	ctx := context.Background()

	order, err := orderSvc.Register(ctx, techActor, validCreateInput(domain.OrderKindInternal))
	require.NoError(t, err)

	assessment, err := svc.File(ctx, techActor, AssessmentCreateInput{
		OrderNumber:   order.Number,
		OrderKind:     order.Kind,
		Component:     "Power supply",
		Specification: "500W 80+ Bronze",
		PurchaseLink:  "https://store.example/psu-500",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AssessmentStatusPending, assessment.Status)
	assert.Equal(t, "Alex Chen", assessment.Technician)

	stored, err := repo.GetByNumber(ctx, order.Kind, order.Number)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAwaitingParts, stored.Status)

	require.Len(t, dispatcher.byType(events.EventAssessmentFiled), 1)
}

func TestFileAssessmentFromAwaitingPickupStillApplies(t *testing.T) {
	svc, orderSvc, repo, _ := newAssessmentService(t)
	ctx := context.Background()

	order, err := orderSvc.Register(ctx, techActor, validCreateInput(domain.OrderKindInternal))
	require.NoError(t, err)
	_, err = orderSvc.Finish(ctx, techActor, order.Kind, order.Number, "Replaced board")
	require.NoError(t, err)

	_, err = svc.File(ctx, techActor, AssessmentCreateInput{
		OrderNumber:   order.Number,
		OrderKind:     order.Kind,
		Component:     "Fuser unit",
		Specification: "OEM part 1234",
	})
	require.NoError(t, err)

	stored, err := repo.GetByNumber(ctx, order.Kind, order.Number)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAwaitingParts, stored.Status)
	// Completion evidence survives the downgrade.
	assert.NotNil(t, stored.CompletedAt)
}

func TestFileAssessmentAgainstDeliveredOrderFails(t *testing.T) {
	svc, orderSvc, _, _ := newAssessmentService(t)
	ctx := context.Background()

	order, err := orderSvc.Register(ctx, techActor, validCreateInput(domain.OrderKindInternal))
	require.NoError(t, err)
	_, err = orderSvc.Finish(ctx, techActor, order.Kind, order.Number, "Replaced board")
	require.NoError(t, err)
	_, err = orderSvc.ConfirmPickup(ctx, adminActor, order.Kind, order.Number, "Dana Ross")
	require.NoError(t, err)

	_, err = svc.File(ctx, techActor, AssessmentCreateInput{
		OrderNumber:   order.Number,
		OrderKind:     order.Kind,
		Component:     "Anything",
		Specification: "Anything",
	})
	requireDomainCode(t, err, "TERMINAL_STATE")
}

func TestFileAssessmentLosesRaceAgainstDelivery(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	dispatcher := &recordingDispatcher{}
	orderSvc := NewOrderService(OrderDependencies{OrderRepo: orderRepo, Dispatcher: dispatcher})
	assessmentRepo := newFakeAssessmentRepo(orderRepo)
	svc := NewAssessmentService(AssessmentDependencies{
		AssessmentRepo: assessmentRepo,
		OrderRepo:      orderRepo,
		OrderService:   orderSvc,
		Dispatcher:     dispatcher,
	})
	ctx := context.Background()

	order, err := orderSvc.Register(ctx, techActor, validCreateInput(domain.OrderKindInternal))
	require.NoError(t, err)
	_, err = orderSvc.Finish(ctx, techActor, order.Kind, order.Number, "Replaced board")
	require.NoError(t, err)

	// The order is handed over between the filing's read and its write;
	// the delivered order must not be dragged back to AWAITING_PARTS.
	assessmentRepo.beforeFile = func() {
		_, err := orderSvc.ConfirmPickup(ctx, adminActor, order.Kind, order.Number, "Dana Ross")
		require.NoError(t, err)
	}

	_, err = svc.File(ctx, techActor, AssessmentCreateInput{
		OrderNumber:   order.Number,
		OrderKind:     order.Kind,
		Component:     "Fuser unit",
		Specification: "OEM part 1234",
	})
	requireDomainCode(t, err, "CONFLICT")

	stored, err := orderRepo.GetByNumber(ctx, order.Kind, order.Number)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, stored.Status)
}

func TestFileAssessmentValidation(t *testing.T) {
	svc, _, _, _ := newAssessmentService(t)
	ctx := context.Background()

	_, err := svc.File(ctx, techActor, AssessmentCreateInput{OrderKind: "WRONG"})
	requireDomainCode(t, err, "VALIDATION_FAILED")

	_, err = svc.File(ctx, techActor, AssessmentCreateInput{
		OrderNumber: "1-25",
		OrderKind:   domain.OrderKindInternal,
		Component:   "PSU",
	})
	requireDomainCode(t, err, "VALIDATION_FAILED")

	_, err = svc.File(ctx, techActor, AssessmentCreateInput{
		OrderNumber:   "77-25",
		OrderKind:     domain.OrderKindInternal,
		Component:     "PSU",
		Specification: "500W",
	})
	requireDomainCode(t, err, "NOT_FOUND")
}

func TestResolveAssessmentAdminOnly(t *testing.T) {
	svc, orderSvc, _, _ := newAssessmentService(t)
	ctx := context.Background()

	order, err := orderSvc.Register(ctx, techActor, validCreateInput(domain.OrderKindInternal))
	require.NoError(t, err)
	assessment, err := svc.File(ctx, techActor, AssessmentCreateInput{
		OrderNumber:   order.Number,
		OrderKind:     order.Kind,
		Component:     "Power supply",
		Specification: "500W",
	})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, techActor, assessment.ID, domain.AssessmentStatusApproved)
	requireDomainCode(t, err, "FORBIDDEN")

	resolved, err := svc.Resolve(ctx, adminActor, assessment.ID, domain.AssessmentStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.AssessmentStatusApproved, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)
}

func TestResolveRejectsNonDecisionStatus(t *testing.T) {
	svc, orderSvc, _, _ := newAssessmentService(t)
	ctx := context.Background()

	order, err := orderSvc.Register(ctx, techActor, validCreateInput(domain.OrderKindInternal))
	require.NoError(t, err)
	assessment, err := svc.File(ctx, techActor, AssessmentCreateInput{
		OrderNumber:   order.Number,
		OrderKind:     order.Kind,
		Component:     "Power supply",
		Specification: "500W",
	})
	require.NoError(t, err)

	// PENDING is not a decision; resolving must not stamp resolved_at on it.
	_, err = svc.Resolve(ctx, adminActor, assessment.ID, domain.AssessmentStatusPending)
	requireDomainCode(t, err, "VALIDATION_FAILED")

	_, err = svc.Resolve(ctx, adminActor, assessment.ID, "SOMETHING_ELSE")
	requireDomainCode(t, err, "VALIDATION_FAILED")
}
