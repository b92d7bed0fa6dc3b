package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/events"
	"github.com/spec-kit/workorder-service/internal/lifecycle"
	"github.com/spec-kit/workorder-service/internal/numbering"
	"github.com/spec-kit/workorder-service/internal/repository"
	util "github.com/spec-kit/workorder-service/pkg/util"
)

// fakeOrderRepo keeps orders in memory and allocates numbers the same
// way the Postgres repository does, one sequence per kind and year.
// Transitions are conditional on the expected status, like the SQL
// predicate. beforeApply, when set, runs ahead of each transition write so
// tests can interleave a competing writer.
type fakeOrderRepo struct {
	mu          sync.Mutex
	orders      map[string]*domain.WorkOrder
	nextID      int
	beforeApply func()
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*domain.WorkOrder{}}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.WorkOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	year := numbering.YearSuffix(time.Now())
	max := 0
	for _, existing := range r.orders {
		if existing.Kind != order.Kind {
			continue
		}
		seq, seqYear, err := numbering.Split(existing.Number)
		if err != nil || seqYear != year {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	r.nextID++
	order.ID = fmt.Sprintf("order-%d", r.nextID)
	order.Number = numbering.Format(max+1, year)
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	clone := *order
	r.orders[order.ID] = &clone
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.WorkOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *order
	return &clone, nil
}

func (r *fakeOrderRepo) GetByNumber(_ context.Context, kind domain.OrderKind, number string) (*domain.WorkOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.Kind == kind && order.Number == number {
			clone := *order
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeOrderRepo) ApplyTransition(_ context.Context, id string, from domain.OrderStatus, result *lifecycle.Result) error {
	if r.beforeApply != nil {
		r.beforeApply()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok || order.Status != from {
		return repository.ErrStaleStatus
	}
	order.Status = result.Status
	if result.Description != nil {
		order.Description = *result.Description
	}
	if result.WorkDone != nil {
		order.WorkDone = *result.WorkDone
	}
	if result.CompletedAt != nil {
		order.CompletedAt = result.CompletedAt
	}
	if result.PickedUpAt != nil {
		order.PickedUpAt = result.PickedUpAt
	}
	if result.PickedUpBy != nil {
		order.PickedUpBy = result.PickedUpBy
	}
	order.UpdatedAt = time.Now()
	return nil
}

func (r *fakeOrderRepo) UpdateDetails(_ context.Context, updated *domain.WorkOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[updated.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	status := order.Status
	clone := *updated
	clone.Status = status
	r.orders[updated.ID] = &clone
	return nil
}

func (r *fakeOrderRepo) ListWithFilter(_ context.Context, filter repository.OrderFilter) ([]domain.WorkOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WorkOrder
	for _, order := range r.orders {
		if filter.Kind != nil && order.Kind != *filter.Kind {
			continue
		}
		if filter.Technician != nil && order.Technician != *filter.Technician {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if order.Status == status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *order)
	}
	return out, nil
}

func (r *fakeOrderRepo) CountByStatus(_ context.Context) ([]repository.StatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[domain.OrderKind]map[domain.OrderStatus]int64{}
	for _, order := range r.orders {
		if counts[order.Kind] == nil {
			counts[order.Kind] = map[domain.OrderStatus]int64{}
		}
		counts[order.Kind][order.Status]++
	}
	var out []repository.StatusCount
	for kind, byStatus := range counts {
		for status, count := range byStatus {
			out = append(out, repository.StatusCount{Kind: kind, Status: status, Count: count})
		}
	}
	return out, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func newOrderService(t *testing.T) (*OrderService, *fakeOrderRepo, *recordingDispatcher) {
	t.Helper()
	repo := newFakeOrderRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewOrderService(OrderDependencies{
		OrderRepo:  repo,
		Dispatcher: dispatcher,
	})
	return svc, repo, dispatcher
}

func validCreateInput(kind domain.OrderKind) OrderCreateInput {
	return OrderCreateInput{
		Kind:        kind,
		Department:  "Finance",
		Sector:      "Accounts",
		Requester:   "Dana Ross",
		Phone:       "555-0101",
		Request:     "Computer will not boot",
		Category:    "Desktop",
		Equipment:   "Dell OptiPlex 7080",
		Description: "No power light",
		Technician:  "Alex Chen",
	}
}

var (
	adminActor = Actor{Username: "admin", DisplayName: "Morgan Lee", Role: domain.RoleAdmin}
	techActor  = Actor{Username: "tech", DisplayName: "Alex Chen", Role: domain.RoleTechnician}
	clerkActor = Actor{Username: "clerk", DisplayName: "Sam Ortiz", Role: domain.RoleClerk}
)

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *util.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a domain error, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestRegisterAssignsSequentialNumbersPerKind(t *testing.T) {
	svc, _, dispatcher := newOrderService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, adminActor, validCreateInput(domain.OrderKindInternal))
	require.NoError(t, err)
	second, err := svc.Register(ctx, adminActor, validCreateInput(domain.OrderKindInternal))
	require.NoError(t, err)
	external, err := svc.Register(ctx, adminActor, validCreateInput(domain.OrderKindExternal))
	require.NoError(t, err)

	year := numbering.YearSuffix(time.Now())
	assert.Equal(t, numbering.Format(1, year), first.Number)
	assert.Equal(t, numbering.Format(2, year), second.Number)
	// The external sequence starts over; kinds never share numbers.
	assert.Equal(t, numbering.Format(1, year), external.Number)

	assert.Equal(t, domain.OrderStatusOpen, first.Status)
	assert.Equal(t, "admin", first.RegisteredBy)
	assert.Len(t, dispatcher.byType(events.EventOrderRegistered), 3)
}

func TestRegisterForcesTechnicianOwnName(t *testing.T) {
	svc, _, _ := newOrderService(t)

	input := validCreateInput(domain.OrderKindInternal)
	input.Technician = "Somebody Else"
	order, err := svc.Register(context.Background(), techActor, input)
	require.NoError(t, err)
	assert.Equal(t, "Alex Chen", order.Technician)
}

func TestRegisterValidatesRequiredFields(t *testing.T) {
	svc, _, _ := newOrderService(t)

	input := validCreateInput(domain.OrderKindInternal)
	input.Department = ""
	input.Phone = ""
	_, err := svc.Register(context.Background(), adminActor, input)
	requireDomainCode(t, err, "VALIDATION_FAILED")

	_, err = svc.Register(context.Background(), adminActor, OrderCreateInput{Kind: "BOGUS"})
	requireDomainCode(t, err, "VALIDATION_FAILED")
}

func TestFinishThenPickupFlow(t *testing.T) {
	svc, _, dispatcher := newOrderService(t)
	ctx := context.Background()

	order, err := svc.Register(ctx, techActor, validCreateInput(domain.OrderKindInternal))
	require.NoError(t, err)

	finished, err := svc.Finish(ctx, techActor, order.Kind, order.Number, "Replaced PSU")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAwaitingPickup, finished.Status)
	assert.Equal(t, "Replaced PSU", finished.WorkDone)
	require.NotNil(t, finished.CompletedAt)

	delivered, err := svc.ConfirmPickup(ctx, clerkActor, order.Kind, order.Number, "Dana Ross")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, delivered.Status)
	require.NotNil(t, delivered.PickedUpBy)
	assert.Equal(t, "Dana Ross", *delivered.PickedUpBy)

	changes := dispatcher.byType(events.EventOrderStatusChanged)
	require.Len(t, changes, 2)
	payload, ok := changes[1].Payload.(events.OrderStatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.OrderStatusAwaitingPickup, payload.OldStatus)
	assert.Equal(t, domain.OrderStatusDelivered, payload.NewStatus)
}

func TestTechnicianCannotConfirmPickup(t *testing.T) {
	svc, _, _ := newOrderService(t)
	ctx := context.Background()

	order, err := svc.Register(ctx, techActor, validCreateInput(domain.OrderKindExternal))
	require.NoError(t, err)
	_, err = svc.Finish(ctx, techActor, order.Kind, order.Number, "Cleaned rollers")
	require.NoError(t, err)

	_, err = svc.ConfirmPickup(ctx, techActor, order.Kind, order.Number, "Dana Ross")
	requireDomainCode(t, err, "FORBIDDEN")
}

func TestTransitionOnDeliveredOrderFails(t *testing.T) {
	svc, _, _ := newOrderService(t)
	ctx := context.Background()

	order, err := svc.Register(ctx, techActor, validCreateInput(domain.OrderKindInternal))
	require.NoError(t, err)
	_, err = svc.Finish(ctx, techActor, order.Kind, order.Number, "Reinstalled OS")
	require.NoError(t, err)
	_, err = svc.ConfirmPickup(ctx, adminActor, order.Kind, order.Number, "Dana Ross")
	require.NoError(t, err)

	_, err = svc.Finish(ctx, adminActor, order.Kind, order.Number, "More work")
	requireDomainCode(t, err, "TERMINAL_STATE")
}

func TestStaleTransitionCannotLeaveDeliveredState(t *testing.T) {
	svc, repo, _ := newOrderService(t)
	ctx := context.Background()

	order, err := svc.Register(ctx, techActor, validCreateInput(domain.OrderKindInternal))
	require.NoError(t, err)

	// A competing writer delivers the order between this transition's read
	// and its write. The write validated against OPEN must lose.
	raced := false
	repo.beforeApply = func() {
		if raced {
			return
		}
		raced = true
		_, err := svc.Finish(ctx, techActor, order.Kind, order.Number, "Replaced PSU")
		require.NoError(t, err)
		_, err = svc.ConfirmPickup(ctx, adminActor, order.Kind, order.Number, "Dana Ross")
		require.NoError(t, err)
	}

	_, err = svc.Transition(ctx, adminActor, order.Kind, order.Number, domain.OrderStatusAwaitingParts, lifecycle.Payload{})
	requireDomainCode(t, err, "CONFLICT")

	stored, err := repo.GetByNumber(ctx, order.Kind, order.Number)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, stored.Status)
}

func TestTransitionUnknownOrder(t *testing.T) {
	svc, _, _ := newOrderService(t)
	_, err := svc.Finish(context.Background(), adminActor, domain.OrderKindInternal, "99-99", "anything")
	requireDomainCode(t, err, "NOT_FOUND")
}

func TestUpdateDetailsKeepsStatus(t *testing.T) {
	svc, repo, _ := newOrderService(t)
	ctx := context.Background()

	order, err := svc.Register(ctx, clerkActor, validCreateInput(domain.OrderKindInternal))
	require.NoError(t, err)
	_, err = svc.Finish(ctx, clerkActor, order.Kind, order.Number, "Swapped RAM")
	require.NoError(t, err)

	input := OrderUpdateInput{
		Department: "Finance",
		Sector:     "Payroll",
		Requester:  "Dana Ross",
		Phone:      "555-0102",
		Request:    "Computer will not boot",
		Category:   "Desktop",
		Equipment:  "Dell OptiPlex 7080",
		Technician: "Alex Chen",
	}
	updated, err := svc.UpdateDetails(ctx, clerkActor, order.Kind, order.Number, input)
	require.NoError(t, err)
	assert.Equal(t, "Payroll", updated.Sector)

	stored, err := repo.GetByNumber(ctx, order.Kind, order.Number)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAwaitingPickup, stored.Status)
}

func TestUpdateDetailsForbiddenForTechnicians(t *testing.T) {
	svc, _, _ := newOrderService(t)
	ctx := context.Background()

	order, err := svc.Register(ctx, techActor, validCreateInput(domain.OrderKindInternal))
	require.NoError(t, err)

	_, err = svc.UpdateDetails(ctx, techActor, order.Kind, order.Number, OrderUpdateInput{
		Department: "Finance",
		Technician: "Alex Chen",
	})
	requireDomainCode(t, err, "FORBIDDEN")
}

func TestWorklistSplitsPendingAndResolved(t *testing.T) {
	svc, _, _ := newOrderService(t)
	ctx := context.Background()

	open, err := svc.Register(ctx, techActor, validCreateInput(domain.OrderKindInternal))
	require.NoError(t, err)
	done, err := svc.Register(ctx, techActor, validCreateInput(domain.OrderKindInternal))
	require.NoError(t, err)
	_, err = svc.Finish(ctx, techActor, done.Kind, done.Number, "Replaced fan")
	require.NoError(t, err)

	worklist, err := svc.WorklistFor(ctx, "Alex Chen")
	require.NoError(t, err)
	require.Len(t, worklist.Pending, 1)
	require.Len(t, worklist.Resolved, 1)
	assert.Equal(t, open.Number, worklist.Pending[0].Number)
	assert.Equal(t, done.Number, worklist.Resolved[0].Number)
}
