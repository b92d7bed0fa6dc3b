package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/lifecycle"
	"github.com/spec-kit/workorder-service/internal/numbering"
	util "github.com/spec-kit/workorder-service/pkg/util"
)

// OrderFilter captures listing parameters.
type OrderFilter struct {
	Kind       *domain.OrderKind
	Statuses   []domain.OrderStatus
	Technician *string
	Department *string
	SearchTerm *string
	OpenedFrom *time.Time
	OpenedTo   *time.Time
	Limit      int
	Offset     int
}

// ErrStaleStatus reports that an order's status no longer matches the one a
// transition was validated against. Callers should surface it as a conflict.
var ErrStaleStatus = errors.New("work order status changed concurrently")

// StatusCount is one row of the dashboard aggregation.
type StatusCount struct {
	Kind   domain.OrderKind
	Status domain.OrderStatus
	Count  int64
}

// WorkOrderRepository encapsulates work-order persistence.
type WorkOrderRepository interface {
	// Create allocates the order number and inserts the row in one
	// transaction, holding an exclusive table lock so concurrent creations
	// never compute the same number.
	Create(ctx context.Context, order *domain.WorkOrder) error
	GetByID(ctx context.Context, id string) (*domain.WorkOrder, error)
	GetByNumber(ctx context.Context, kind domain.OrderKind, number string) (*domain.WorkOrder, error)
	// ApplyTransition writes the status plus the field set computed by the
	// lifecycle machine as a single atomic update. The write is conditional
	// on the status still being the one the machine validated against;
	// ErrStaleStatus is returned when another writer got there first.
	ApplyTransition(ctx context.Context, id string, from domain.OrderStatus, result *lifecycle.Result) error
	UpdateDetails(ctx context.Context, order *domain.WorkOrder) error
	ListWithFilter(ctx context.Context, filter OrderFilter) ([]domain.WorkOrder, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
}

type workOrderRepository struct {
	pool  *pgxpool.Pool
	alloc *numbering.Allocator
}

// NewWorkOrderRepository instantiates repository.
func NewWorkOrderRepository(pool *pgxpool.Pool, alloc *numbering.Allocator) WorkOrderRepository {
	return &workOrderRepository{pool: pool, alloc: alloc}
}

// txSequenceStore scans the max numeric prefix inside the allocation
// transaction, after the table lock is held.
type txSequenceStore struct {
	tx pgx.Tx
}

func (s txSequenceStore) MaxPrefix(ctx context.Context, kind domain.OrderKind, year string) (int, error) {
	const query = `
        SELECT COALESCE(MAX(CAST(SPLIT_PART(number, '-', 1) AS INTEGER)), 0)
        FROM work_orders
        WHERE kind=$1 AND number LIKE $2`
	var max int
	if err := s.tx.QueryRow(ctx, query, kind, "%-"+year).Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

func (r *workOrderRepository) Create(ctx context.Context, order *domain.WorkOrder) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return util.NewStorageUnavailable(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, "LOCK TABLE work_orders IN ACCESS EXCLUSIVE MODE"); err != nil {
		return util.NewStorageUnavailable(err)
	}

	number, err := r.alloc.Next(ctx, txSequenceStore{tx: tx}, order.Kind)
	if err != nil {
		return err
	}
	order.Number = number

	const query = `
        INSERT INTO work_orders (number, kind, department, sector, requester, phone, request,
            category, asset_tag, equipment, description, status, technician, registered_by, opened_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, query,
		order.Number,
		order.Kind,
		order.Department,
		order.Sector,
		order.Requester,
		order.Phone,
		order.Request,
		order.Category,
		order.AssetTag,
		order.Equipment,
		order.Description,
		order.Status,
		order.Technician,
		order.RegisteredBy,
		order.OpenedAt,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return util.NewStorageUnavailable(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return util.NewStorageUnavailable(err)
	}
	return nil
}

const orderColumns = `id, number, kind, department, sector, requester, phone, request,
           category, asset_tag, equipment, description, work_done, status, technician,
           registered_by, opened_at, completed_at, picked_up_at, picked_up_by, created_at, updated_at`

func (r *workOrderRepository) GetByID(ctx context.Context, id string) (*domain.WorkOrder, error) {
	query := fmt.Sprintf(`SELECT %s FROM work_orders WHERE id=$1`, orderColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *workOrderRepository) GetByNumber(ctx context.Context, kind domain.OrderKind, number string) (*domain.WorkOrder, error) {
	query := fmt.Sprintf(`SELECT %s FROM work_orders WHERE kind=$1 AND number=$2`, orderColumns)
	return r.fetchSingle(ctx, query, kind, number)
}

func (r *workOrderRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.WorkOrder, error) {
	var order domain.WorkOrder
	if err := scanOrder(r.pool.QueryRow(ctx, query, args...), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *workOrderRepository) ApplyTransition(ctx context.Context, id string, from domain.OrderStatus, result *lifecycle.Result) error {
	clauses := []string{"updated_at=NOW()"}
	args := []any{result.Status}
	clauses = append(clauses, "status=$1")

	if result.Description != nil {
		args = append(args, *result.Description)
		clauses = append(clauses, fmt.Sprintf("description=$%d", len(args)))
	}
	if result.WorkDone != nil {
		args = append(args, *result.WorkDone)
		clauses = append(clauses, fmt.Sprintf("work_done=$%d", len(args)))
	}
	if result.CompletedAt != nil {
		args = append(args, *result.CompletedAt)
		clauses = append(clauses, fmt.Sprintf("completed_at=$%d", len(args)))
	}
	if result.PickedUpAt != nil {
		args = append(args, *result.PickedUpAt)
		clauses = append(clauses, fmt.Sprintf("picked_up_at=$%d", len(args)))
	}
	if result.PickedUpBy != nil {
		args = append(args, *result.PickedUpBy)
		clauses = append(clauses, fmt.Sprintf("picked_up_by=$%d", len(args)))
	}

	args = append(args, id)
	idPlaceholder := len(args)
	args = append(args, from)
	query := fmt.Sprintf("UPDATE work_orders SET %s WHERE id=$%d AND status=$%d",
		strings.Join(clauses, ", "), idPlaceholder, len(args))
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return util.NewStorageUnavailable(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrStaleStatus
	}
	return nil
}

func (r *workOrderRepository) UpdateDetails(ctx context.Context, order *domain.WorkOrder) error {
	const query = `
        UPDATE work_orders SET department=$1, sector=$2, requester=$3, phone=$4, request=$5,
            category=$6, asset_tag=$7, equipment=$8, description=$9, technician=$10, updated_at=NOW()
        WHERE id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		order.Department,
		order.Sector,
		order.Requester,
		order.Phone,
		order.Request,
		order.Category,
		order.AssetTag,
		order.Equipment,
		order.Description,
		order.Technician,
		order.ID,
	)
	if err != nil {
		return util.NewStorageUnavailable(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *workOrderRepository) ListWithFilter(ctx context.Context, filter OrderFilter) ([]domain.WorkOrder, error) {
	base := fmt.Sprintf(`SELECT %s FROM work_orders`, orderColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Kind != nil {
		args = append(args, *filter.Kind)
		clauses = append(clauses, fmt.Sprintf("kind=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Technician != nil {
		args = append(args, strings.TrimSpace(*filter.Technician))
		clauses = append(clauses, fmt.Sprintf("UPPER(technician)=UPPER($%d)", len(args)))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if filter.OpenedFrom != nil {
		args = append(args, *filter.OpenedFrom)
		clauses = append(clauses, fmt.Sprintf("opened_at >= $%d", len(args)))
	}
	if filter.OpenedTo != nil {
		args = append(args, *filter.OpenedTo)
		clauses = append(clauses, fmt.Sprintf("opened_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(requester) LIKE %s OR LOWER(request) LIKE %s OR number LIKE %s)", placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY opened_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, util.NewStorageUnavailable(err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *workOrderRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	const query = `SELECT kind, status, COUNT(*) FROM work_orders GROUP BY kind, status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, util.NewStorageUnavailable(err)
	}
	defer rows.Close()

	var result []StatusCount
	for rows.Next() {
		var entry StatusCount
		if err := rows.Scan(&entry.Kind, &entry.Status, &entry.Count); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func scanOrder(row pgx.Row, order *domain.WorkOrder) error {
	return row.Scan(
		&order.ID,
		&order.Number,
		&order.Kind,
		&order.Department,
		&order.Sector,
		&order.Requester,
		&order.Phone,
		&order.Request,
		&order.Category,
		&order.AssetTag,
		&order.Equipment,
		&order.Description,
		&order.WorkDone,
		&order.Status,
		&order.Technician,
		&order.RegisteredBy,
		&order.OpenedAt,
		&order.CompletedAt,
		&order.PickedUpAt,
		&order.PickedUpBy,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
}

func scanOrders(rows pgx.Rows) ([]domain.WorkOrder, error) {
	var result []domain.WorkOrder
	for rows.Next() {
		var order domain.WorkOrder
		if err := scanOrder(rows, &order); err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	return result, rows.Err()
}
