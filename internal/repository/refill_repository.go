package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/numbering"
	util "github.com/spec-kit/workorder-service/pkg/util"
)

// RefillFilter captures refill listing parameters.
type RefillFilter struct {
	Statuses   []domain.RefillStatus
	Department *string
	Limit      int
	Offset     int
}

// RefillRepository encapsulates refill-request persistence. Refills carry
// their own year-scoped sequence, allocated under the same table-lock
// discipline as work orders.
type RefillRepository interface {
	Create(ctx context.Context, refill *domain.Refill) error
	GetByID(ctx context.Context, id string) (*domain.Refill, error)
	Update(ctx context.Context, refill *domain.Refill) error
	List(ctx context.Context, filter RefillFilter) ([]domain.Refill, error)
}

type refillRepository struct {
	pool *pgxpool.Pool
}

// NewRefillRepository instantiates repository.
func NewRefillRepository(pool *pgxpool.Pool) RefillRepository {
	return &refillRepository{pool: pool}
}

func (r *refillRepository) Create(ctx context.Context, refill *domain.Refill) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return util.NewStorageUnavailable(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, "LOCK TABLE refills IN ACCESS EXCLUSIVE MODE"); err != nil {
		return util.NewStorageUnavailable(err)
	}

	year := numbering.YearSuffix(time.Now())
	const maxQuery = `
        SELECT COALESCE(MAX(CAST(SPLIT_PART(number, '-', 1) AS INTEGER)), 0)
        FROM refills WHERE number LIKE $1`
	var max int
	if err := tx.QueryRow(ctx, maxQuery, "%-"+year).Scan(&max); err != nil {
		return util.NewStorageUnavailable(err)
	}
	refill.Number = numbering.Format(max+1, year)

	const insert = `
        INSERT INTO refills (number, status, department, sector, equipment_id, equipment_name,
            supply_type, supply_model, color, quantity, supplier, cost, invoice_number,
            order_number, order_kind, notes, requested_at, registered_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
        RETURNING id, updated_at`
	if err := tx.QueryRow(ctx, insert,
		refill.Number,
		refill.Status,
		refill.Department,
		refill.Sector,
		refill.EquipmentID,
		refill.EquipmentName,
		refill.SupplyType,
		refill.SupplyModel,
		refill.Color,
		refill.Quantity,
		refill.Supplier,
		refill.Cost,
		refill.InvoiceNumber,
		refill.OrderNumber,
		refill.OrderKind,
		refill.Notes,
		refill.RequestedAt,
		refill.RegisteredBy,
	).Scan(&refill.ID, &refill.UpdatedAt); err != nil {
		return util.NewStorageUnavailable(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return util.NewStorageUnavailable(err)
	}
	return nil
}

const refillColumns = `id, number, status, department, sector, equipment_id, equipment_name,
           supply_type, supply_model, color, quantity, supplier, cost, invoice_number,
           order_number, order_kind, notes, requested_at, sent_at, returned_at, registered_by, updated_at`

func (r *refillRepository) GetByID(ctx context.Context, id string) (*domain.Refill, error) {
	const query = `SELECT ` + refillColumns + ` FROM refills WHERE id=$1`
	var refill domain.Refill
	if err := scanRefill(r.pool.QueryRow(ctx, query, id), &refill); err != nil {
		return nil, err
	}
	return &refill, nil
}

func (r *refillRepository) Update(ctx context.Context, refill *domain.Refill) error {
	const query = `
        UPDATE refills SET status=$1, department=$2, sector=$3, equipment_id=$4, equipment_name=$5,
            supply_type=$6, supply_model=$7, color=$8, quantity=$9, supplier=$10, cost=$11,
            invoice_number=$12, order_number=$13, order_kind=$14, notes=$15,
            sent_at=$16, returned_at=$17, updated_at=NOW()
        WHERE id=$18`
	cmd, err := r.pool.Exec(ctx, query,
		refill.Status,
		refill.Department,
		refill.Sector,
		refill.EquipmentID,
		refill.EquipmentName,
		refill.SupplyType,
		refill.SupplyModel,
		refill.Color,
		refill.Quantity,
		refill.Supplier,
		refill.Cost,
		refill.InvoiceNumber,
		refill.OrderNumber,
		refill.OrderKind,
		refill.Notes,
		refill.SentAt,
		refill.ReturnedAt,
		refill.ID,
	)
	if err != nil {
		return util.NewStorageUnavailable(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *refillRepository) List(ctx context.Context, filter RefillFilter) ([]domain.Refill, error) {
	base := `SELECT ` + refillColumns + ` FROM refills`
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY requested_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, util.NewStorageUnavailable(err)
	}
	defer rows.Close()

	var result []domain.Refill
	for rows.Next() {
		var refill domain.Refill
		if err := scanRefill(rows, &refill); err != nil {
			return nil, err
		}
		result = append(result, refill)
	}
	return result, rows.Err()
}

func scanRefill(row pgx.Row, refill *domain.Refill) error {
	return row.Scan(
		&refill.ID,
		&refill.Number,
		&refill.Status,
		&refill.Department,
		&refill.Sector,
		&refill.EquipmentID,
		&refill.EquipmentName,
		&refill.SupplyType,
		&refill.SupplyModel,
		&refill.Color,
		&refill.Quantity,
		&refill.Supplier,
		&refill.Cost,
		&refill.InvoiceNumber,
		&refill.OrderNumber,
		&refill.OrderKind,
		&refill.Notes,
		&refill.RequestedAt,
		&refill.SentAt,
		&refill.ReturnedAt,
		&refill.RegisteredBy,
		&refill.UpdatedAt,
	)
}
