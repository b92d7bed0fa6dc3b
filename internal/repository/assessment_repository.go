package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workorder-service/internal/domain"
	util "github.com/spec-kit/workorder-service/pkg/util"
)

// AssessmentRepository encapsulates assessment (laudo) persistence.
type AssessmentRepository interface {
	// FileAgainstOrder inserts the assessment and moves the referenced
	// order to the given status in the same transaction. The order write is
	// conditional on the status still matching the one the filing was
	// validated against; ErrStaleStatus is returned otherwise.
	FileAgainstOrder(ctx context.Context, assessment *domain.Assessment, orderID string, fromStatus, toStatus domain.OrderStatus) error
	GetByID(ctx context.Context, id string) (*domain.Assessment, error)
	ListByOrder(ctx context.Context, kind domain.OrderKind, number string) ([]domain.Assessment, error)
	UpdateStatus(ctx context.Context, id string, status domain.AssessmentStatus, resolvedAt time.Time) error
}

type assessmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssessmentRepository instantiates repository.
func NewAssessmentRepository(pool *pgxpool.Pool) AssessmentRepository {
	return &assessmentRepository{pool: pool}
}

func (r *assessmentRepository) FileAgainstOrder(ctx context.Context, assessment *domain.Assessment, orderID string, fromStatus, toStatus domain.OrderStatus) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return util.NewStorageUnavailable(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insert = `
        INSERT INTO assessments (order_number, order_kind, component, specification, purchase_link, notes, technician, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, filed_at`
	if err := tx.QueryRow(ctx, insert,
		assessment.OrderNumber,
		assessment.OrderKind,
		assessment.Component,
		assessment.Specification,
		assessment.PurchaseLink,
		assessment.Notes,
		assessment.Technician,
		assessment.Status,
	).Scan(&assessment.ID, &assessment.FiledAt); err != nil {
		return util.NewStorageUnavailable(err)
	}

	const update = `UPDATE work_orders SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`
	cmd, err := tx.Exec(ctx, update, toStatus, orderID, fromStatus)
	if err != nil {
		return util.NewStorageUnavailable(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrStaleStatus
	}

	if err := tx.Commit(ctx); err != nil {
		return util.NewStorageUnavailable(err)
	}
	return nil
}

const assessmentColumns = `id, order_number, order_kind, component, specification, purchase_link,
           notes, technician, status, filed_at, resolved_at`

func (r *assessmentRepository) GetByID(ctx context.Context, id string) (*domain.Assessment, error) {
	const query = `
        SELECT ` + assessmentColumns + `
        FROM assessments WHERE id=$1`
	var assessment domain.Assessment
	if err := scanAssessment(r.pool.QueryRow(ctx, query, id), &assessment); err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *assessmentRepository) ListByOrder(ctx context.Context, kind domain.OrderKind, number string) ([]domain.Assessment, error) {
	const query = `
        SELECT ` + assessmentColumns + `
        FROM assessments WHERE order_kind=$1 AND order_number=$2 ORDER BY filed_at DESC`
	rows, err := r.pool.Query(ctx, query, kind, number)
	if err != nil {
		return nil, util.NewStorageUnavailable(err)
	}
	defer rows.Close()

	var result []domain.Assessment
	for rows.Next() {
		var assessment domain.Assessment
		if err := scanAssessment(rows, &assessment); err != nil {
			return nil, err
		}
		result = append(result, assessment)
	}
	return result, rows.Err()
}

func (r *assessmentRepository) UpdateStatus(ctx context.Context, id string, status domain.AssessmentStatus, resolvedAt time.Time) error {
	const query = `UPDATE assessments SET status=$1, resolved_at=$2 WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, status, resolvedAt, id)
	if err != nil {
		return util.NewStorageUnavailable(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAssessment(row pgx.Row, assessment *domain.Assessment) error {
	return row.Scan(
		&assessment.ID,
		&assessment.OrderNumber,
		&assessment.OrderKind,
		&assessment.Component,
		&assessment.Specification,
		&assessment.PurchaseLink,
		&assessment.Notes,
		&assessment.Technician,
		&assessment.Status,
		&assessment.FiledAt,
		&assessment.ResolvedAt,
	)
}
