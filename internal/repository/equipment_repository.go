package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workorder-service/internal/domain"
	util "github.com/spec-kit/workorder-service/pkg/util"
)

// EquipmentFilter captures inventory listing parameters.
type EquipmentFilter struct {
	Category   *string
	Department *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// EquipmentRepository encapsulates inventory persistence.
type EquipmentRepository interface {
	Create(ctx context.Context, item *domain.Equipment) error
	GetByID(ctx context.Context, id string) (*domain.Equipment, error)
	Update(ctx context.Context, item *domain.Equipment) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter EquipmentFilter) ([]domain.Equipment, error)
	// ListPrinters feeds the refill-request form.
	ListPrinters(ctx context.Context) ([]domain.Equipment, error)
}

type equipmentRepository struct {
	pool *pgxpool.Pool
}

// NewEquipmentRepository instantiates repository.
func NewEquipmentRepository(pool *pgxpool.Pool) EquipmentRepository {
	return &equipmentRepository{pool: pool}
}

const equipmentColumns = `id, category, asset_tag, hostname, specification, department, sector,
           location, ip, mac, subnet, gateway, dns, serial_number, notes, registered_at`

func (r *equipmentRepository) Create(ctx context.Context, item *domain.Equipment) error {
	const query = `
        INSERT INTO equipment (category, asset_tag, hostname, specification, department, sector,
            location, ip, mac, subnet, gateway, dns, serial_number, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8,''),NULLIF($9,''),$10,$11,$12,$13,$14)
        RETURNING id, registered_at`
	return r.pool.QueryRow(ctx, query,
		item.Category,
		item.AssetTag,
		item.Hostname,
		item.Specification,
		item.Department,
		item.Sector,
		item.Location,
		item.IP,
		item.MAC,
		item.Subnet,
		item.Gateway,
		item.DNS,
		item.SerialNumber,
		item.Notes,
	).Scan(&item.ID, &item.RegisteredAt)
}

func (r *equipmentRepository) GetByID(ctx context.Context, id string) (*domain.Equipment, error) {
	query := fmt.Sprintf(`SELECT %s FROM equipment WHERE id=$1`, selectableEquipmentColumns())
	var item domain.Equipment
	if err := scanEquipment(r.pool.QueryRow(ctx, query, id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *equipmentRepository) Update(ctx context.Context, item *domain.Equipment) error {
	const query = `
        UPDATE equipment SET category=$1, asset_tag=$2, hostname=$3, specification=$4, department=$5,
            sector=$6, location=$7, ip=NULLIF($8,''), mac=NULLIF($9,''), subnet=$10, gateway=$11,
            dns=$12, serial_number=$13, notes=$14
        WHERE id=$15`
	cmd, err := r.pool.Exec(ctx, query,
		item.Category,
		item.AssetTag,
		item.Hostname,
		item.Specification,
		item.Department,
		item.Sector,
		item.Location,
		item.IP,
		item.MAC,
		item.Subnet,
		item.Gateway,
		item.DNS,
		item.SerialNumber,
		item.Notes,
		item.ID,
	)
	if err != nil {
		return util.NewStorageUnavailable(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *equipmentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM equipment WHERE id=$1`, id)
	if err != nil {
		return util.NewStorageUnavailable(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *equipmentRepository) List(ctx context.Context, filter EquipmentFilter) ([]domain.Equipment, error) {
	base := fmt.Sprintf(`SELECT %s FROM equipment`, selectableEquipmentColumns())
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(hostname) LIKE %s OR LOWER(asset_tag) LIKE %s OR LOWER(serial_number) LIKE %s)", placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY hostname LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, util.NewStorageUnavailable(err)
	}
	defer rows.Close()
	return scanEquipmentRows(rows)
}

func (r *equipmentRepository) ListPrinters(ctx context.Context) ([]domain.Equipment, error) {
	query := fmt.Sprintf(`SELECT %s FROM equipment WHERE LOWER(category) LIKE '%%printer%%' OR LOWER(category) LIKE '%%impressora%%' ORDER BY hostname`, selectableEquipmentColumns())
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, util.NewStorageUnavailable(err)
	}
	defer rows.Close()
	return scanEquipmentRows(rows)
}

// ip and mac are nullable uniques; coalesce them back to empty strings.
func selectableEquipmentColumns() string {
	return strings.Replace(strings.Replace(equipmentColumns, " ip,", " COALESCE(ip,''),", 1), " mac,", " COALESCE(mac,''),", 1)
}

func scanEquipment(row pgx.Row, item *domain.Equipment) error {
	return row.Scan(
		&item.ID,
		&item.Category,
		&item.AssetTag,
		&item.Hostname,
		&item.Specification,
		&item.Department,
		&item.Sector,
		&item.Location,
		&item.IP,
		&item.MAC,
		&item.Subnet,
		&item.Gateway,
		&item.DNS,
		&item.SerialNumber,
		&item.Notes,
		&item.RegisteredAt,
	)
}

func scanEquipmentRows(rows pgx.Rows) ([]domain.Equipment, error) {
	var result []domain.Equipment
	for rows.Next() {
		var item domain.Equipment
		if err := scanEquipment(rows, &item); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
