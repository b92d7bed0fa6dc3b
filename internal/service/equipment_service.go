package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/repository"
	util "github.com/spec-kit/workorder-service/pkg/util"
)

// EquipmentService manages the inventory.
type EquipmentService struct {
	equipment repository.EquipmentRepository
}

// EquipmentInput describes create/update payloads.
type EquipmentInput struct {
	Category      string
	AssetTag      string
	Hostname      string
	Specification string
	Department    string
	Sector        string
	Location      string
	IP            string
	MAC           string
	Subnet        string
	Gateway       string
	DNS           string
	SerialNumber  string
	Notes         string
}

// NewEquipmentService constructs the service.
func NewEquipmentService(equipment repository.EquipmentRepository) *EquipmentService {
	return &EquipmentService{equipment: equipment}
}

func (s *EquipmentService) validate(input EquipmentInput) error {
	missing := map[string]any{}
	for field, value := range map[string]string{
		"category":      input.Category,
		"hostname":      input.Hostname,
		"specification": input.Specification,
		"department":    input.Department,
	} {
		if strings.TrimSpace(value) == "" {
			missing[field] = "required"
		}
	}
	if len(missing) > 0 {
		return util.NewValidationError("missing required fields", missing)
	}
	return nil
}

func (s *EquipmentService) fromInput(input EquipmentInput) domain.Equipment {
	return domain.Equipment{
		Category:      strings.TrimSpace(input.Category),
		AssetTag:      strings.TrimSpace(input.AssetTag),
		Hostname:      strings.TrimSpace(input.Hostname),
		Specification: strings.TrimSpace(input.Specification),
		Department:    strings.TrimSpace(input.Department),
		Sector:        strings.TrimSpace(input.Sector),
		Location:      strings.TrimSpace(input.Location),
		IP:            strings.TrimSpace(input.IP),
		MAC:           strings.TrimSpace(input.MAC),
		Subnet:        strings.TrimSpace(input.Subnet),
		Gateway:       strings.TrimSpace(input.Gateway),
		DNS:           strings.TrimSpace(input.DNS),
		SerialNumber:  strings.TrimSpace(input.SerialNumber),
		Notes:         strings.TrimSpace(input.Notes),
	}
}

// Create registers an inventory item.
func (s *EquipmentService) Create(ctx context.Context, input EquipmentInput) (*domain.Equipment, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}
	item := s.fromInput(input)
	if err := s.equipment.Create(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Get fetches an item by id.
func (s *EquipmentService) Get(ctx context.Context, id string) (*domain.Equipment, error) {
	item, err := s.equipment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("equipment", map[string]any{"id": id})
		}
		return nil, err
	}
	return item, nil
}

// Update rewrites an item.
func (s *EquipmentService) Update(ctx context.Context, id string, input EquipmentInput) (*domain.Equipment, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}
	item := s.fromInput(input)
	item.ID = id
	if err := s.equipment.Update(ctx, &item); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("equipment", map[string]any{"id": id})
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes an item. Deleting equipment never frees work-order numbers.
func (s *EquipmentService) Delete(ctx context.Context, id string) error {
	err := s.equipment.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return util.NewNotFound("equipment", map[string]any{"id": id})
	}
	return err
}

// List returns inventory items matching the filter.
func (s *EquipmentService) List(ctx context.Context, filter repository.EquipmentFilter) ([]domain.Equipment, error) {
	return s.equipment.List(ctx, filter)
}
