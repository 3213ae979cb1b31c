package parts

import (
	"context"
	"fmt"
	"strings"

	"github.com/bodyworks/bodyworks/internal/platform/httpx"
)

// Service handles parts business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns catalogue entries matching the filters.
func (s *Service) List(ctx context.Context, tenantID int64, filters ListFilters) ([]Part, int, error) {
	return s.repo.List(ctx, tenantID, filters)
}

// Get fetches one part.
func (s *Service) Get(ctx context.Context, tenantID, id int64) (Part, error) {
	return s.repo.Get(ctx, tenantID, id)
}

// Create adds a catalogue entry with zero stock.
func (s *Service) Create(ctx context.Context, tenantID int64, req CreatePartRequest) (Part, error) {
	return s.repo.Insert(ctx, Part{
		TenantID:     tenantID,
		SKU:          strings.ToUpper(strings.TrimSpace(req.SKU)),
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		UnitPrice:    req.UnitPrice,
		ReorderLevel: req.ReorderLevel,
	})
}

// Update applies a partial update to catalogue fields.
func (s *Service) Update(ctx context.Context, tenantID, id int64, req UpdatePartRequest) (Part, error) {
	existing, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return Part{}, err
	}
	if req.Name != nil {
		existing.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		existing.Description = req.Description
	}
	if req.UnitPrice != nil {
		existing.UnitPrice = *req.UnitPrice
	}
	if req.ReorderLevel != nil {
		existing.ReorderLevel = *req.ReorderLevel
	}
	return s.repo.Update(ctx, existing)
}

// MoveStock appends a ledger entry and updates the balance under a row
// lock. A movement that would take the balance negative is rejected.
func (s *Service) MoveStock(ctx context.Context, tenantID, partID, userID int64, req MoveStockRequest) (Movement, error) {
	if !ValidMovementType(req.Type) {
		return Movement{}, fmt.Errorf("%w: unknown movement type %q", httpx.ErrValidation, req.Type)
	}
	if req.Type != MovementAdjustment && req.Quantity <= 0 {
		return Movement{}, fmt.Errorf("%w: quantity must be positive for %s", httpx.ErrValidation, req.Type)
	}
	if req.Quantity == 0 {
		return Movement{}, fmt.Errorf("%w: quantity must not be zero", httpx.ErrValidation)
	}

	movement := Movement{
		PartID:    partID,
		Type:      req.Type,
		Quantity:  req.Quantity,
		JobCardID: req.JobCardID,
		Reference: req.Reference,
		MovedBy:   userID,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		part, err := repo.GetForUpdate(ctx, tenantID, partID)
		if err != nil {
			return err
		}
		balance := part.OnHand + movement.Delta()
		if balance < 0 {
			return fmt.Errorf("%w: movement would take stock of %s below zero", httpx.ErrConflict, part.SKU)
		}
		movement.Balance = balance
		stored, err := repo.InsertMovement(ctx, movement)
		if err != nil {
			return fmt.Errorf("insert movement: %w", err)
		}
		movement = stored
		return repo.SetOnHand(ctx, tenantID, partID, balance)
	})
	if err != nil {
		return Movement{}, err
	}
	return movement, nil
}

// Movements returns a part's ledger.
func (s *Service) Movements(ctx context.Context, tenantID, partID int64) ([]Movement, error) {
	if _, err := s.repo.Get(ctx, tenantID, partID); err != nil {
		return nil, err
	}
	return s.repo.Movements(ctx, tenantID, partID)
}

// LowStock returns parts at or below their reorder level.
func (s *Service) LowStock(ctx context.Context, tenantID int64) ([]Part, error) {
	return s.repo.LowStock(ctx, tenantID)
}
