package parts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bodyworks/bodyworks/internal/platform/httpx"
)

type stubRepo struct {
	nextID    int64
	parts     map[int64]Part
	movements map[int64][]Movement
}

func newStubRepo() *stubRepo {
	return &stubRepo{parts: make(map[int64]Part), movements: make(map[int64][]Movement)}
}

func (s *stubRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, s)
}

func (s *stubRepo) List(ctx context.Context, tenantID int64, filters ListFilters) ([]Part, int, error) {
	var list []Part
	for _, p := range s.parts {
		if p.TenantID == tenantID {
			list = append(list, p)
		}
	}
	return list, len(list), nil
}

func (s *stubRepo) Get(ctx context.Context, tenantID, id int64) (Part, error) {
	p, ok := s.parts[id]
	if !ok || p.TenantID != tenantID {
		return Part{}, httpx.ErrNotFound
	}
	return p, nil
}

func (s *stubRepo) GetForUpdate(ctx context.Context, tenantID, id int64) (Part, error) {
	return s.Get(ctx, tenantID, id)
}

func (s *stubRepo) Insert(ctx context.Context, p Part) (Part, error) {
	for _, existing := range s.parts {
		if existing.TenantID == p.TenantID && existing.SKU == p.SKU {
			return Part{}, httpx.ErrDuplicate
		}
	}
	s.nextID++
	p.ID = s.nextID
	s.parts[p.ID] = p
	return p, nil
}

func (s *stubRepo) Update(ctx context.Context, p Part) (Part, error) {
	stored, ok := s.parts[p.ID]
	if !ok {
		return Part{}, httpx.ErrNotFound
	}
	stored.Name = p.Name
	stored.Description = p.Description
	stored.UnitPrice = p.UnitPrice
	stored.ReorderLevel = p.ReorderLevel
	s.parts[p.ID] = stored
	return stored, nil
}

func (s *stubRepo) SetOnHand(ctx context.Context, tenantID, id int64, onHand float64) error {
	p, ok := s.parts[id]
	if !ok || p.TenantID != tenantID {
		return httpx.ErrNotFound
	}
	p.OnHand = onHand
	s.parts[id] = p
	return nil
}

func (s *stubRepo) InsertMovement(ctx context.Context, m Movement) (Movement, error) {
	m.ID = int64(len(s.movements[m.PartID]) + 1)
	m.MovedAt = time.Now()
	s.movements[m.PartID] = append(s.movements[m.PartID], m)
	return m, nil
}

func (s *stubRepo) Movements(ctx context.Context, tenantID, partID int64) ([]Movement, error) {
	return s.movements[partID], nil
}

func (s *stubRepo) LowStock(ctx context.Context, tenantID int64) ([]Part, error) {
	var low []Part
	for _, p := range s.parts {
		if p.TenantID == tenantID && p.OnHand <= p.ReorderLevel {
			low = append(low, p)
		}
	}
	return low, nil
}

func seedPart(t *testing.T, service *Service) Part {
	t.Helper()
	part, err := service.Create(context.Background(), 1, CreatePartRequest{
		SKU:          "bmp-rr-042",
		Name:         "Rear bumper cover",
		UnitPrice:    420,
		ReorderLevel: 2,
	})
	require.NoError(t, err)
	return part
}

func TestCreateNormalisesSKU(t *testing.T) {
	service := NewService(newStubRepo())

	part := seedPart(t, service)

	require.Equal(t, "BMP-RR-042", part.SKU)
	require.Zero(t, part.OnHand)
}

func TestReceiptIncreasesStock(t *testing.T) {
	service := NewService(newStubRepo())
	part := seedPart(t, service)

	movement, err := service.MoveStock(context.Background(), 1, part.ID, 42, MoveStockRequest{
		Type: MovementReceipt, Quantity: 5,
	})
	require.NoError(t, err)
	require.InDelta(t, 5, movement.Balance, 1e-9)

	stored, err := service.Get(context.Background(), 1, part.ID)
	require.NoError(t, err)
	require.InDelta(t, 5, stored.OnHand, 1e-9)
}

func TestIssueBelowZeroRejected(t *testing.T) {
	service := NewService(newStubRepo())
	part := seedPart(t, service)

	_, err := service.MoveStock(context.Background(), 1, part.ID, 42, MoveStockRequest{
		Type: MovementReceipt, Quantity: 3,
	})
	require.NoError(t, err)

	_, err = service.MoveStock(context.Background(), 1, part.ID, 42, MoveStockRequest{
		Type: MovementIssue, Quantity: 4,
	})
	require.ErrorIs(t, err, httpx.ErrConflict)

	// The failed issue must not touch the balance.
	stored, err := service.Get(context.Background(), 1, part.ID)
	require.NoError(t, err)
	require.InDelta(t, 3, stored.OnHand, 1e-9)
}

func TestAdjustmentCarriesSignedDelta(t *testing.T) {
	service := NewService(newStubRepo())
	part := seedPart(t, service)

	_, err := service.MoveStock(context.Background(), 1, part.ID, 42, MoveStockRequest{
		Type: MovementReceipt, Quantity: 10,
	})
	require.NoError(t, err)

	movement, err := service.MoveStock(context.Background(), 1, part.ID, 42, MoveStockRequest{
		Type: MovementAdjustment, Quantity: -2, Reference: ptr("stocktake"),
	})
	require.NoError(t, err)
	require.InDelta(t, 8, movement.Balance, 1e-9)
}

func TestIssueRequiresPositiveQuantity(t *testing.T) {
	service := NewService(newStubRepo())
	part := seedPart(t, service)

	_, err := service.MoveStock(context.Background(), 1, part.ID, 42, MoveStockRequest{
		Type: MovementIssue, Quantity: -1,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDuplicateSKURejected(t *testing.T) {
	service := NewService(newStubRepo())
	seedPart(t, service)

	_, err := service.Create(context.Background(), 1, CreatePartRequest{
		SKU: "BMP-RR-042", Name: "Duplicate", UnitPrice: 1,
	})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func ptr[T any](v T) *T { return &v }

var _ Repository = (*stubRepo)(nil)
