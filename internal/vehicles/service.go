package vehicles

import (
	"context"
	"strings"
)

// Service handles vehicle business logic.
type Service struct {
	repo *Repository
}

// NewService builds a Service instance.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// ListByCustomer returns a customer's vehicles.
func (s *Service) ListByCustomer(ctx context.Context, tenantID, customerID int64) ([]Vehicle, error) {
	return s.repo.ListByCustomer(ctx, tenantID, customerID)
}

// Get fetches one vehicle.
func (s *Service) Get(ctx context.Context, tenantID, id int64) (Vehicle, error) {
	return s.repo.Get(ctx, tenantID, id)
}

// FindByPlate locates a vehicle by registration plate, case-insensitively.
func (s *Service) FindByPlate(ctx context.Context, tenantID int64, plate string) (Vehicle, error) {
	return s.repo.FindByPlate(ctx, tenantID, strings.TrimSpace(plate))
}

// Create registers a vehicle against a customer.
func (s *Service) Create(ctx context.Context, tenantID int64, req CreateVehicleRequest) (Vehicle, error) {
	return s.repo.Insert(ctx, Vehicle{
		TenantID:   tenantID,
		CustomerID: req.CustomerID,
		Plate:      strings.TrimSpace(req.Plate),
		VIN:        req.VIN,
		Make:       strings.TrimSpace(req.Make),
		Model:      strings.TrimSpace(req.Model),
		Year:       req.Year,
		Color:      req.Color,
	})
}

// History lists the vehicle's workshop visits, newest first.
func (s *Service) History(ctx context.Context, tenantID, vehicleID int64) ([]HistoryEntry, error) {
	if _, err := s.repo.Get(ctx, tenantID, vehicleID); err != nil {
		return nil, err
	}
	return s.repo.History(ctx, tenantID, vehicleID)
}
