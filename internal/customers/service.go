package customers

import (
	"context"
	"strings"
)

// Service handles customer business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns customers with the unpaged total.
func (s *Service) List(ctx context.Context, tenantID int64, filters ListFilters) ([]Customer, int, error) {
	return s.repo.List(ctx, tenantID, filters)
}

// Get fetches one customer.
func (s *Service) Get(ctx context.Context, tenantID, id int64) (Customer, error) {
	return s.repo.Get(ctx, tenantID, id)
}

// Create records a new customer.
func (s *Service) Create(ctx context.Context, tenantID int64, req CreateCustomerRequest) (Customer, error) {
	return s.repo.Insert(ctx, Customer{
		TenantID: tenantID,
		Name:     strings.TrimSpace(req.Name),
		Email:    normalizeEmail(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
		Address:  req.Address,
		Notes:    req.Notes,
	})
}

// Update applies a partial update on top of the stored record.
func (s *Service) Update(ctx context.Context, tenantID, id int64, req UpdateCustomerRequest) (Customer, error) {
	existing, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return Customer{}, err
	}
	if req.Name != nil {
		existing.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		existing.Email = normalizeEmail(req.Email)
	}
	if req.Phone != nil {
		existing.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		existing.Address = req.Address
	}
	if req.Notes != nil {
		existing.Notes = req.Notes
	}
	return s.repo.Update(ctx, existing)
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	normalized := strings.TrimSpace(strings.ToLower(*email))
	if normalized == "" {
		return nil
	}
	return &normalized
}
