package tenants

import (
	"context"
	"fmt"
	"strings"
)

// Service handles tenant business logic.
type Service struct {
	repo *Repository
}

// NewService builds a Service instance.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// List returns all tenants.
func (s *Service) List(ctx context.Context) ([]Tenant, error) {
	return s.repo.List(ctx)
}

// Get fetches a tenant.
func (s *Service) Get(ctx context.Context, id int64) (Tenant, error) {
	return s.repo.Get(ctx, id)
}

// Provision creates a new tenant.
func (s *Service) Provision(ctx context.Context, req CreateTenantRequest) (Tenant, error) {
	name := strings.TrimSpace(req.Name)
	slug := strings.TrimSpace(strings.ToLower(req.Slug))
	tenant, err := s.repo.Create(ctx, name, slug)
	if err != nil {
		return Tenant{}, fmt.Errorf("provision tenant: %w", err)
	}
	return tenant, nil
}

// Rename updates the tenant display name.
func (s *Service) Rename(ctx context.Context, id int64, name string) (Tenant, error) {
	return s.repo.Rename(ctx, id, strings.TrimSpace(name))
}

// Deactivate disables a tenant without removing its data.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, false)
}

// Reactivate re-enables a tenant.
func (s *Service) Reactivate(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, true)
}
