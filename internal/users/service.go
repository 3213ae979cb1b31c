package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/bodyworks/bodyworks/internal/authz"
	"github.com/bodyworks/bodyworks/internal/platform/httpx"
)

// Service handles user management business logic.
type Service struct {
	repo  RepositoryPort
	authz *authz.Service
}

// NewService builds a Service instance. The authz service is used to drop
// cached policies when a principal's access changes.
func NewService(repo RepositoryPort, authzService *authz.Service) *Service {
	return &Service{repo: repo, authz: authzService}
}

// List returns all users of a tenant with their role names attached.
func (s *Service) List(ctx context.Context, tenantID int64) ([]User, error) {
	users, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for i := range users {
		roles, err := s.repo.ListRoles(ctx, tenantID, users[i].ID)
		if err != nil {
			return nil, err
		}
		users[i].Roles = roles
	}
	return users, nil
}

// Get fetches one user with roles.
func (s *Service) Get(ctx context.Context, tenantID, id int64) (User, error) {
	user, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return User{}, err
	}
	roles, err := s.repo.ListRoles(ctx, tenantID, id)
	if err != nil {
		return User{}, err
	}
	user.Roles = roles
	return user, nil
}

// Create provisions an account inside the tenant.
func (s *Service) Create(ctx context.Context, tenantID int64, req CreateUserRequest) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	return s.repo.Create(ctx, tenantID, email, strings.TrimSpace(req.Name), string(hash))
}

// Deactivate disables an account. The record is kept.
func (s *Service) Deactivate(ctx context.Context, tenantID, id int64) error {
	return s.repo.SetActive(ctx, tenantID, id, false)
}

// Reactivate re-enables an account.
func (s *Service) Reactivate(ctx context.Context, tenantID, id int64) error {
	return s.repo.SetActive(ctx, tenantID, id, true)
}

// AssignRole adds a tenant-scoped role to a user. Super-admin is a global
// role and cannot be granted through tenant administration.
func (s *Service) AssignRole(ctx context.Context, tenantID, userID int64, role string) error {
	role = strings.TrimSpace(strings.ToLower(role))
	if role == "" {
		return fmt.Errorf("%w: role required", httpx.ErrValidation)
	}
	if role == authz.RoleSuperAdmin {
		return fmt.Errorf("%w: super_admin cannot be tenant-scoped", httpx.ErrValidation)
	}
	if err := s.repo.AddRole(ctx, tenantID, userID, role); err != nil {
		return err
	}
	s.authz.InvalidatePolicy(ctx, tenantID, userID)
	return nil
}

// RemoveRole drops a tenant-scoped role from a user.
func (s *Service) RemoveRole(ctx context.Context, tenantID, userID int64, role string) error {
	if err := s.repo.RemoveRole(ctx, tenantID, userID, strings.TrimSpace(strings.ToLower(role))); err != nil {
		return err
	}
	s.authz.InvalidatePolicy(ctx, tenantID, userID)
	return nil
}
