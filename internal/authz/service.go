package authz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bodyworks/bodyworks/internal/modules"
	"github.com/bodyworks/bodyworks/internal/platform/httpx"
)

const policyCacheTTL = 5 * time.Minute

// Service resolves elevation flags and permission policies.
type Service struct {
	repo   Repository
	cache  *redis.Client
	logger *slog.Logger
}

// NewService constructs a Service. The cache client is optional; without it
// every lookup goes to the repository.
func NewService(repo Repository, cache *redis.Client, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Resolve derives the elevation flags for a principal. A principal with no
// role assignments resolves to the zero Access without error.
func (s *Service) Resolve(ctx context.Context, principalID int64) (Access, error) {
	assignments, err := s.repo.ListAssignments(ctx, principalID)
	if err != nil {
		return Access{}, fmt.Errorf("authz: list assignments: %w", err)
	}
	var access Access
	for _, a := range assignments {
		switch {
		case a.Scope == ScopeGlobal && a.Role == RoleSuperAdmin:
			access.IsSuperAdmin = true
		case a.Scope == ScopeTenant && a.Role == RoleAdmin:
			access.IsTenantAdmin = true
		}
	}
	return access, nil
}

// LoadPolicy returns the permission policy for a principal in a tenant.
// A repository failure degrades to the unrestricted policy alongside the
// error so callers can log and keep rendering; permission lookups never
// lock a tenant out.
func (s *Service) LoadPolicy(ctx context.Context, tenantID, principalID int64) (Policy, error) {
	if rows, ok := s.cachedPermissions(ctx, tenantID, principalID); ok {
		return NewPolicy(rows), nil
	}
	rows, err := s.repo.ListPermissions(ctx, tenantID, principalID)
	if err != nil {
		return Unrestricted(), fmt.Errorf("authz: list permissions: %w", err)
	}
	s.storePermissions(ctx, tenantID, principalID, rows)
	return NewPolicy(rows), nil
}

// Permissions returns the raw stored rows for the editor grid.
func (s *Service) Permissions(ctx context.Context, tenantID, principalID int64) ([]ModulePermission, error) {
	return s.repo.ListPermissions(ctx, tenantID, principalID)
}

// SavePermissions replaces the permission grid for a principal and
// invalidates the cached policy. Unknown module identifiers are rejected;
// the catalog is the single source of module names.
func (s *Service) SavePermissions(ctx context.Context, tenantID, principalID int64, grants map[modules.ID]Grant) error {
	for id := range grants {
		if !modules.Valid(id) {
			return fmt.Errorf("%w: unknown module %q", httpx.ErrValidation, id)
		}
	}
	if err := s.repo.ReplacePermissions(ctx, tenantID, principalID, grants); err != nil {
		return fmt.Errorf("authz: replace permissions: %w", err)
	}
	s.InvalidatePolicy(ctx, tenantID, principalID)
	return nil
}

// InvalidatePolicy drops the cached policy for a principal. Called after a
// permission edit and on principal change.
func (s *Service) InvalidatePolicy(ctx context.Context, tenantID, principalID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.policyKey(tenantID, principalID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Warn("authz invalidate policy", slog.Any("error", err))
	}
}

func (s *Service) policyKey(tenantID, principalID int64) string {
	return fmt.Sprintf("authz:policy:%d:%d", tenantID, principalID)
}

func (s *Service) cachedPermissions(ctx context.Context, tenantID, principalID int64) ([]ModulePermission, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, s.policyKey(tenantID, principalID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("authz policy cache read", slog.Any("error", err))
		}
		return nil, false
	}
	var rows []ModulePermission
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, false
	}
	return rows, true
}

func (s *Service) storePermissions(ctx context.Context, tenantID, principalID int64, rows []ModulePermission) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.policyKey(tenantID, principalID), data, policyCacheTTL).Err(); err != nil {
		s.logger.Warn("authz policy cache write", slog.Any("error", err))
	}
}
