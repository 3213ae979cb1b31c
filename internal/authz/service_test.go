package authz

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/bodyworks/bodyworks/internal/modules"
)

type stubRepo struct {
	assignments []RoleAssignment
	permissions []ModulePermission
	listErr     error
	permErr     error
	permCalls   int
	replaced    map[modules.ID]Grant
}

func (s *stubRepo) ListAssignments(ctx context.Context, principalID int64) ([]RoleAssignment, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.assignments, nil
}

func (s *stubRepo) ListPermissions(ctx context.Context, tenantID, principalID int64) ([]ModulePermission, error) {
	s.permCalls++
	if s.permErr != nil {
		return nil, s.permErr
	}
	return s.permissions, nil
}

func (s *stubRepo) ReplacePermissions(ctx context.Context, tenantID, principalID int64, grants map[modules.ID]Grant) error {
	s.replaced = grants
	return nil
}

func newTestService(t *testing.T, repo Repository) (*Service, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewService(repo, client, slog.Default()), client
}

func TestResolveNoAssignments(t *testing.T) {
	svc, _ := newTestService(t, &stubRepo{})
	access, err := svc.Resolve(context.Background(), 7)
	require.NoError(t, err)
	require.False(t, access.IsSuperAdmin)
	require.False(t, access.IsTenantAdmin)
	require.False(t, access.HasAdminAccess())
}

func TestResolveElevationFlags(t *testing.T) {
	svc, _ := newTestService(t, &stubRepo{assignments: []RoleAssignment{
		{PrincipalID: 7, Scope: ScopeTenant, Role: "manager"},
		{PrincipalID: 7, TenantID: 3, Scope: ScopeTenant, Role: RoleAdmin},
	}})
	access, err := svc.Resolve(context.Background(), 7)
	require.NoError(t, err)
	require.False(t, access.IsSuperAdmin)
	require.True(t, access.IsTenantAdmin)
	require.True(t, access.HasAdminAccess())
}

func TestResolveSuperAdminRequiresGlobalScope(t *testing.T) {
	svc, _ := newTestService(t, &stubRepo{assignments: []RoleAssignment{
		{PrincipalID: 7, Scope: ScopeTenant, Role: RoleSuperAdmin},
	}})
	access, err := svc.Resolve(context.Background(), 7)
	require.NoError(t, err)
	require.False(t, access.IsSuperAdmin)
}

func TestLoadPolicyFailureFailsOpen(t *testing.T) {
	svc, _ := newTestService(t, &stubRepo{permErr: errors.New("connection refused")})
	policy, err := svc.LoadPolicy(context.Background(), 3, 7)
	require.Error(t, err)
	require.Equal(t, PolicyUnrestricted, policy.Kind())
	require.True(t, policy.CanView(modules.Settings))
}

func TestLoadPolicyCachesRows(t *testing.T) {
	repo := &stubRepo{permissions: []ModulePermission{
		{PrincipalID: 7, TenantID: 3, Module: modules.Quotations, Grant: Grant{CanView: true}},
	}}
	svc, _ := newTestService(t, repo)

	first, err := svc.LoadPolicy(context.Background(), 3, 7)
	require.NoError(t, err)
	require.Equal(t, PolicyEnforced, first.Kind())

	second, err := svc.LoadPolicy(context.Background(), 3, 7)
	require.NoError(t, err)
	require.Equal(t, PolicyEnforced, second.Kind())
	require.Equal(t, 1, repo.permCalls, "second load should hit the cache")
}

func TestSavePermissionsInvalidatesCache(t *testing.T) {
	repo := &stubRepo{permissions: []ModulePermission{
		{PrincipalID: 7, TenantID: 3, Module: modules.Quotations, Grant: Grant{CanView: true}},
	}}
	svc, _ := newTestService(t, repo)

	_, err := svc.LoadPolicy(context.Background(), 3, 7)
	require.NoError(t, err)
	require.Equal(t, 1, repo.permCalls)

	err = svc.SavePermissions(context.Background(), 3, 7, map[modules.ID]Grant{
		modules.Quotations: {CanView: true, CanCreate: true},
	})
	require.NoError(t, err)
	require.NotNil(t, repo.replaced)

	_, err = svc.LoadPolicy(context.Background(), 3, 7)
	require.NoError(t, err)
	require.Equal(t, 2, repo.permCalls, "save must invalidate the cached policy")
}

func TestSavePermissionsRejectsUnknownModule(t *testing.T) {
	svc, _ := newTestService(t, &stubRepo{})
	err := svc.SavePermissions(context.Background(), 3, 7, map[modules.ID]Grant{
		"time_travel": {CanView: true},
	})
	require.Error(t, err)
}
