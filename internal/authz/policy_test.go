package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bodyworks/bodyworks/internal/modules"
)

func TestNewPolicyEmptyIsUnrestricted(t *testing.T) {
	policy := NewPolicy(nil)
	require.Equal(t, PolicyUnrestricted, policy.Kind())
	for _, mod := range modules.Catalog() {
		require.True(t, policy.CanView(mod.ID), "module %s should fail open", mod.ID)
	}
}

func TestNewPolicyEnforced(t *testing.T) {
	policy := NewPolicy([]ModulePermission{
		{Module: modules.Quotations, Grant: Grant{CanView: true}},
		{Module: modules.Claims, Grant: Grant{CanView: false, CanEdit: true}},
	})
	require.Equal(t, PolicyEnforced, policy.Kind())
	require.True(t, policy.CanView(modules.Quotations))
	// An explicit row without can_view denies visibility even when other
	// grants are set.
	require.False(t, policy.CanView(modules.Claims))
	// No row at all denies under the enforced policy.
	require.False(t, policy.CanView(modules.Workshop))
}

func TestPolicyUnknownModuleRowIsInert(t *testing.T) {
	policy := NewPolicy([]ModulePermission{
		{Module: modules.ID("retired_module"), Grant: Grant{CanView: true}},
		{Module: modules.Quotations, Grant: Grant{CanView: true}},
	})
	require.True(t, policy.CanView(modules.Quotations))
	require.False(t, policy.CanView(modules.Workshop))
}

func TestUnrestrictedGrantIsFull(t *testing.T) {
	grant := Unrestricted().Grant(modules.Settings)
	require.Equal(t, Grant{CanView: true, CanCreate: true, CanEdit: true, CanDelete: true}, grant)
}
