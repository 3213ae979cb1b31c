package navigation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bodyworks/bodyworks/internal/authz"
	"github.com/bodyworks/bodyworks/internal/modules"
)

func denyEverythingRows() []authz.ModulePermission {
	rows := make([]authz.ModulePermission, 0, len(modules.Catalog()))
	for _, mod := range modules.Catalog() {
		rows = append(rows, authz.ModulePermission{Module: mod.ID})
	}
	return rows
}

func TestSuperAdminSeesEverything(t *testing.T) {
	// Explicit can_view=false rows must not hide anything from a super admin.
	policy := authz.NewPolicy(denyEverythingRows())
	access := authz.Access{IsSuperAdmin: true}

	filtered := Filter(Groups(), access, policy)
	require.Equal(t, Groups(), filtered)
}

func TestTenantAdminSeesEverything(t *testing.T) {
	policy := authz.NewPolicy(denyEverythingRows())
	access := authz.Access{IsTenantAdmin: true}

	filtered := Filter(Groups(), access, policy)
	require.Equal(t, Groups(), filtered)
}

func TestEmptyPermissionSetFailsOpen(t *testing.T) {
	policy := authz.NewPolicy(nil)
	filtered := Filter(Groups(), authz.Access{}, policy)
	require.Equal(t, Groups(), filtered)
}

func TestEnforcedPolicyFiltersEntries(t *testing.T) {
	policy := authz.NewPolicy([]authz.ModulePermission{
		{Module: modules.Quotations, Grant: authz.Grant{CanView: true}},
	})

	groups := []Group{{Name: "Operations", Entries: []Entry{
		{Label: "Quotations", Path: "/quotations", Module: modules.Quotations},
		{Label: "Claims", Path: "/claims", Module: modules.Claims},
	}}}

	filtered := Filter(groups, authz.Access{}, policy)
	require.Len(t, filtered, 1)
	require.Len(t, filtered[0].Entries, 1)
	require.Equal(t, "Quotations", filtered[0].Entries[0].Label)
}

func TestGroupDroppedWhenEmpty(t *testing.T) {
	policy := authz.NewPolicy([]authz.ModulePermission{
		{Module: modules.Quotations, Grant: authz.Grant{CanView: true}},
	})

	filtered := Filter(Groups(), authz.Access{}, policy)
	require.Len(t, filtered, 1)
	require.Equal(t, "Operations", filtered[0].Name)
}

func TestFilterPreservesDeclaredOrder(t *testing.T) {
	policy := authz.NewPolicy([]authz.ModulePermission{
		{Module: modules.Towing, Grant: authz.Grant{CanView: true}},
		{Module: modules.Quotations, Grant: authz.Grant{CanView: true}},
		{Module: modules.Workshop, Grant: authz.Grant{CanView: true}},
	})

	filtered := Filter(Groups(), authz.Access{}, policy)
	require.Len(t, filtered, 1)
	labels := make([]string, 0, len(filtered[0].Entries))
	for _, e := range filtered[0].Entries {
		labels = append(labels, e.Label)
	}
	require.Equal(t, []string{"Quotations", "Workshop", "Towing"}, labels)
}

func TestMenuAdminGroupsBypassModulePermissions(t *testing.T) {
	policy := authz.NewPolicy(denyEverythingRows())

	ordinary := Menu(authz.Access{}, policy)
	for _, g := range ordinary {
		require.NotEqual(t, "Admin", g.Name)
		require.NotEqual(t, "Super Admin", g.Name)
	}

	tenantAdmin := Menu(authz.Access{IsTenantAdmin: true}, policy)
	require.Equal(t, "Admin", tenantAdmin[len(tenantAdmin)-1].Name)
	for _, g := range tenantAdmin {
		require.NotEqual(t, "Super Admin", g.Name)
	}

	superAdmin := Menu(authz.Access{IsSuperAdmin: true}, policy)
	require.Equal(t, "Super Admin", superAdmin[len(superAdmin)-1].Name)
	require.Equal(t, "Admin", superAdmin[len(superAdmin)-2].Name)
}
