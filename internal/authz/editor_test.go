package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bodyworks/bodyworks/internal/modules"
)

func TestToggleCreateForcesView(t *testing.T) {
	grid := Grid{}
	grid.Toggle(modules.Quotations, ActionCreate, true)
	require.Equal(t, Grant{CanView: true, CanCreate: true}, grid[modules.Quotations])

	// Idempotent: re-toggling create with view already set leaves view set.
	grid.Toggle(modules.Quotations, ActionCreate, true)
	require.Equal(t, Grant{CanView: true, CanCreate: true}, grid[modules.Quotations])
}

func TestToggleEditAndDeleteForceView(t *testing.T) {
	for _, action := range []Action{ActionEdit, ActionDelete} {
		grid := Grid{}
		grid.Toggle(modules.Workshop, action, true)
		require.True(t, grid[modules.Workshop].CanView, "action %s must force view", action)
	}
}

func TestToggleDisableDoesNotTouchView(t *testing.T) {
	grid := Grid{modules.Workshop: {CanView: true, CanCreate: true}}
	grid.Toggle(modules.Workshop, ActionCreate, false)
	require.Equal(t, Grant{CanView: true}, grid[modules.Workshop])
}

func TestTechnicianTemplateExactGrants(t *testing.T) {
	grid, err := ApplyTemplate("technician")
	require.NoError(t, err)

	granted := map[modules.ID]bool{
		modules.Workshop:      true,
		modules.TechnicianTab: true,
		modules.Consumables:   true,
	}
	for _, mod := range modules.Catalog() {
		if granted[mod.ID] {
			require.Equal(t, Grant{CanView: true, CanCreate: true, CanEdit: true}, grid[mod.ID],
				"module %s", mod.ID)
			continue
		}
		require.Equal(t, Grant{}, grid[mod.ID], "module %s must be all-false", mod.ID)
	}
	require.Len(t, grid, len(modules.Catalog()))
}

func TestApplyTemplateUnknown(t *testing.T) {
	_, err := ApplyTemplate("astronaut")
	require.Error(t, err)
}

func TestApplyPresetCoversCatalog(t *testing.T) {
	grid := Grid{}
	grid.ApplyPreset(Grant{CanView: true, CanEdit: true})
	require.Len(t, grid, len(modules.Catalog()))
	for id, grant := range grid {
		require.Equal(t, Grant{CanView: true, CanEdit: true}, grant, "module %s", id)
	}
}

func TestToggleColumnForcesViewPerModule(t *testing.T) {
	grid := Grid{}
	grid.ToggleColumn(ActionDelete, true)
	for _, mod := range modules.Catalog() {
		require.True(t, grid[mod.ID].CanDelete)
		require.True(t, grid[mod.ID].CanView, "bulk delete toggle must force view on %s", mod.ID)
	}
}
