package authz

import (
	"fmt"

	"github.com/bodyworks/bodyworks/internal/modules"
	"github.com/bodyworks/bodyworks/internal/platform/httpx"
)

// Action names one of the four permission booleans.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// ValidAction reports whether a names a known action.
func ValidAction(a Action) bool {
	switch a {
	case ActionView, ActionCreate, ActionEdit, ActionDelete:
		return true
	}
	return false
}

// Grid is the in-flight permission matrix edited by an administrator before
// it is saved as module_permissions rows.
type Grid map[modules.ID]Grant

// NewGrid builds a grid from stored rows.
func NewGrid(rows []ModulePermission) Grid {
	g := make(Grid, len(rows))
	for _, row := range rows {
		g[row.Module] = row.Grant
	}
	return g
}

// Toggle flips one boolean. Enabling create, edit or delete force-enables
// view for the same module; this rule lives here, at the point of toggling,
// and is deliberately not a stored invariant.
func (g Grid) Toggle(id modules.ID, action Action, enabled bool) {
	grant := g[id]
	switch action {
	case ActionView:
		grant.CanView = enabled
	case ActionCreate:
		grant.CanCreate = enabled
	case ActionEdit:
		grant.CanEdit = enabled
	case ActionDelete:
		grant.CanDelete = enabled
	}
	if enabled && action != ActionView {
		grant.CanView = true
	}
	g[id] = grant
}

// ApplyPreset applies the same grant combination to every catalog module.
func (g Grid) ApplyPreset(grant Grant) {
	for _, mod := range modules.Catalog() {
		g[mod.ID] = grant
	}
}

// ToggleColumn sets one action across every catalog module.
func (g Grid) ToggleColumn(action Action, enabled bool) {
	for _, mod := range modules.Catalog() {
		g.Toggle(mod.ID, action, enabled)
	}
}

// RoleTemplate bundles modules with fixed grants matching a job-role
// archetype.
type RoleTemplate struct {
	Name    string
	Modules map[modules.ID]Grant
}

var roleTemplates = map[string]RoleTemplate{
	"technician": {
		Name: "Technician",
		Modules: map[modules.ID]Grant{
			modules.Workshop:      {CanView: true, CanCreate: true, CanEdit: true},
			modules.TechnicianTab: {CanView: true, CanCreate: true, CanEdit: true},
			modules.Consumables:   {CanView: true, CanCreate: true, CanEdit: true},
		},
	},
	"service_advisor": {
		Name: "Service Advisor",
		Modules: map[modules.ID]Grant{
			modules.Dashboard:     {CanView: true},
			modules.Customers:     {CanView: true, CanCreate: true, CanEdit: true},
			modules.Appointments:  {CanView: true, CanCreate: true, CanEdit: true},
			modules.Vehicles:      {CanView: true, CanCreate: true, CanEdit: true},
			modules.VehicleIntake: {CanView: true, CanCreate: true, CanEdit: true},
			modules.Quotations:    {CanView: true, CanCreate: true, CanEdit: true},
			modules.Invoices:      {CanView: true},
		},
	},
	"parts_manager": {
		Name: "Parts Manager",
		Modules: map[modules.ID]Grant{
			modules.PartsCatalogue: {CanView: true, CanCreate: true, CanEdit: true, CanDelete: true},
			modules.Inventory:      {CanView: true, CanCreate: true, CanEdit: true, CanDelete: true},
			modules.Consumables:    {CanView: true, CanCreate: true, CanEdit: true, CanDelete: true},
			modules.PurchaseOrders: {CanView: true, CanCreate: true, CanEdit: true},
			modules.Suppliers:      {CanView: true, CanCreate: true, CanEdit: true},
		},
	},
	"receptionist": {
		Name: "Receptionist",
		Modules: map[modules.ID]Grant{
			modules.Dashboard:    {CanView: true},
			modules.Visitors:     {CanView: true, CanCreate: true, CanEdit: true},
			modules.Appointments: {CanView: true, CanCreate: true},
			modules.Customers:    {CanView: true, CanCreate: true},
		},
	},
}

// TemplateNames lists available role templates.
func TemplateNames() []string {
	names := make([]string, 0, len(roleTemplates))
	for name := range roleTemplates {
		names = append(names, name)
	}
	return names
}

// ApplyTemplate returns a full grid for a named template: the template's
// modules carry its grants, every other catalog module an all-false grant.
func ApplyTemplate(name string) (Grid, error) {
	tpl, ok := roleTemplates[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown role template %q", httpx.ErrValidation, name)
	}
	g := make(Grid, len(modules.Catalog()))
	for _, mod := range modules.Catalog() {
		g[mod.ID] = tpl.Modules[mod.ID]
	}
	return g, nil
}
