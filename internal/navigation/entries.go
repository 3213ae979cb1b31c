// Package navigation declares the application menu and filters it against
// the caller's access flags and permission policy.
package navigation

import "github.com/bodyworks/bodyworks/internal/modules"

// Entry is one menu item, tagged with the module that gates it.
type Entry struct {
	Label  string     `json:"label"`
	Path   string     `json:"path"`
	Icon   string     `json:"icon"`
	Module modules.ID `json:"module"`
}

// Group is a named menu section.
type Group struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// Groups returns the permission-filtered sections in display order.
func Groups() []Group {
	return []Group{
		{Name: "Main", Entries: []Entry{
			{"Dashboard", "/dashboard", "gauge", modules.Dashboard},
			{"Customers", "/customers", "users", modules.Customers},
			{"Appointments", "/appointments", "calendar", modules.Appointments},
			{"Visitors", "/visitors", "id-badge", modules.Visitors},
		}},
		{Name: "Operations", Entries: []Entry{
			{"Quotations", "/quotations", "file-text", modules.Quotations},
			{"Workshop", "/workshop", "wrench", modules.Workshop},
			{"Technician Tablet", "/technician", "tablet", modules.TechnicianTab},
			{"QC Inspections", "/qc", "check-square", modules.QCInspections},
			{"Towing", "/towing", "truck", modules.Towing},
		}},
		{Name: "Parts & Inventory", Entries: []Entry{
			{"Parts Catalogue", "/parts", "package", modules.PartsCatalogue},
			{"Inventory", "/inventory", "boxes", modules.Inventory},
			{"Consumables", "/consumables", "droplet", modules.Consumables},
			{"Purchase Orders", "/purchase-orders", "shopping-cart", modules.PurchaseOrders},
			{"Suppliers", "/suppliers", "factory", modules.Suppliers},
		}},
		{Name: "Vehicles", Entries: []Entry{
			{"Vehicles", "/vehicles", "car", modules.Vehicles},
			{"Vehicle Intake", "/vehicle-intake", "clipboard", modules.VehicleIntake},
			{"Vehicle History", "/vehicle-history", "history", modules.VehicleHistory},
		}},
		{Name: "Insurance & Claims", Entries: []Entry{
			{"Insurance Companies", "/insurance-companies", "shield", modules.InsuranceFirms},
			{"Claims", "/claims", "file-check", modules.Claims},
			{"Assessments", "/assessments", "search", modules.Assessments},
		}},
		{Name: "System", Entries: []Entry{
			{"Invoices", "/invoices", "receipt", modules.Invoices},
			{"Payments", "/payments", "credit-card", modules.Payments},
			{"Reports", "/reports", "bar-chart", modules.Reports},
			{"Notifications", "/notifications", "bell", modules.Notifications},
			{"Settings", "/settings", "settings", modules.Settings},
			{"Audit Log", "/audit-log", "scroll", modules.AuditLog},
		}},
		{Name: "Workshop Settings", Entries: []Entry{
			{"Workshop Stages", "/workshop-stages", "layers", modules.WorkshopStages},
			{"QC Checklists", "/qc-checklists", "list-checks", modules.QCChecklists},
			{"Labor Rates", "/labor-rates", "timer", modules.LaborRates},
			{"Paint Codes", "/paint-codes", "palette", modules.PaintCodes},
		}},
	}
}

// AdminGroup is gated by admin access alone, never by module permissions.
func AdminGroup() Group {
	return Group{Name: "Admin", Entries: []Entry{
		{Label: "User Management", Path: "/admin/users", Icon: "user-cog"},
		{Label: "Permissions", Path: "/admin/permissions", Icon: "key"},
	}}
}

// SuperAdminGroup is gated by the super-admin flag alone.
func SuperAdminGroup() Group {
	return Group{Name: "Super Admin", Entries: []Entry{
		{Label: "Tenant Management", Path: "/admin/tenants", Icon: "building"},
	}}
}
