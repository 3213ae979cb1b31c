// Package modules defines the closed catalog of feature areas used as the unit
// of permission granularity. Permissions, navigation and the permission editor
// all reference this enumeration; adding a module is a code change, not a
// data migration.
package modules

// ID identifies one feature area of the application.
type ID string

const (
	Dashboard       ID = "dashboard"
	Customers       ID = "customers"
	Appointments    ID = "appointments"
	Visitors        ID = "visitors"
	Quotations      ID = "quotations"
	Workshop        ID = "workshop"
	TechnicianTab   ID = "technician_tablet"
	QCInspections   ID = "qc_inspections"
	Towing          ID = "towing"
	PartsCatalogue  ID = "parts_catalogue"
	Inventory       ID = "inventory"
	Consumables     ID = "consumables"
	PurchaseOrders  ID = "purchase_orders"
	Suppliers       ID = "suppliers"
	Vehicles        ID = "vehicles"
	VehicleIntake   ID = "vehicle_intake"
	VehicleHistory  ID = "vehicle_history"
	InsuranceFirms  ID = "insurance_companies"
	Claims          ID = "claims"
	Assessments     ID = "assessments"
	Invoices        ID = "invoices"
	Payments        ID = "payments"
	Reports         ID = "reports"
	Notifications   ID = "notifications"
	Settings        ID = "settings"
	AuditLog        ID = "audit_log"
	WorkshopStages  ID = "workshop_stages"
	QCChecklists    ID = "qc_checklists"
	LaborRates      ID = "labor_rates"
	PaintCodes      ID = "paint_codes"
)

// Category groups modules for presentation.
type Category string

const (
	CategoryMain             Category = "Main"
	CategoryOperations       Category = "Operations"
	CategoryPartsInventory   Category = "Parts & Inventory"
	CategoryVehicles         Category = "Vehicles"
	CategoryInsuranceClaims  Category = "Insurance & Claims"
	CategorySystem           Category = "System"
	CategoryWorkshopSettings Category = "Workshop Settings"
)

// Module is one catalog entry.
type Module struct {
	ID       ID       `json:"id"`
	Label    string   `json:"label"`
	Category Category `json:"category"`
}

var catalog = []Module{
	{Dashboard, "Dashboard", CategoryMain},
	{Customers, "Customers", CategoryMain},
	{Appointments, "Appointments", CategoryMain},
	{Visitors, "Visitors", CategoryMain},
	{Quotations, "Quotations", CategoryOperations},
	{Workshop, "Workshop", CategoryOperations},
	{TechnicianTab, "Technician Tablet", CategoryOperations},
	{QCInspections, "QC Inspections", CategoryOperations},
	{Towing, "Towing", CategoryOperations},
	{PartsCatalogue, "Parts Catalogue", CategoryPartsInventory},
	{Inventory, "Inventory", CategoryPartsInventory},
	{Consumables, "Consumables", CategoryPartsInventory},
	{PurchaseOrders, "Purchase Orders", CategoryPartsInventory},
	{Suppliers, "Suppliers", CategoryPartsInventory},
	{Vehicles, "Vehicles", CategoryVehicles},
	{VehicleIntake, "Vehicle Intake", CategoryVehicles},
	{VehicleHistory, "Vehicle History", CategoryVehicles},
	{InsuranceFirms, "Insurance Companies", CategoryInsuranceClaims},
	{Claims, "Claims", CategoryInsuranceClaims},
	{Assessments, "Assessments", CategoryInsuranceClaims},
	{Invoices, "Invoices", CategorySystem},
	{Payments, "Payments", CategorySystem},
	{Reports, "Reports", CategorySystem},
	{Notifications, "Notifications", CategorySystem},
	{Settings, "Settings", CategorySystem},
	{AuditLog, "Audit Log", CategorySystem},
	{WorkshopStages, "Workshop Stages", CategoryWorkshopSettings},
	{QCChecklists, "QC Checklists", CategoryWorkshopSettings},
	{LaborRates, "Labor Rates", CategoryWorkshopSettings},
	{PaintCodes, "Paint Codes", CategoryWorkshopSettings},
}

var index = func() map[ID]Module {
	m := make(map[ID]Module, len(catalog))
	for _, mod := range catalog {
		m[mod.ID] = mod
	}
	return m
}()

// Catalog returns every module in declared order.
func Catalog() []Module {
	out := make([]Module, len(catalog))
	copy(out, catalog)
	return out
}

// Valid reports whether id names a known module.
func Valid(id ID) bool {
	_, ok := index[id]
	return ok
}

// Lookup returns the catalog entry for id.
func Lookup(id ID) (Module, bool) {
	m, ok := index[id]
	return m, ok
}

// ByCategory returns the modules of one category, preserving declared order.
func ByCategory(c Category) []Module {
	var out []Module
	for _, m := range catalog {
		if m.Category == c {
			out = append(out, m)
		}
	}
	return out
}
