// Package vehicles tracks customer vehicles and their repair history.
package vehicles

import "time"

// Vehicle is one vehicle record, owned by a customer within a tenant.
type Vehicle struct {
	ID         int64     `json:"id"`
	TenantID   int64     `json:"tenant_id"`
	CustomerID int64     `json:"customer_id"`
	Plate      string    `json:"plate"`
	VIN        *string   `json:"vin,omitempty"`
	Make       string    `json:"make"`
	Model      string    `json:"model"`
	Year       int       `json:"year"`
	Color      *string   `json:"color,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HistoryEntry is one past or current workshop visit of a vehicle.
type HistoryEntry struct {
	JobCardID   int64      `json:"job_card_id"`
	DocNumber   string     `json:"doc_number"`
	Stage       string     `json:"stage"`
	OpenedAt    time.Time  `json:"opened_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

// CreateVehicleRequest registers a vehicle.
type CreateVehicleRequest struct {
	CustomerID int64   `json:"customer_id" validate:"required,gt=0"`
	Plate      string  `json:"plate" validate:"required,max=20"`
	VIN        *string `json:"vin,omitempty" validate:"omitempty,len=17"`
	Make       string  `json:"make" validate:"required,max=60"`
	Model      string  `json:"model" validate:"required,max=60"`
	Year       int     `json:"year" validate:"required,gte=1950,lte=2100"`
	Color      *string `json:"color,omitempty" validate:"omitempty,max=40"`
}
