// Package tenants manages the isolated organizational scopes the rest of
// the application partitions data by.
package tenants

import "time"

// Tenant is one organization (body shop) using the platform.
type Tenant struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
