package tenants

// CreateTenantRequest is the payload for provisioning a tenant.
type CreateTenantRequest struct {
	Name string `json:"name" validate:"required,max=120"`
	Slug string `json:"slug" validate:"required,max=60,lowercase"`
}

// UpdateTenantRequest is the payload for renaming a tenant.
type UpdateTenantRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,max=120"`
}
