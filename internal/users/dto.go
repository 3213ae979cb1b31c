package users

// CreateUserRequest provisions a user inside the caller's tenant.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=120"`
	Password string `json:"password" validate:"required,min=10"`
}

// AssignRoleRequest adds a tenant-scoped role to a user.
type AssignRoleRequest struct {
	Role string `json:"role" validate:"required,max=40"`
}
