package customers

// CreateCustomerRequest is the intake payload.
type CreateCustomerRequest struct {
	Name    string  `json:"name" validate:"required,max=160"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string  `json:"phone" validate:"required,max=40"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=400"`
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// UpdateCustomerRequest carries partial updates.
type UpdateCustomerRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=160"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=400"`
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}
