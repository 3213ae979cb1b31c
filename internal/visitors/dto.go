package visitors

import "time"

// CheckInRequest registers a walk-in visitor and issues a badge.
type CheckInRequest struct {
	Name       string  `json:"name" validate:"required,max=120"`
	Phone      string  `json:"phone" validate:"required,max=30"`
	Company    *string `json:"company,omitempty" validate:"omitempty,max=120"`
	Purpose    string  `json:"purpose" validate:"required,max=200"`
	HostUserID *int64  `json:"host_user_id,omitempty" validate:"omitempty,gt=0"`
}

// SubmitRequestRequest is the single wizard submission for a visit request.
type SubmitRequestRequest struct {
	Name        string    `json:"name" validate:"required,max=120"`
	Phone       string    `json:"phone" validate:"required,max=30"`
	Email       *string   `json:"email,omitempty" validate:"omitempty,email"`
	Plate       *string   `json:"plate,omitempty" validate:"omitempty,max=20"`
	Description string    `json:"description" validate:"required,max=1000"`
	PreferredAt time.Time `json:"preferred_at" validate:"required"`
}

// ReviewRequest approves or declines a pending visit request. Approval
// books the appointment at scheduled_at, defaulting to the requested slot.
type ReviewRequest struct {
	Approve     bool       `json:"approve"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}
