// Package visitors handles front-desk check-in with badge issuance and the
// public visit request flow that feeds appointments.
package visitors

import (
	"time"

	"github.com/google/uuid"
)

// Visit is one front-desk visit. A badge UUID is issued at check-in and
// surrendered at check-out.
type Visit struct {
	ID           int64      `json:"id"`
	TenantID     int64      `json:"tenant_id"`
	Badge        uuid.UUID  `json:"badge"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Company      *string    `json:"company,omitempty"`
	Purpose      string     `json:"purpose"`
	HostUserID   *int64     `json:"host_user_id,omitempty"`
	CheckedInAt  time.Time  `json:"checked_in_at"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
}

// RequestStatus is the lifecycle state of a visit request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestDeclined RequestStatus = "DECLINED"
)

// VisitRequest is a customer's ask for an appointment slot, submitted once
// through the request wizard and reviewed by staff.
type VisitRequest struct {
	ID          int64         `json:"id"`
	TenantID    int64         `json:"tenant_id"`
	Name        string        `json:"name"`
	Phone       string        `json:"phone"`
	Email       *string       `json:"email,omitempty"`
	Plate       *string       `json:"plate,omitempty"`
	Description string        `json:"description"`
	PreferredAt time.Time     `json:"preferred_at"`
	Status      RequestStatus `json:"status"`
	ReviewedBy  *int64        `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time    `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Appointment is a confirmed slot created from an approved visit request.
type Appointment struct {
	ID             int64     `json:"id"`
	TenantID       int64     `json:"tenant_id"`
	VisitRequestID int64     `json:"visit_request_id"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	CreatedBy      int64     `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}
