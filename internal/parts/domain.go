// Package parts manages the spare parts catalogue and stock levels via an
// append-only movement ledger.
package parts

import "time"

// MovementType classifies a stock movement.
type MovementType string

const (
	MovementReceipt    MovementType = "RECEIPT"
	MovementIssue      MovementType = "ISSUE"
	MovementAdjustment MovementType = "ADJUSTMENT"
)

// ValidMovementType reports whether t is a known movement type.
func ValidMovementType(t MovementType) bool {
	switch t {
	case MovementReceipt, MovementIssue, MovementAdjustment:
		return true
	}
	return false
}

// Part is one catalogue entry with its current stock balance.
type Part struct {
	ID           int64     `json:"id"`
	TenantID     int64     `json:"tenant_id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	UnitPrice    float64   `json:"unit_price"`
	ReorderLevel float64   `json:"reorder_level"`
	OnHand       float64   `json:"on_hand"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Movement is one ledger entry. Quantity is positive for RECEIPT and
// ISSUE; ADJUSTMENT carries a signed delta.
type Movement struct {
	ID        int64        `json:"id"`
	PartID    int64        `json:"part_id"`
	Type      MovementType `json:"type"`
	Quantity  float64      `json:"quantity"`
	JobCardID *int64       `json:"job_card_id,omitempty"`
	Reference *string      `json:"reference,omitempty"`
	MovedBy   int64        `json:"moved_by"`
	Balance   float64      `json:"balance"`
	MovedAt   time.Time    `json:"moved_at"`
}

// Delta returns the signed stock change of a movement.
func (m Movement) Delta() float64 {
	switch m.Type {
	case MovementIssue:
		return -m.Quantity
	default:
		return m.Quantity
	}
}
