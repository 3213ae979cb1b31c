// Package workshop tracks job cards through the repair pipeline, from
// intake to delivery, with a stage history and QC inspections.
package workshop

import "time"

// Stage is one step of the fixed repair pipeline.
type Stage string

const (
	StageIntake       Stage = "INTAKE"
	StageDisassembly  Stage = "DISASSEMBLY"
	StagePanelBeating Stage = "PANEL_BEATING"
	StagePaint        Stage = "PAINT"
	StageReassembly   Stage = "REASSEMBLY"
	StageQC           Stage = "QC"
	StageReady        Stage = "READY"
	StageDelivered    Stage = "DELIVERED"
)

// StageSequence is the pipeline order. Cards only move forward one stage at
// a time, except a failed QC inspection which sends the card back to
// REASSEMBLY.
var StageSequence = []Stage{
	StageIntake,
	StageDisassembly,
	StagePanelBeating,
	StagePaint,
	StageReassembly,
	StageQC,
	StageReady,
	StageDelivered,
}

// NextStage returns the stage after s, or "" when s is terminal or unknown.
func NextStage(s Stage) Stage {
	for i, stage := range StageSequence {
		if stage == s && i+1 < len(StageSequence) {
			return StageSequence[i+1]
		}
	}
	return ""
}

// ValidStage reports whether s is part of the pipeline.
func ValidStage(s Stage) bool {
	for _, stage := range StageSequence {
		if stage == s {
			return true
		}
	}
	return false
}

// JobCard is one vehicle moving through the workshop.
type JobCard struct {
	ID             int64      `json:"id"`
	TenantID       int64      `json:"tenant_id"`
	DocNumber      string     `json:"doc_number"`
	QuotationID    *int64     `json:"quotation_id,omitempty"`
	CustomerID     int64      `json:"customer_id"`
	VehicleID      int64      `json:"vehicle_id"`
	Stage          Stage      `json:"stage"`
	StageEnteredAt time.Time  `json:"stage_entered_at"`
	AssignedTo     *int64     `json:"assigned_to,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	OpenedBy       int64      `json:"opened_by"`
	OpenedAt       time.Time  `json:"opened_at"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// StageEvent is one recorded stage transition of a job card.
type StageEvent struct {
	ID        int64     `json:"id"`
	JobCardID int64     `json:"job_card_id"`
	FromStage *Stage    `json:"from_stage,omitempty"`
	ToStage   Stage     `json:"to_stage"`
	MovedBy   int64     `json:"moved_by"`
	Note      *string   `json:"note,omitempty"`
	MovedAt   time.Time `json:"moved_at"`
}

// QCInspection is one quality control check on a job card. A card passes
// when every checklist item scores at or above the pass mark.
type QCInspection struct {
	ID          int64     `json:"id"`
	JobCardID   int64     `json:"job_card_id"`
	InspectorID int64     `json:"inspector_id"`
	Items       []QCItem  `json:"items"`
	Score       float64   `json:"score"`
	Passed      bool      `json:"passed"`
	Notes       *string   `json:"notes,omitempty"`
	InspectedAt time.Time `json:"inspected_at"`
}

// QCItem is one scored checklist entry, 0 to 10.
type QCItem struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// qcPassMark is the minimum per-item score for a passing inspection.
const qcPassMark = 7.0

// ScoreInspection computes the average score and whether every item meets
// the pass mark.
func ScoreInspection(items []QCItem) (score float64, passed bool) {
	if len(items) == 0 {
		return 0, false
	}
	passed = true
	for _, item := range items {
		score += item.Score
		if item.Score < qcPassMark {
			passed = false
		}
	}
	return score / float64(len(items)), passed
}

// AgingCard is a job card that has sat in its stage past a threshold.
type AgingCard struct {
	JobCardID int64         `json:"job_card_id"`
	DocNumber string        `json:"doc_number"`
	TenantID  int64         `json:"tenant_id"`
	Stage     Stage         `json:"stage"`
	InStage   time.Duration `json:"in_stage"`
}
