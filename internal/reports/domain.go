// Package reports aggregates workshop, revenue, and stock figures for the
// dashboard and CSV exports.
package reports

import "time"

// StageCount is the number of open job cards in one pipeline stage.
type StageCount struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// MonthlyRevenue is invoiced and collected totals for one calendar month.
type MonthlyRevenue struct {
	Month     string  `json:"month"`
	Invoiced  float64 `json:"invoiced"`
	Collected float64 `json:"collected"`
}

// CycleTime is the average time from intake to delivery over a window.
type CycleTime struct {
	DeliveredCards int     `json:"delivered_cards"`
	AverageDays    float64 `json:"average_days"`
}

// LowStockItem is one part at or below its reorder level.
type LowStockItem struct {
	SKU          string  `json:"sku"`
	Name         string  `json:"name"`
	OnHand       float64 `json:"on_hand"`
	ReorderLevel float64 `json:"reorder_level"`
}

// Dashboard bundles the headline figures for one tenant.
type Dashboard struct {
	StageCounts []StageCount     `json:"stage_counts"`
	Revenue     []MonthlyRevenue `json:"revenue"`
	CycleTime   CycleTime        `json:"cycle_time"`
	LowStock    []LowStockItem   `json:"low_stock"`
	GeneratedAt time.Time        `json:"generated_at"`
}
