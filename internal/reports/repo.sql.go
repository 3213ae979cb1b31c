package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the aggregate queries behind the dashboard.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// StageCounts returns open card counts per stage.
func (r *Repository) StageCounts(ctx context.Context, tenantID int64) ([]StageCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT stage, COUNT(*) FROM job_cards
		 WHERE tenant_id = $1 AND stage <> 'DELIVERED'
		 GROUP BY stage ORDER BY stage`,
		tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var counts []StageCount
	for rows.Next() {
		var c StageCount
		if err := rows.Scan(&c.Stage, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// MonthlyRevenue returns invoiced and collected totals for the last n
// months, oldest first.
func (r *Repository) MonthlyRevenue(ctx context.Context, tenantID int64, months int) ([]MonthlyRevenue, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT to_char(date_trunc('month', i.issued_at), 'YYYY-MM') AS month,
			COALESCE(SUM(i.total_amount), 0),
			COALESCE(SUM(i.paid_amount), 0)
		 FROM invoices i
		 WHERE i.tenant_id = $1
		   AND i.status <> 'VOID'
		   AND i.issued_at >= date_trunc('month', NOW()) - make_interval(months => $2 - 1)
		 GROUP BY 1 ORDER BY 1`,
		tenantID, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var revenue []MonthlyRevenue
	for rows.Next() {
		var m MonthlyRevenue
		if err := rows.Scan(&m.Month, &m.Invoiced, &m.Collected); err != nil {
			return nil, err
		}
		revenue = append(revenue, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return revenue, nil
}

// CycleTime averages intake-to-delivery duration over the last n months.
func (r *Repository) CycleTime(ctx context.Context, tenantID int64, months int) (CycleTime, error) {
	var ct CycleTime
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
			COALESCE(AVG(EXTRACT(EPOCH FROM delivered_at - opened_at)) / 86400, 0)
		 FROM job_cards
		 WHERE tenant_id = $1 AND delivered_at IS NOT NULL
		   AND delivered_at >= NOW() - make_interval(months => $2)`,
		tenantID, months).Scan(&ct.DeliveredCards, &ct.AverageDays)
	return ct, err
}

// LowStock returns parts at or below their reorder level.
func (r *Repository) LowStock(ctx context.Context, tenantID int64) ([]LowStockItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT sku, name, on_hand, reorder_level FROM parts
		 WHERE tenant_id = $1 AND on_hand <= reorder_level ORDER BY sku`,
		tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LowStockItem
	for rows.Next() {
		var it LowStockItem
		if err := rows.Scan(&it.SKU, &it.Name, &it.OnHand, &it.ReorderLevel); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// TenantIDs lists active tenants for cache warmup.
func (r *Repository) TenantIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM tenants WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
