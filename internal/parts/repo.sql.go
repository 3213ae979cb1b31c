package parts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bodyworks/bodyworks/internal/platform/db"
	"github.com/bodyworks/bodyworks/internal/platform/httpx"
)

// Repository defines persistence for parts and stock movements.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	List(ctx context.Context, tenantID int64, filters ListFilters) ([]Part, int, error)
	Get(ctx context.Context, tenantID, id int64) (Part, error)
	GetForUpdate(ctx context.Context, tenantID, id int64) (Part, error)
	Insert(ctx context.Context, p Part) (Part, error)
	Update(ctx context.Context, p Part) (Part, error)
	SetOnHand(ctx context.Context, tenantID, id int64, onHand float64) error
	InsertMovement(ctx context.Context, m Movement) (Movement, error)
	Movements(ctx context.Context, tenantID, partID int64) ([]Movement, error)
	LowStock(ctx context.Context, tenantID int64) ([]Part, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

type querier interface {
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

func (r *PGRepository) q() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

// WithTx runs fn inside a transaction with a repository bound to it.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &PGRepository{pool: r.pool, tx: tx})
	})
}

const partColumns = `id, tenant_id, sku, name, description, unit_price, reorder_level, on_hand, created_at, updated_at`

func scanPart(row pgx.Row) (Part, error) {
	var p Part
	err := row.Scan(&p.ID, &p.TenantID, &p.SKU, &p.Name, &p.Description, &p.UnitPrice, &p.ReorderLevel,
		&p.OnHand, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// List returns catalogue entries matching the filters plus the unpaged total.
func (r *PGRepository) List(ctx context.Context, tenantID int64, filters ListFilters) ([]Part, int, error) {
	if filters.PerPage <= 0 {
		filters.PerPage = 20
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	conditions := `tenant_id = $1 AND ($2 = '%%' OR sku ILIKE $2 OR name ILIKE $2)`
	args := []any{tenantID, "%" + filters.Search + "%"}
	if filters.LowStock {
		conditions += ` AND on_hand <= reorder_level`
	}

	var total int
	if err := r.q().QueryRow(ctx,
		`SELECT COUNT(*) FROM parts WHERE `+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filters.PerPage, (filters.Page-1)*filters.PerPage)
	rows, err := r.q().Query(ctx,
		`SELECT `+partColumns+` FROM parts WHERE `+conditions+
			fmt.Sprintf(` ORDER BY sku LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var parts []Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, 0, err
		}
		parts = append(parts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return parts, total, nil
}

// Get fetches one part scoped to a tenant.
func (r *PGRepository) Get(ctx context.Context, tenantID, id int64) (Part, error) {
	p, err := scanPart(r.q().QueryRow(ctx,
		`SELECT `+partColumns+` FROM parts WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Part{}, httpx.ErrNotFound
		}
		return Part{}, err
	}
	return p, nil
}

// GetForUpdate locks the part row for a stock movement.
func (r *PGRepository) GetForUpdate(ctx context.Context, tenantID, id int64) (Part, error) {
	p, err := scanPart(r.q().QueryRow(ctx,
		`SELECT `+partColumns+` FROM parts WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Part{}, httpx.ErrNotFound
		}
		return Part{}, err
	}
	return p, nil
}

// Insert adds a catalogue entry. A duplicate SKU within the tenant maps to
// ErrDuplicate.
func (r *PGRepository) Insert(ctx context.Context, p Part) (Part, error) {
	err := r.q().QueryRow(ctx,
		`INSERT INTO parts (tenant_id, sku, name, description, unit_price, reorder_level, on_hand, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, 0, NOW(), NOW())
		 RETURNING id, on_hand, created_at, updated_at`,
		p.TenantID, p.SKU, p.Name, p.Description, p.UnitPrice, p.ReorderLevel).
		Scan(&p.ID, &p.OnHand, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Part{}, httpx.ErrDuplicate
		}
		return Part{}, err
	}
	return p, nil
}

// Update rewrites the catalogue fields, never the stock balance.
func (r *PGRepository) Update(ctx context.Context, p Part) (Part, error) {
	err := r.q().QueryRow(ctx,
		`UPDATE parts SET name = $3, description = $4, unit_price = $5, reorder_level = $6, updated_at = NOW()
		 WHERE tenant_id = $1 AND id = $2 RETURNING updated_at`,
		p.TenantID, p.ID, p.Name, p.Description, p.UnitPrice, p.ReorderLevel).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Part{}, httpx.ErrNotFound
		}
		return Part{}, err
	}
	return p, nil
}

// SetOnHand writes the new balance after a ledger append.
func (r *PGRepository) SetOnHand(ctx context.Context, tenantID, id int64, onHand float64) error {
	var updated int64
	err := r.q().QueryRow(ctx,
		`UPDATE parts SET on_hand = $3, updated_at = NOW()
		 WHERE tenant_id = $1 AND id = $2 RETURNING id`,
		tenantID, id, onHand).Scan(&updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return httpx.ErrNotFound
	}
	return err
}

// InsertMovement appends one ledger entry.
func (r *PGRepository) InsertMovement(ctx context.Context, m Movement) (Movement, error) {
	err := r.q().QueryRow(ctx,
		`INSERT INTO stock_movements (part_id, type, quantity, job_card_id, reference, moved_by, balance, moved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		 RETURNING id, moved_at`,
		m.PartID, m.Type, m.Quantity, m.JobCardID, m.Reference, m.MovedBy, m.Balance).
		Scan(&m.ID, &m.MovedAt)
	if err != nil {
		return Movement{}, err
	}
	return m, nil
}

// Movements returns a part's ledger, newest first.
func (r *PGRepository) Movements(ctx context.Context, tenantID, partID int64) ([]Movement, error) {
	rows, err := r.q().Query(ctx,
		`SELECT m.id, m.part_id, m.type, m.quantity, m.job_card_id, m.reference, m.moved_by, m.balance, m.moved_at
		 FROM stock_movements m
		 JOIN parts p ON p.id = m.part_id
		 WHERE p.tenant_id = $1 AND m.part_id = $2
		 ORDER BY m.moved_at DESC, m.id DESC`,
		tenantID, partID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var movements []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.PartID, &m.Type, &m.Quantity, &m.JobCardID, &m.Reference, &m.MovedBy, &m.Balance, &m.MovedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movements, nil
}

// LowStock returns parts at or below their reorder level.
func (r *PGRepository) LowStock(ctx context.Context, tenantID int64) ([]Part, error) {
	rows, err := r.q().Query(ctx,
		`SELECT `+partColumns+` FROM parts
		 WHERE tenant_id = $1 AND on_hand <= reorder_level ORDER BY sku`,
		tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var parts []Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return parts, nil
}

var _ Repository = (*PGRepository)(nil)
