package quotations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bodyworks/bodyworks/internal/platform/db"
	"github.com/bodyworks/bodyworks/internal/platform/httpx"
)

// Repository defines persistence for quotations.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, tenantID, id int64) (Quotation, error)
	List(ctx context.Context, tenantID int64, filters ListFilters) ([]Quotation, int, error)
	Insert(ctx context.Context, q Quotation) (int64, error)
	UpdateHeader(ctx context.Context, q Quotation) error
	InsertLine(ctx context.Context, line Line) error
	DeleteLines(ctx context.Context, tenantID, quotationID int64) error
	UpdateStatus(ctx context.Context, tenantID, id int64, status Status, userID int64, reason *string) error
	NextDocNumber(ctx context.Context, tenantID int64, date time.Time) (string, error)
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

func (r *PGRepository) conn() interface {
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
} {
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

const headerColumns = `id, tenant_id, doc_number, customer_id, vehicle_id, quote_date, valid_until, status,
	subtotal, tax_amount, total_amount, notes, created_by, decided_by, decided_at, rejection_reason, created_at, updated_at`

func scanHeader(row pgx.Row) (Quotation, error) {
	var q Quotation
	err := row.Scan(&q.ID, &q.TenantID, &q.DocNumber, &q.CustomerID, &q.VehicleID, &q.QuoteDate, &q.ValidUntil,
		&q.Status, &q.Subtotal, &q.TaxAmount, &q.TotalAmount, &q.Notes, &q.CreatedBy, &q.DecidedBy, &q.DecidedAt,
		&q.RejectionReason, &q.CreatedAt, &q.UpdatedAt)
	return q, err
}

// Get fetches a quotation with its lines.
func (r *PGRepository) Get(ctx context.Context, tenantID, id int64) (Quotation, error) {
	q, err := scanHeader(r.conn().QueryRow(ctx,
		`SELECT `+headerColumns+` FROM quotations WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Quotation{}, httpx.ErrNotFound
		}
		return Quotation{}, err
	}
	rows, err := r.conn().Query(ctx,
		`SELECT id, quotation_id, kind, part_id, description, quantity, unit_price,
			discount_percent, discount_amount, tax_percent, tax_amount, line_total, line_order
		 FROM quotation_lines WHERE quotation_id = $1 ORDER BY line_order`, id)
	if err != nil {
		return Quotation{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.QuotationID, &l.Kind, &l.PartID, &l.Description, &l.Quantity, &l.UnitPrice,
			&l.DiscountPercent, &l.DiscountAmount, &l.TaxPercent, &l.TaxAmount, &l.LineTotal, &l.LineOrder); err != nil {
			return Quotation{}, err
		}
		q.Lines = append(q.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return Quotation{}, err
	}
	return q, nil
}

// List returns quotation headers matching the filters plus the unpaged total.
func (r *PGRepository) List(ctx context.Context, tenantID int64, filters ListFilters) ([]Quotation, int, error) {
	if filters.PerPage <= 0 {
		filters.PerPage = 20
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	conditions := "tenant_id = $1"
	args := []any{tenantID}
	if filters.CustomerID != nil {
		args = append(args, *filters.CustomerID)
		conditions += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}
	if filters.Status != nil {
		args = append(args, *filters.Status)
		conditions += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := r.conn().QueryRow(ctx,
		`SELECT COUNT(*) FROM quotations WHERE `+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filters.PerPage, (filters.Page-1)*filters.PerPage)
	rows, err := r.conn().Query(ctx,
		`SELECT `+headerColumns+` FROM quotations WHERE `+conditions+
			fmt.Sprintf(` ORDER BY quote_date DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []Quotation
	for rows.Next() {
		q, err := scanHeader(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, q)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Insert writes a quotation header and returns its ID.
func (r *PGRepository) Insert(ctx context.Context, q Quotation) (int64, error) {
	var id int64
	err := r.conn().QueryRow(ctx,
		`INSERT INTO quotations (tenant_id, doc_number, customer_id, vehicle_id, quote_date, valid_until, status,
			subtotal, tax_amount, total_amount, notes, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		 RETURNING id`,
		q.TenantID, q.DocNumber, q.CustomerID, q.VehicleID, q.QuoteDate, q.ValidUntil, q.Status,
		q.Subtotal, q.TaxAmount, q.TotalAmount, q.Notes, q.CreatedBy).Scan(&id)
	return id, err
}

// UpdateHeader rewrites the mutable header fields of a draft.
func (r *PGRepository) UpdateHeader(ctx context.Context, q Quotation) error {
	tag, err := r.exec(ctx,
		`UPDATE quotations SET quote_date = $3, valid_until = $4, notes = $5,
			subtotal = $6, tax_amount = $7, total_amount = $8, updated_at = NOW()
		 WHERE tenant_id = $1 AND id = $2`,
		q.TenantID, q.ID, q.QuoteDate, q.ValidUntil, q.Notes, q.Subtotal, q.TaxAmount, q.TotalAmount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// InsertLine appends one line to a quotation.
func (r *PGRepository) InsertLine(ctx context.Context, line Line) error {
	_, err := r.exec(ctx,
		`INSERT INTO quotation_lines (quotation_id, kind, part_id, description, quantity, unit_price,
			discount_percent, discount_amount, tax_percent, tax_amount, line_total, line_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		line.QuotationID, line.Kind, line.PartID, line.Description, line.Quantity, line.UnitPrice,
		line.DiscountPercent, line.DiscountAmount, line.TaxPercent, line.TaxAmount, line.LineTotal, line.LineOrder)
	return err
}

// DeleteLines removes every line of a quotation before a rewrite.
func (r *PGRepository) DeleteLines(ctx context.Context, tenantID, quotationID int64) error {
	_, err := r.exec(ctx,
		`DELETE FROM quotation_lines
		 WHERE quotation_id = (SELECT id FROM quotations WHERE tenant_id = $1 AND id = $2)`,
		tenantID, quotationID)
	return err
}

// UpdateStatus records a lifecycle transition along with who decided it.
func (r *PGRepository) UpdateStatus(ctx context.Context, tenantID, id int64, status Status, userID int64, reason *string) error {
	tag, err := r.exec(ctx,
		`UPDATE quotations SET status = $3, decided_by = $4, decided_at = NOW(),
			rejection_reason = $5, updated_at = NOW()
		 WHERE tenant_id = $1 AND id = $2`,
		tenantID, id, status, userID, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// NextDocNumber allocates the next QT-{YYMM}-{SEQ} number for the tenant
// and month, using an upsert on the per-period sequence row.
func (r *PGRepository) NextDocNumber(ctx context.Context, tenantID int64, date time.Time) (string, error) {
	var seq int64
	err := r.conn().QueryRow(ctx,
		`INSERT INTO document_sequences (tenant_id, doc_type, period, seq)
		 VALUES ($1, $2, $3, 1)
		 ON CONFLICT (tenant_id, doc_type, period)
		 DO UPDATE SET seq = document_sequences.seq + 1
		 RETURNING seq`,
		tenantID, "QT", date.Format("200601")).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("QT-%s-%04d", date.Format("0601"), seq), nil
}

func (r *PGRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if r.tx != nil {
		return r.tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

var _ Repository = (*PGRepository)(nil)
