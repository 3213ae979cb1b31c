package payments

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

// Repository defines persistence for invoices and payments.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, tenantID, id int64) (Invoice, error)
	GetForUpdate(ctx context.Context, tenantID, id int64) (Invoice, error)
	List(ctx context.Context, tenantID int64, filters ListFilters) ([]Invoice, int, error)
	Insert(ctx context.Context, inv Invoice) (Invoice, error)
	SetPaid(ctx context.Context, tenantID, id int64, paid float64, status InvoiceStatus) error
	InsertPayment(ctx context.Context, p Payment) (Payment, error)
	Payments(ctx context.Context, tenantID, invoiceID int64) ([]Payment, error)
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

const invoiceColumns = `id, tenant_id, doc_number, job_card_id, customer_id, total_amount, paid_amount, status,
	issued_by, issued_at, due_date, notes, created_at, updated_at`

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.TenantID, &inv.DocNumber, &inv.JobCardID, &inv.CustomerID, &inv.TotalAmount,
		&inv.PaidAmount, &inv.Status, &inv.IssuedBy, &inv.IssuedAt, &inv.DueDate, &inv.Notes,
		&inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

// Get fetches one invoice scoped to a tenant.
func (r *PGRepository) Get(ctx context.Context, tenantID, id int64) (Invoice, error) {
	return r.get(ctx, tenantID, id, "")
}

// GetForUpdate locks the invoice row while a payment is applied.
func (r *PGRepository) GetForUpdate(ctx context.Context, tenantID, id int64) (Invoice, error) {
	return r.get(ctx, tenantID, id, " FOR UPDATE")
}

func (r *PGRepository) get(ctx context.Context, tenantID, id int64, suffix string) (Invoice, error) {
	inv, err := scanInvoice(r.q().QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE tenant_id = $1 AND id = $2`+suffix, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, httpx.ErrNotFound
		}
		return Invoice{}, err
	}
	return inv, nil
}

// List returns invoices matching the filters plus the unpaged total.
func (r *PGRepository) List(ctx context.Context, tenantID int64, filters ListFilters) ([]Invoice, int, error) {
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
	if err := r.q().QueryRow(ctx,
		`SELECT COUNT(*) FROM invoices WHERE `+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filters.PerPage, (filters.Page-1)*filters.PerPage)
	rows, err := r.q().Query(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE `+conditions+
			fmt.Sprintf(` ORDER BY issued_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// Insert writes an invoice. A second invoice for the same job card maps to
// ErrDuplicate via the unique index.
func (r *PGRepository) Insert(ctx context.Context, inv Invoice) (Invoice, error) {
	err := r.q().QueryRow(ctx,
		`INSERT INTO invoices (tenant_id, doc_number, job_card_id, customer_id, total_amount, paid_amount,
			status, issued_by, issued_at, due_date, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, 0, $6, $7, NOW(), $8, $9, NOW(), NOW())
		 RETURNING id, paid_amount, issued_at, created_at, updated_at`,
		inv.TenantID, inv.DocNumber, inv.JobCardID, inv.CustomerID, inv.TotalAmount,
		inv.Status, inv.IssuedBy, inv.DueDate, inv.Notes).
		Scan(&inv.ID, &inv.PaidAmount, &inv.IssuedAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Invoice{}, httpx.ErrDuplicate
		}
		return Invoice{}, err
	}
	return inv, nil
}

// SetPaid writes the running paid total and derived status.
func (r *PGRepository) SetPaid(ctx context.Context, tenantID, id int64, paid float64, status InvoiceStatus) error {
	var updated int64
	err := r.q().QueryRow(ctx,
		`UPDATE invoices SET paid_amount = $3, status = $4, updated_at = NOW()
		 WHERE tenant_id = $1 AND id = $2 RETURNING id`,
		tenantID, id, paid, status).Scan(&updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return httpx.ErrNotFound
	}
	return err
}

// InsertPayment appends one receipt.
func (r *PGRepository) InsertPayment(ctx context.Context, p Payment) (Payment, error) {
	err := r.q().QueryRow(ctx,
		`INSERT INTO payments (invoice_id, amount, method, reference, received_by, received_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 RETURNING id, received_at`,
		p.InvoiceID, p.Amount, p.Method, p.Reference, p.ReceivedBy).
		Scan(&p.ID, &p.ReceivedAt)
	if err != nil {
		return Payment{}, err
	}
	return p, nil
}

// Payments returns an invoice's receipts, newest first.
func (r *PGRepository) Payments(ctx context.Context, tenantID, invoiceID int64) ([]Payment, error) {
	rows, err := r.q().Query(ctx,
		`SELECT p.id, p.invoice_id, p.amount, p.method, p.reference, p.received_by, p.received_at
		 FROM payments p
		 JOIN invoices i ON i.id = p.invoice_id
		 WHERE i.tenant_id = $1 AND p.invoice_id = $2
		 ORDER BY p.received_at DESC`,
		tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Method, &p.Reference, &p.ReceivedBy, &p.ReceivedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

// NextDocNumber allocates the next INV-{YYMM}-{SEQ} number for the tenant
// and month.
func (r *PGRepository) NextDocNumber(ctx context.Context, tenantID int64, date time.Time) (string, error) {
	var seq int64
	err := r.q().QueryRow(ctx,
		`INSERT INTO document_sequences (tenant_id, doc_type, period, seq)
		 VALUES ($1, $2, $3, 1)
		 ON CONFLICT (tenant_id, doc_type, period)
		 DO UPDATE SET seq = document_sequences.seq + 1
		 RETURNING seq`,
		tenantID, "INV", date.Format("200601")).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%s-%04d", date.Format("0601"), seq), nil
}

var _ Repository = (*PGRepository)(nil)
