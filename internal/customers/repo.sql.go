package customers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bodyworks/bodyworks/internal/platform/httpx"
)

// Repository defines persistence for customers.
type Repository interface {
	List(ctx context.Context, tenantID int64, filters ListFilters) ([]Customer, int, error)
	Get(ctx context.Context, tenantID, id int64) (Customer, error)
	Insert(ctx context.Context, c Customer) (Customer, error)
	Update(ctx context.Context, c Customer) (Customer, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// List returns customers matching the filters plus the unpaged total.
func (r *PGRepository) List(ctx context.Context, tenantID int64, filters ListFilters) ([]Customer, int, error) {
	if filters.PerPage <= 0 {
		filters.PerPage = 20
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	offset := (filters.Page - 1) * filters.PerPage
	search := "%" + filters.Search + "%"

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM customers
		 WHERE tenant_id = $1 AND ($2 = '%%' OR name ILIKE $2 OR phone ILIKE $2 OR email ILIKE $2)`,
		tenantID, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, tenant_id, name, email, phone, address, notes, created_at, updated_at
		 FROM customers
		 WHERE tenant_id = $1 AND ($2 = '%%' OR name ILIKE $2 OR phone ILIKE $2 OR email ILIKE $2)
		 ORDER BY name LIMIT $3 OFFSET $4`,
		tenantID, search, filters.PerPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// Get fetches one customer scoped to a tenant.
func (r *PGRepository) Get(ctx context.Context, tenantID, id int64) (Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx,
		`SELECT id, tenant_id, name, email, phone, address, notes, created_at, updated_at
		 FROM customers WHERE tenant_id = $1 AND id = $2`, tenantID, id).
		Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, httpx.ErrNotFound
		}
		return Customer{}, err
	}
	return c, nil
}

// Insert creates a customer. Duplicate phone or email within the tenant
// maps to ErrDuplicate.
func (r *PGRepository) Insert(ctx context.Context, c Customer) (Customer, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO customers (tenant_id, name, email, phone, address, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		 RETURNING id, created_at, updated_at`,
		c.TenantID, c.Name, c.Email, c.Phone, c.Address, c.Notes).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Customer{}, httpx.ErrDuplicate
		}
		return Customer{}, err
	}
	return c, nil
}

// Update rewrites the mutable fields.
func (r *PGRepository) Update(ctx context.Context, c Customer) (Customer, error) {
	err := r.pool.QueryRow(ctx,
		`UPDATE customers SET name = $3, email = $4, phone = $5, address = $6, notes = $7, updated_at = NOW()
		 WHERE tenant_id = $1 AND id = $2
		 RETURNING updated_at`,
		c.TenantID, c.ID, c.Name, c.Email, c.Phone, c.Address, c.Notes).
		Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, httpx.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Customer{}, httpx.ErrDuplicate
		}
		return Customer{}, err
	}
	return c, nil
}

var _ Repository = (*PGRepository)(nil)
