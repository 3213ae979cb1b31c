package vehicles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bodyworks/bodyworks/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const vehicleColumns = `id, tenant_id, customer_id, plate, vin, make, model, year, color, created_at, updated_at`

func scanVehicle(row pgx.Row) (Vehicle, error) {
	var v Vehicle
	err := row.Scan(&v.ID, &v.TenantID, &v.CustomerID, &v.Plate, &v.VIN, &v.Make, &v.Model, &v.Year, &v.Color, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

// ListByCustomer returns a customer's vehicles.
func (r *Repository) ListByCustomer(ctx context.Context, tenantID, customerID int64) ([]Vehicle, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles
		 WHERE tenant_id = $1 AND customer_id = $2 ORDER BY created_at DESC`,
		tenantID, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var vehicles []Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// Get fetches one vehicle scoped to a tenant.
func (r *Repository) Get(ctx context.Context, tenantID, id int64) (Vehicle, error) {
	v, err := scanVehicle(r.pool.QueryRow(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vehicle{}, httpx.ErrNotFound
		}
		return Vehicle{}, err
	}
	return v, nil
}

// FindByPlate looks a vehicle up by registration plate.
func (r *Repository) FindByPlate(ctx context.Context, tenantID int64, plate string) (Vehicle, error) {
	v, err := scanVehicle(r.pool.QueryRow(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE tenant_id = $1 AND upper(plate) = upper($2)`,
		tenantID, plate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vehicle{}, httpx.ErrNotFound
		}
		return Vehicle{}, err
	}
	return v, nil
}

// Insert registers a vehicle. A duplicate plate within the tenant maps to
// ErrDuplicate.
func (r *Repository) Insert(ctx context.Context, v Vehicle) (Vehicle, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO vehicles (tenant_id, customer_id, plate, vin, make, model, year, color, created_at, updated_at)
		 VALUES ($1, $2, upper($3), $4, $5, $6, $7, $8, NOW(), NOW())
		 RETURNING id, plate, created_at, updated_at`,
		v.TenantID, v.CustomerID, v.Plate, v.VIN, v.Make, v.Model, v.Year, v.Color).
		Scan(&v.ID, &v.Plate, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Vehicle{}, httpx.ErrDuplicate
		}
		return Vehicle{}, err
	}
	return v, nil
}

// History returns the workshop visits of a vehicle, newest first.
func (r *Repository) History(ctx context.Context, tenantID, vehicleID int64) ([]HistoryEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, doc_number, stage, opened_at, delivered_at
		 FROM job_cards WHERE tenant_id = $1 AND vehicle_id = $2 ORDER BY opened_at DESC`,
		tenantID, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var history []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.JobCardID, &e.DocNumber, &e.Stage, &e.OpenedAt, &e.DeliveredAt); err != nil {
			return nil, err
		}
		history = append(history, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return history, nil
}
