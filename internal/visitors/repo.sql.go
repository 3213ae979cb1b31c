package visitors

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bodyworks/bodyworks/internal/platform/db"
	"github.com/bodyworks/bodyworks/internal/platform/httpx"
)

// Repository defines persistence for visits and visit requests.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	InsertVisit(ctx context.Context, v Visit) (Visit, error)
	FindByBadge(ctx context.Context, tenantID int64, badge uuid.UUID) (Visit, error)
	CheckOut(ctx context.Context, tenantID int64, badge uuid.UUID) (Visit, error)
	OpenVisits(ctx context.Context, tenantID int64) ([]Visit, error)
	InsertRequest(ctx context.Context, req VisitRequest) (VisitRequest, error)
	GetRequest(ctx context.Context, tenantID, id int64) (VisitRequest, error)
	GetRequestForUpdate(ctx context.Context, tenantID, id int64) (VisitRequest, error)
	ListRequests(ctx context.Context, tenantID int64, status *RequestStatus) ([]VisitRequest, error)
	SetRequestStatus(ctx context.Context, tenantID, id int64, status RequestStatus, reviewedBy int64) error
	InsertAppointment(ctx context.Context, a Appointment) (Appointment, error)
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

const visitColumns = `id, tenant_id, badge, name, phone, company, purpose, host_user_id, checked_in_at, checked_out_at`

func scanVisit(row pgx.Row) (Visit, error) {
	var v Visit
	err := row.Scan(&v.ID, &v.TenantID, &v.Badge, &v.Name, &v.Phone, &v.Company, &v.Purpose,
		&v.HostUserID, &v.CheckedInAt, &v.CheckedOutAt)
	return v, err
}

// InsertVisit records a check-in.
func (r *PGRepository) InsertVisit(ctx context.Context, v Visit) (Visit, error) {
	err := r.q().QueryRow(ctx,
		`INSERT INTO visits (tenant_id, badge, name, phone, company, purpose, host_user_id, checked_in_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		 RETURNING id, checked_in_at`,
		v.TenantID, v.Badge, v.Name, v.Phone, v.Company, v.Purpose, v.HostUserID).
		Scan(&v.ID, &v.CheckedInAt)
	if err != nil {
		return Visit{}, err
	}
	return v, nil
}

// FindByBadge locates a visit by its badge UUID.
func (r *PGRepository) FindByBadge(ctx context.Context, tenantID int64, badge uuid.UUID) (Visit, error) {
	v, err := scanVisit(r.q().QueryRow(ctx,
		`SELECT `+visitColumns+` FROM visits WHERE tenant_id = $1 AND badge = $2`, tenantID, badge))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Visit{}, httpx.ErrNotFound
		}
		return Visit{}, err
	}
	return v, nil
}

// CheckOut stamps checked_out_at on an open visit. Checking out twice maps
// to ErrConflict.
func (r *PGRepository) CheckOut(ctx context.Context, tenantID int64, badge uuid.UUID) (Visit, error) {
	v, err := scanVisit(r.q().QueryRow(ctx,
		`UPDATE visits SET checked_out_at = NOW()
		 WHERE tenant_id = $1 AND badge = $2 AND checked_out_at IS NULL
		 RETURNING `+visitColumns, tenantID, badge))
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Visit{}, err
	}
	if _, ferr := r.FindByBadge(ctx, tenantID, badge); ferr != nil {
		return Visit{}, ferr
	}
	return Visit{}, httpx.ErrConflict
}

// OpenVisits lists visitors currently on site.
func (r *PGRepository) OpenVisits(ctx context.Context, tenantID int64) ([]Visit, error) {
	rows, err := r.q().Query(ctx,
		`SELECT `+visitColumns+` FROM visits
		 WHERE tenant_id = $1 AND checked_out_at IS NULL ORDER BY checked_in_at`,
		tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var visits []Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return visits, nil
}

const requestColumns = `id, tenant_id, name, phone, email, plate, description, preferred_at, status, reviewed_by, reviewed_at, created_at`

func scanRequest(row pgx.Row) (VisitRequest, error) {
	var vr VisitRequest
	err := row.Scan(&vr.ID, &vr.TenantID, &vr.Name, &vr.Phone, &vr.Email, &vr.Plate, &vr.Description,
		&vr.PreferredAt, &vr.Status, &vr.ReviewedBy, &vr.ReviewedAt, &vr.CreatedAt)
	return vr, err
}

// InsertRequest stores a wizard submission.
func (r *PGRepository) InsertRequest(ctx context.Context, req VisitRequest) (VisitRequest, error) {
	err := r.q().QueryRow(ctx,
		`INSERT INTO visit_requests (tenant_id, name, phone, email, plate, description, preferred_at, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		 RETURNING id, created_at`,
		req.TenantID, req.Name, req.Phone, req.Email, req.Plate, req.Description, req.PreferredAt, req.Status).
		Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return VisitRequest{}, err
	}
	return req, nil
}

// GetRequest fetches one visit request scoped to a tenant.
func (r *PGRepository) GetRequest(ctx context.Context, tenantID, id int64) (VisitRequest, error) {
	return r.getRequest(ctx, tenantID, id, "")
}

// GetRequestForUpdate locks the request row during review.
func (r *PGRepository) GetRequestForUpdate(ctx context.Context, tenantID, id int64) (VisitRequest, error) {
	return r.getRequest(ctx, tenantID, id, " FOR UPDATE")
}

func (r *PGRepository) getRequest(ctx context.Context, tenantID, id int64, suffix string) (VisitRequest, error) {
	vr, err := scanRequest(r.q().QueryRow(ctx,
		`SELECT `+requestColumns+` FROM visit_requests WHERE tenant_id = $1 AND id = $2`+suffix, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return VisitRequest{}, httpx.ErrNotFound
		}
		return VisitRequest{}, err
	}
	return vr, nil
}

// ListRequests returns requests, optionally by status, newest first.
func (r *PGRepository) ListRequests(ctx context.Context, tenantID int64, status *RequestStatus) ([]VisitRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM visit_requests WHERE tenant_id = $1`
	args := []any{tenantID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`
	rows, err := r.q().Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var requests []VisitRequest
	for rows.Next() {
		vr, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, vr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

// SetRequestStatus records the review decision.
func (r *PGRepository) SetRequestStatus(ctx context.Context, tenantID, id int64, status RequestStatus, reviewedBy int64) error {
	var updated int64
	err := r.q().QueryRow(ctx,
		`UPDATE visit_requests SET status = $3, reviewed_by = $4, reviewed_at = NOW()
		 WHERE tenant_id = $1 AND id = $2 RETURNING id`,
		tenantID, id, status, reviewedBy).Scan(&updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return httpx.ErrNotFound
	}
	return err
}

// InsertAppointment books the confirmed slot.
func (r *PGRepository) InsertAppointment(ctx context.Context, a Appointment) (Appointment, error) {
	err := r.q().QueryRow(ctx,
		`INSERT INTO appointments (tenant_id, visit_request_id, scheduled_at, created_by, created_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 RETURNING id, created_at`,
		a.TenantID, a.VisitRequestID, a.ScheduledAt, a.CreatedBy).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return Appointment{}, err
	}
	return a, nil
}

var _ Repository = (*PGRepository)(nil)
