package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bodyworks/bodyworks/internal/platform/httpx"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context, tenantID int64) ([]User, error)
	Get(ctx context.Context, tenantID, id int64) (User, error)
	Create(ctx context.Context, tenantID int64, email, name, passwordHash string) (User, error)
	SetActive(ctx context.Context, tenantID, id int64, active bool) error
	AddRole(ctx context.Context, tenantID, userID int64, role string) error
	RemoveRole(ctx context.Context, tenantID, userID int64, role string) error
	ListRoles(ctx context.Context, tenantID, userID int64) ([]string, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns every user of a tenant.
func (r *Repository) List(ctx context.Context, tenantID int64) ([]User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, tenant_id, email, name, is_active, created_at, updated_at
		 FROM users WHERE tenant_id = $1 ORDER BY name`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.TenantID, &u.Email, &u.Name, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Get fetches one user scoped to a tenant.
func (r *Repository) Get(ctx context.Context, tenantID, id int64) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx,
		`SELECT id, tenant_id, email, name, is_active, created_at, updated_at
		 FROM users WHERE tenant_id = $1 AND id = $2`, tenantID, id).
		Scan(&u.ID, &u.TenantID, &u.Email, &u.Name, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, httpx.ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// Create inserts a user. A duplicate email maps to ErrDuplicate.
func (r *Repository) Create(ctx context.Context, tenantID int64, email, name, passwordHash string) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (tenant_id, email, name, password_hash, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
		 RETURNING id, tenant_id, email, name, is_active, created_at, updated_at`,
		tenantID, email, name, passwordHash).
		Scan(&u.ID, &u.TenantID, &u.Email, &u.Name, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, httpx.ErrDuplicate
		}
		return User{}, err
	}
	return u, nil
}

// SetActive flips the active flag. Accounts are deactivated, never deleted.
func (r *Repository) SetActive(ctx context.Context, tenantID, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_active = $3, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`,
		tenantID, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// AddRole records a tenant-scoped role assignment, ignoring duplicates.
func (r *Repository) AddRole(ctx context.Context, tenantID, userID int64, role string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO role_assignments (principal_id, tenant_id, scope, role, created_at)
		 VALUES ($1, $2, 'tenant', $3, NOW())
		 ON CONFLICT DO NOTHING`, userID, tenantID, role)
	return err
}

// RemoveRole drops a tenant-scoped role assignment.
func (r *Repository) RemoveRole(ctx context.Context, tenantID, userID int64, role string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM role_assignments
		 WHERE principal_id = $1 AND tenant_id = $2 AND scope = 'tenant' AND role = $3`,
		userID, tenantID, role)
	return err
}

// ListRoles returns the tenant-scoped role names a user holds.
func (r *Repository) ListRoles(ctx context.Context, tenantID, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT role FROM role_assignments
		 WHERE principal_id = $1 AND tenant_id = $2 AND scope = 'tenant' ORDER BY role`,
		userID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

var _ RepositoryPort = (*Repository)(nil)
