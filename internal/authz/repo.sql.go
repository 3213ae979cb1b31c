package authz

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bodyworks/bodyworks/internal/modules"
	"github.com/bodyworks/bodyworks/internal/platform/db"
)

// Repository defines persistence operations for role assignments and
// module permissions.
type Repository interface {
	ListAssignments(ctx context.Context, principalID int64) ([]RoleAssignment, error)
	ListPermissions(ctx context.Context, tenantID, principalID int64) ([]ModulePermission, error)
	ReplacePermissions(ctx context.Context, tenantID, principalID int64, grants map[modules.ID]Grant) error
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ListAssignments returns every role assignment held by a principal.
func (r *PGRepository) ListAssignments(ctx context.Context, principalID int64) ([]RoleAssignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT principal_id, COALESCE(tenant_id, 0), scope, role, created_at
		 FROM role_assignments WHERE principal_id = $1 ORDER BY created_at`, principalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var assignments []RoleAssignment
	for rows.Next() {
		var a RoleAssignment
		if err := rows.Scan(&a.PrincipalID, &a.TenantID, &a.Scope, &a.Role, &a.CreatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListPermissions returns the stored permission rows for a principal in a tenant.
func (r *PGRepository) ListPermissions(ctx context.Context, tenantID, principalID int64) ([]ModulePermission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT principal_id, tenant_id, module, can_view, can_create, can_edit, can_delete
		 FROM module_permissions WHERE tenant_id = $1 AND principal_id = $2 ORDER BY module`,
		tenantID, principalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []ModulePermission
	for rows.Next() {
		var p ModulePermission
		if err := rows.Scan(&p.PrincipalID, &p.TenantID, &p.Module, &p.CanView, &p.CanCreate, &p.CanEdit, &p.CanDelete); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}

// ReplacePermissions swaps the full permission grid for a principal in one
// transaction.
func (r *PGRepository) ReplacePermissions(ctx context.Context, tenantID, principalID int64, grants map[modules.ID]Grant) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM module_permissions WHERE tenant_id = $1 AND principal_id = $2`,
			tenantID, principalID); err != nil {
			return err
		}
		for _, mod := range modules.Catalog() {
			grant, ok := grants[mod.ID]
			if !ok {
				continue
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO module_permissions (tenant_id, principal_id, module, can_view, can_create, can_edit, can_delete)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				tenantID, principalID, string(mod.ID), grant.CanView, grant.CanCreate, grant.CanEdit, grant.CanDelete); err != nil {
				return err
			}
		}
		return nil
	})
}

var _ Repository = (*PGRepository)(nil)
