// Package authz resolves elevated roles and per-module permissions for
// authenticated principals and shapes what the client is allowed to see.
package authz

import (
	"time"

	"github.com/bodyworks/bodyworks/internal/modules"
)

// Scope qualifies a role assignment.
type Scope string

const (
	// ScopeGlobal marks a system-wide assignment.
	ScopeGlobal Scope = "global"
	// ScopeTenant marks an assignment bound to one organization.
	ScopeTenant Scope = "tenant"
)

// Elevated role names. Other role names ("manager", "user", ...) carry no
// special meaning for resolution.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
)

// RoleAssignment relates a principal to a scope and role name.
type RoleAssignment struct {
	PrincipalID int64
	TenantID    int64
	Scope       Scope
	Role        string
	CreatedAt   time.Time
}

// Access carries the two elevation flags derived from role assignments.
// Both default to false for a principal with no role records; that is a
// valid, non-exceptional state (ordinary user).
type Access struct {
	IsSuperAdmin  bool `json:"is_super_admin"`
	IsTenantAdmin bool `json:"is_tenant_admin"`
}

// HasAdminAccess reports whether either elevation flag is set.
func (a Access) HasAdminAccess() bool {
	return a.IsSuperAdmin || a.IsTenantAdmin
}

// Grant is the 4-tuple of independent boolean permissions for one module.
type Grant struct {
	CanView   bool `json:"can_view"`
	CanCreate bool `json:"can_create"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

// ModulePermission is one stored permission row. The create/edit/delete
// implies view rule is applied by the editor at toggle time only; stored
// rows may violate it.
type ModulePermission struct {
	PrincipalID int64      `json:"principal_id"`
	TenantID    int64      `json:"tenant_id"`
	Module      modules.ID `json:"module"`
	Grant
}
