package authz

import "github.com/bodyworks/bodyworks/internal/modules"

// PolicyKind tags the two permission policy variants.
type PolicyKind int

const (
	// PolicyUnrestricted grants visibility into every module. It applies
	// when a principal has no permission rows configured, or when the
	// lookup has not completed. An organization that has not yet set up
	// granular permissions behaves as fully open to every authenticated
	// member; this fail-open default is a business rule, not an oversight.
	PolicyUnrestricted PolicyKind = iota
	// PolicyEnforced restricts visibility to modules with an explicit
	// can_view grant.
	PolicyEnforced
)

// Policy is the resolved permission set for one principal in one tenant.
type Policy struct {
	kind   PolicyKind
	grants map[modules.ID]Grant
}

// Unrestricted returns the fail-open policy.
func Unrestricted() Policy {
	return Policy{kind: PolicyUnrestricted}
}

// NewPolicy builds a policy from stored rows. An empty row set yields the
// unrestricted policy.
func NewPolicy(rows []ModulePermission) Policy {
	if len(rows) == 0 {
		return Unrestricted()
	}
	grants := make(map[modules.ID]Grant, len(rows))
	for _, row := range rows {
		grants[row.Module] = row.Grant
	}
	return Policy{kind: PolicyEnforced, grants: grants}
}

// Kind returns the policy variant.
func (p Policy) Kind() PolicyKind {
	return p.kind
}

// CanView reports whether the module may be shown. Unknown module IDs in
// stored rows are inert: they grant nothing and raise nothing.
func (p Policy) CanView(id modules.ID) bool {
	if p.kind == PolicyUnrestricted {
		return true
	}
	return p.grants[id].CanView
}

// Grant returns the stored grant for a module. Under the unrestricted
// policy every module reports a full grant.
func (p Policy) Grant(id modules.ID) Grant {
	if p.kind == PolicyUnrestricted {
		return Grant{CanView: true, CanCreate: true, CanEdit: true, CanDelete: true}
	}
	return p.grants[id]
}
