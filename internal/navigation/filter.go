package navigation

import "github.com/bodyworks/bodyworks/internal/authz"

// Filter reduces menu groups to the entries the caller may see, preserving
// declared order. Elevated roles and the unrestricted policy short-circuit
// to full visibility; otherwise an entry survives only with an explicit
// can_view grant for its module. Groups that filter to zero entries are
// dropped.
func Filter(groups []Group, access authz.Access, policy authz.Policy) []Group {
	if access.HasAdminAccess() {
		return groups
	}
	if policy.Kind() == authz.PolicyUnrestricted {
		return groups
	}
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		entries := make([]Entry, 0, len(g.Entries))
		for _, e := range g.Entries {
			if policy.CanView(e.Module) {
				entries = append(entries, e)
			}
		}
		if len(entries) == 0 {
			continue
		}
		out = append(out, Group{Name: g.Name, Entries: entries})
	}
	return out
}

// Menu assembles the complete navigation tree for a caller: the filtered
// sections, the Admin group for admins, and the Super Admin group for
// super admins. The two admin groups bypass module permissions entirely.
func Menu(access authz.Access, policy authz.Policy) []Group {
	menu := Filter(Groups(), access, policy)
	if access.HasAdminAccess() {
		menu = append(menu, AdminGroup())
	}
	if access.IsSuperAdmin {
		menu = append(menu, SuperAdminGroup())
	}
	return menu
}
