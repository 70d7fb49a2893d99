package authz

import "github.com/cinedesk/cinedesk/internal/session"

// Capability predicates derive role checks from the route table so screens do
// not re-encode role literals. A predicate is true exactly when the guard
// would authorize the same role on the corresponding route.

func allowed(policy Policy, path string, role session.Role) bool {
	rule, ok := Lookup(policy, path)
	if !ok {
		return role.Valid()
	}
	return rule.Allows(role)
}

// CanManageMovies reports whether the role may create, edit or delete movies.
func CanManageMovies(policy Policy, role session.Role) bool {
	return allowed(policy, "/movies/new", role)
}

// CanMutateCasts reports whether the role may create, edit or delete cast
// assignments. The cast list itself is visible to a wider audience.
func CanMutateCasts(policy Policy, role session.Role) bool {
	return allowed(policy, "/casts/new", role)
}

// CanManageMembers reports whether the role may administer catalog members.
func CanManageMembers(policy Policy, role session.Role) bool {
	return allowed(policy, "/members", role)
}

// CanManageUsers reports whether the role may administer user accounts.
func CanManageUsers(policy Policy, role session.Role) bool {
	return allowed(policy, "/admin/users", role)
}

// CanViewStats reports whether the role may open the statistics screen.
func CanViewStats(policy Policy, role session.Role) bool {
	return allowed(policy, "/manager/stats", role)
}

// CanExportMovies reports whether the role may reach the export screen.
func CanExportMovies(policy Policy, role session.Role) bool {
	return allowed(policy, "/movies/export", role)
}
