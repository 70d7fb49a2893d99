package authz

import (
	"sort"
	"strings"

	"github.com/cinedesk/cinedesk/internal/session"
)

// Policy selects one of the two route tables observed in production. Both are
// kept as data so deployments can switch without code changes.
type Policy string

const (
	// PolicyDisjoint keeps the admin surface fully separate from the employee
	// catalog permissions.
	PolicyDisjoint Policy = "disjoint"
	// PolicyAdminInherits grants admins the employee movie permissions on top
	// of their own user-management surface.
	PolicyAdminInherits Policy = "admin-inherits"
)

// ParsePolicy maps a configuration value onto a known policy.
func ParsePolicy(value string) (Policy, bool) {
	switch Policy(value) {
	case PolicyDisjoint, PolicyAdminInherits:
		return Policy(value), true
	}
	return "", false
}

// Rule associates a protected path prefix with the set of roles permitted to
// enter. An empty role set means "any authenticated role", never "public".
type Rule struct {
	Prefix string
	Roles  []session.Role
}

// Allows reports whether the rule admits the given role.
func (r Rule) Allows(role session.Role) bool {
	if len(r.Roles) == 0 {
		return role.Valid()
	}
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

var (
	employeeOnly    = []session.Role{session.RoleEmployee}
	managerOnly     = []session.Role{session.RoleManager}
	adminOnly       = []session.Role{session.RoleAdmin}
	catalogReaders  = []session.Role{session.RoleEmployee, session.RoleManager}
	anyAuthenticated []session.Role
)

// Table returns the RouteAuthorization records for the given policy, ordered
// by descending prefix length so lookup can take the first match. The
// admin-inherits variant widens the movie surface only; the cast mutation
// prefixes stay employee-only under both policies.
func Table(policy Policy) []Rule {
	catalogWriters := employeeOnly
	viewers := catalogReaders
	if policy == PolicyAdminInherits {
		catalogWriters = []session.Role{session.RoleEmployee, session.RoleAdmin}
		viewers = []session.Role{session.RoleEmployee, session.RoleManager, session.RoleAdmin}
	}

	rules := []Rule{
		{Prefix: "/employee", Roles: catalogWriters},

		{Prefix: "/movies", Roles: catalogWriters},
		{Prefix: "/movies/new", Roles: catalogWriters},
		{Prefix: "/movies/edit", Roles: catalogWriters},
		{Prefix: "/movies/delete", Roles: catalogWriters},
		{Prefix: "/movies/view", Roles: viewers},
		{Prefix: "/movies/export", Roles: viewers},
		{Prefix: "/movies/stats", Roles: anyAuthenticated},

		{Prefix: "/casts", Roles: catalogReaders},
		{Prefix: "/casts/view", Roles: catalogReaders},
		{Prefix: "/casts/new", Roles: employeeOnly},
		{Prefix: "/casts/edit", Roles: employeeOnly},
		{Prefix: "/casts/delete", Roles: employeeOnly},

		{Prefix: "/manager", Roles: managerOnly},
		{Prefix: "/members", Roles: managerOnly},

		{Prefix: "/admin", Roles: adminOnly},
	}

	sort.SliceStable(rules, func(i, j int) bool {
		return len(rules[i].Prefix) > len(rules[j].Prefix)
	})
	return rules
}

// Lookup finds the RouteAuthorization record governing a path. Matching is by
// longest prefix at path-segment boundaries; a child group never inherits its
// parent's role set implicitly because every group declares its own entry.
func Lookup(policy Policy, path string) (Rule, bool) {
	path = normalizePath(path)
	for _, rule := range Table(policy) {
		if matchesPrefix(path, rule.Prefix) {
			return rule, true
		}
	}
	return Rule{}, false
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

func matchesPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
