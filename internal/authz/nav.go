package authz

import "github.com/cinedesk/cinedesk/internal/session"

// NavEntry is a single navigation action offered to the current principal.
type NavEntry struct {
	Label  string
	Target string
	Icon   string
}

// NavEntries projects the visible navigation for a role. It is a pure
// function with no state of its own; every target it emits must be a route
// the guard would authorize for the same role (covered by tests against the
// route table). An empty role yields the single sign-in affordance.
func NavEntries(policy Policy, role session.Role) []NavEntry {
	switch role {
	case session.RoleEmployee:
		return []NavEntry{
			{Label: "Dashboard", Target: "/employee", Icon: "dashboard"},
			{Label: "Movies", Target: "/movies", Icon: "movie"},
			{Label: "Add Movie", Target: "/movies/new", Icon: "add"},
			{Label: "Casts", Target: "/casts", Icon: "group"},
			{Label: "Export", Target: "/movies/export", Icon: "export"},
		}
	case session.RoleManager:
		return []NavEntry{
			{Label: "Dashboard", Target: "/manager", Icon: "dashboard"},
			{Label: "Movies", Target: "/manager/movies", Icon: "movie"},
			{Label: "Members", Target: "/members", Icon: "person"},
			{Label: "Statistics", Target: "/manager/stats", Icon: "chart"},
			{Label: "Export", Target: "/movies/export", Icon: "export"},
		}
	case session.RoleAdmin:
		entries := []NavEntry{
			{Label: "Dashboard", Target: "/admin", Icon: "dashboard"},
			{Label: "Users", Target: "/admin/users", Icon: "people"},
		}
		if policy == PolicyAdminInherits {
			entries = append(entries,
				NavEntry{Label: "Movies", Target: "/movies", Icon: "movie"},
				NavEntry{Label: "Add Movie", Target: "/movies/new", Icon: "add"},
				NavEntry{Label: "Export", Target: "/movies/export", Icon: "export"},
			)
		}
		return entries
	}
	return []NavEntry{{Label: "Sign in", Target: loginPath, Icon: "login"}}
}
