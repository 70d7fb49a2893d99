package authz

import (
	"log/slog"
	"net/http"

	"github.com/cinedesk/cinedesk/internal/session"
)

// State is the outcome of evaluating a navigation against the route table.
type State string

const (
	// StateLoading means the credential read has not resolved; render a
	// neutral placeholder and never a redirect.
	StateLoading State = "loading"
	// StateUnauthenticated means no principal is present.
	StateUnauthenticated State = "unauthenticated"
	// StateForbidden means the principal's role is outside the allowed set.
	StateForbidden State = "forbidden"
	// StateAuthorized means the nested content may render unchanged.
	StateAuthorized State = "authorized"
)

// Decision carries the guard state and, for redirect states, the target path.
type Decision struct {
	State    State
	Redirect string
}

const loginPath = "/login"

// Evaluate runs the route-guard state machine. It is a pure function of the
// session snapshot and the path: no prior navigation influences the result.
func Evaluate(policy Policy, sess session.Session, path string) Decision {
	if sess.Status == session.StatusLoading {
		return Decision{State: StateLoading}
	}
	if sess.Principal == nil {
		return Decision{State: StateUnauthenticated, Redirect: loginPath}
	}
	rule, ok := Lookup(policy, path)
	if ok && !rule.Allows(sess.Principal.Role) {
		return Decision{State: StateForbidden, Redirect: Home(sess.Principal.Role)}
	}
	if !ok && !sess.Principal.Role.Valid() {
		return Decision{State: StateForbidden, Redirect: loginPath}
	}
	return Decision{State: StateAuthorized}
}

// Home maps a role to its dashboard, the fallback target for forbidden
// navigations. Unknown roles land on the login screen.
func Home(role session.Role) string {
	switch role {
	case session.RoleEmployee:
		return "/employee"
	case session.RoleManager:
		return "/manager"
	case session.RoleAdmin:
		return "/admin"
	}
	return loginPath
}

// Guard adapts the state machine to chi route groups.
type Guard struct {
	Policy Policy
	Logger *slog.Logger
}

// Protect gates every request under a route group. A failed authorization
// answers with a redirect, never an error body.
func (g Guard) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := Evaluate(g.Policy, session.FromContext(r.Context()), r.URL.Path)
		switch decision.State {
		case StateAuthorized:
			next.ServeHTTP(w, r)
		case StateLoading:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("<!doctype html><title>Loading</title><p>Loading…</p>"))
		default:
			if g.Logger != nil && decision.State == StateForbidden {
				g.Logger.Info("navigation outside role, redirecting",
					slog.String("path", r.URL.Path),
					slog.String("target", decision.Redirect))
			}
			http.Redirect(w, r, decision.Redirect, http.StatusSeeOther)
		}
	})
}
