package authz_test

import (
	"testing"

	"github.com/cinedesk/cinedesk/internal/authz"
	"github.com/cinedesk/cinedesk/internal/session"
)

func TestParsePolicy(t *testing.T) {
	if _, ok := authz.ParsePolicy("disjoint"); !ok {
		t.Fatal("disjoint should parse")
	}
	if _, ok := authz.ParsePolicy("admin-inherits"); !ok {
		t.Fatal("admin-inherits should parse")
	}
	if _, ok := authz.ParsePolicy("everything"); ok {
		t.Fatal("unknown policy should not parse")
	}
}

func TestLookupPrefersLongestPrefix(t *testing.T) {
	rule, ok := authz.Lookup(authz.PolicyDisjoint, "/movies/view/12")
	if !ok {
		t.Fatal("expected a rule for /movies/view/12")
	}
	if rule.Prefix != "/movies/view" {
		t.Fatalf("expected /movies/view rule, got %s", rule.Prefix)
	}

	rule, ok = authz.Lookup(authz.PolicyDisjoint, "/movies")
	if !ok || rule.Prefix != "/movies" {
		t.Fatalf("expected /movies rule, got %+v ok=%v", rule, ok)
	}
}

func TestLookupMatchesSegmentBoundaries(t *testing.T) {
	// /moviesarchive must not match the /movies prefix.
	if _, ok := authz.Lookup(authz.PolicyDisjoint, "/moviesarchive"); ok {
		t.Fatal("partial segment must not match a rule")
	}
	if _, ok := authz.Lookup(authz.PolicyDisjoint, "/movies/"); !ok {
		t.Fatal("trailing slash should still match")
	}
}

func TestEveryRuleDeclaresItsOwnRoles(t *testing.T) {
	// A child group never widens through its parent: the edit prefix keeps
	// the writer roles even though /movies/view under the same parent is
	// readable by managers.
	edit, ok := authz.Lookup(authz.PolicyDisjoint, "/movies/edit/5")
	if !ok {
		t.Fatal("expected edit rule")
	}
	if edit.Allows(session.RoleManager) {
		t.Fatal("managers must not pass the edit rule")
	}
	view, ok := authz.Lookup(authz.PolicyDisjoint, "/movies/view/5")
	if !ok {
		t.Fatal("expected view rule")
	}
	if !view.Allows(session.RoleManager) {
		t.Fatal("managers must pass the view rule")
	}
}

func TestEmptyRoleSetMeansAnyAuthenticated(t *testing.T) {
	rule := authz.Rule{Prefix: "/x"}
	for _, role := range session.Roles() {
		if !rule.Allows(role) {
			t.Fatalf("empty role set should admit %s", role)
		}
	}
	if rule.Allows("") {
		t.Fatal("empty role set must not admit a missing role")
	}
	if rule.Allows("SUPERVISOR") {
		t.Fatal("empty role set must not admit an unknown role")
	}
}

func TestAdminInheritsWidensOnlyTheMovieSurface(t *testing.T) {
	admin := session.RoleAdmin

	for _, path := range []string{"/movies", "/movies/new", "/movies/view/1", "/movies/export", "/employee"} {
		rule, ok := authz.Lookup(authz.PolicyAdminInherits, path)
		if !ok {
			t.Fatalf("expected a rule for %s", path)
		}
		if !rule.Allows(admin) {
			t.Fatalf("admin-inherits should open %s to admins", path)
		}
	}

	// The variant never touches the cast or member surfaces.
	for _, path := range []string{"/casts", "/casts/new", "/casts/edit/2", "/casts/delete/2", "/members"} {
		rule, ok := authz.Lookup(authz.PolicyAdminInherits, path)
		if !ok {
			t.Fatalf("expected a rule for %s", path)
		}
		if rule.Allows(admin) {
			t.Fatalf("admin-inherits must keep %s closed to admins", path)
		}
	}
}

func TestCastMutationStaysEmployeeOnly(t *testing.T) {
	for _, policy := range []authz.Policy{authz.PolicyDisjoint, authz.PolicyAdminInherits} {
		for _, path := range []string{"/casts/new", "/casts/edit/7", "/casts/delete/7"} {
			rule, ok := authz.Lookup(policy, path)
			if !ok {
				t.Fatalf("policy %s: expected a rule for %s", policy, path)
			}
			if !rule.Allows(session.RoleEmployee) {
				t.Fatalf("policy %s: employees must pass %s", policy, path)
			}
			if rule.Allows(session.RoleManager) || rule.Allows(session.RoleAdmin) {
				t.Fatalf("policy %s: only employees may mutate casts, %s leaks", policy, path)
			}
		}
	}
}

func TestTableOrderedByDescendingPrefixLength(t *testing.T) {
	for _, policy := range []authz.Policy{authz.PolicyDisjoint, authz.PolicyAdminInherits} {
		rules := authz.Table(policy)
		for i := 1; i < len(rules); i++ {
			if len(rules[i-1].Prefix) < len(rules[i].Prefix) {
				t.Fatalf("policy %s: rules out of order at %d (%s before %s)",
					policy, i, rules[i-1].Prefix, rules[i].Prefix)
			}
		}
	}
}
