package gateway_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/cinedesk/cinedesk/internal/clients/users"
	"github.com/cinedesk/cinedesk/internal/gateway"
	"github.com/cinedesk/cinedesk/internal/session"
)

type stubAuthenticator struct {
	user   users.User
	err    error
	calls  int
	during func()
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, username, password string) (users.User, error) {
	s.calls++
	if s.during != nil {
		s.during()
	}
	if s.err != nil {
		return users.User{}, s.err
	}
	return s.user, nil
}

func newGateway(t *testing.T, auth *stubAuthenticator) (*gateway.Gateway, *session.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := session.NewStore(client, nil, "user", "secret", time.Hour, false)
	return gateway.New(auth, store, nil), store
}

func freshRecord(store *session.Store) *session.Record {
	return store.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestLoginEmptyCredentialsSkipNetwork(t *testing.T) {
	auth := &stubAuthenticator{}
	gw, store := newGateway(t, auth)
	rec := freshRecord(store)

	cases := []struct{ username, password, field string }{
		{"", "pw", "username"},
		{"   ", "pw", "username"},
		{"alice", "", "password"},
		{"alice", "   ", "password"},
		{"", "", "username"},
	}
	for _, tc := range cases {
		_, err := gw.Login(context.Background(), rec, tc.username, tc.password)
		var vErr *gateway.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("(%q,%q): expected validation error, got %v", tc.username, tc.password, err)
		}
		if vErr.Field != tc.field {
			t.Fatalf("(%q,%q): expected field %s, got %s", tc.username, tc.password, tc.field, vErr.Field)
		}
	}
	if auth.calls != 0 {
		t.Fatalf("validation failures must not hit the users service, saw %d calls", auth.calls)
	}
	if rec.Principal() != nil {
		t.Fatal("failed login must leave the record untouched")
	}
}

func TestLoginSuccessSetsPrincipal(t *testing.T) {
	auth := &stubAuthenticator{user: users.User{ID: 5, Username: "alice", Type: "MANAGER", Email: "a@x.test"}}
	gw, store := newGateway(t, auth)
	rec := freshRecord(store)

	principal, err := gw.Login(context.Background(), rec, "alice", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if principal.Role != session.RoleManager {
		t.Fatalf("expected MANAGER role, got %s", principal.Role)
	}
	stored := rec.Principal()
	if stored == nil || stored.ID != 5 || stored.Username != "alice" {
		t.Fatalf("record principal not set: %+v", stored)
	}
	if auth.calls != 1 {
		t.Fatalf("expected exactly one authentication request, saw %d", auth.calls)
	}
}

func TestLoginRejectionIsGeneric(t *testing.T) {
	auth := &stubAuthenticator{err: errors.New("users service returned status 401")}
	gw, store := newGateway(t, auth)
	rec := freshRecord(store)

	_, err := gw.Login(context.Background(), rec, "alice", "wrong")
	var aErr *gateway.AuthenticationError
	if !errors.As(err, &aErr) {
		t.Fatalf("expected authentication error, got %v", err)
	}
	// The user-facing message never distinguishes wrong-user from wrong-password.
	if aErr.Error() != "invalid username or password" {
		t.Fatalf("unexpected message: %s", aErr.Error())
	}
	if rec.Principal() != nil {
		t.Fatal("rejected login must leave the record untouched")
	}
}

func TestLoginUnknownRoleRejected(t *testing.T) {
	auth := &stubAuthenticator{user: users.User{ID: 9, Username: "odd", Type: "SUPERVISOR"}}
	gw, store := newGateway(t, auth)
	rec := freshRecord(store)

	_, err := gw.Login(context.Background(), rec, "odd", "pw")
	var aErr *gateway.AuthenticationError
	if !errors.As(err, &aErr) {
		t.Fatalf("expected authentication error for unknown role, got %v", err)
	}
	if rec.Principal() != nil {
		t.Fatal("unknown role must never become a principal")
	}
}

// A logout of the same session issued while its login request is in flight
// wins: the late response must not resurrect the session.
func TestLogoutSupersedesInFlightLogin(t *testing.T) {
	auth := &stubAuthenticator{user: users.User{ID: 5, Username: "alice", Type: "EMPLOYEE"}}
	gw, store := newGateway(t, auth)
	rec := freshRecord(store)

	auth.during = func() {
		gw.Logout(rec)
	}

	_, err := gw.Login(context.Background(), rec, "alice", "pw")
	if !errors.Is(err, gateway.ErrLoginSuperseded) {
		t.Fatalf("expected ErrLoginSuperseded, got %v", err)
	}
	if rec.Principal() != nil {
		t.Fatal("superseded login must not set a principal")
	}
}

// Another browser logging out must never supersede this session's login: the
// race guard is scoped to the record, not the process.
func TestUnrelatedLogoutDoesNotSupersedeLogin(t *testing.T) {
	auth := &stubAuthenticator{user: users.User{ID: 5, Username: "alice", Type: "EMPLOYEE"}}
	gw, store := newGateway(t, auth)
	rec := freshRecord(store)
	other := freshRecord(store)
	other.SetPrincipal(&session.Principal{ID: 8, Username: "bob", Role: session.RoleManager})

	auth.during = func() {
		gw.Logout(other)
	}

	principal, err := gw.Login(context.Background(), rec, "alice", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if principal == nil || rec.Principal() == nil {
		t.Fatal("login must succeed despite an unrelated logout")
	}
	if other.Principal() != nil {
		t.Fatal("the unrelated session must stay logged out")
	}
}

func TestLogoutDestroysRecord(t *testing.T) {
	auth := &stubAuthenticator{user: users.User{ID: 5, Username: "alice", Type: "ADMIN"}}
	gw, store := newGateway(t, auth)
	rec := freshRecord(store)

	if _, err := gw.Login(context.Background(), rec, "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	gw.Logout(rec)
	if rec.Principal() != nil {
		t.Fatal("logout must clear the principal")
	}
}
