package login_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/cinedesk/cinedesk/internal/authz"
	"github.com/cinedesk/cinedesk/internal/clients/users"
	"github.com/cinedesk/cinedesk/internal/gateway"
	"github.com/cinedesk/cinedesk/internal/login"
	"github.com/cinedesk/cinedesk/internal/session"
	"github.com/cinedesk/cinedesk/internal/shared"
	"github.com/cinedesk/cinedesk/internal/view"
	_ "github.com/cinedesk/cinedesk/testing"
)

type stubUsers struct {
	user users.User
	err  error
}

func (s *stubUsers) Authenticate(ctx context.Context, username, password string) (users.User, error) {
	if s.err != nil {
		return users.User{}, s.err
	}
	return s.user, nil
}

type fixture struct {
	router *chi.Mux
	store  *session.Store
}

func newFixture(t *testing.T, auth *stubUsers) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := session.NewStore(client, nil, "user", "secret", time.Hour, false)
	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	renderer := &shared.Renderer{
		Engine: templates,
		CSRF:   shared.NewCSRFManager("csrfsecret"),
		Policy: authz.PolicyDisjoint,
	}
	gw := gateway.New(auth, store, nil)
	router := chi.NewRouter()
	login.NewHandler(nil, gw, renderer).MountRoutes(router)
	return fixture{router: router, store: store}
}

func withRecord(store *session.Store, req *http.Request) (*http.Request, *session.Record) {
	rec := store.Load(req.Context(), req)
	return req.WithContext(session.ContextWithRecord(req.Context(), rec)), rec
}

func TestShowLoginRendersForm(t *testing.T) {
	fx := newFixture(t, &stubUsers{})

	req, _ := withRecord(fx.store, httptest.NewRequest(http.MethodGet, "/login", nil))
	res := httptest.NewRecorder()
	fx.router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "<form") {
		t.Fatal("expected login form in body")
	}
}

func TestShowLoginRedirectsAuthenticated(t *testing.T) {
	fx := newFixture(t, &stubUsers{})

	req, rec := withRecord(fx.store, httptest.NewRequest(http.MethodGet, "/login", nil))
	rec.SetPrincipal(&session.Principal{ID: 1, Username: "m", Role: session.RoleManager})
	res := httptest.NewRecorder()
	fx.router.ServeHTTP(res, req)

	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", res.Code)
	}
	if loc := res.Header().Get("Location"); loc != "/manager" {
		t.Fatalf("expected /manager, got %s", loc)
	}
}

func postLogin(t *testing.T, fx fixture, username, password string) (*httptest.ResponseRecorder, *session.Record) {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req, rec := withRecord(fx.store, req)
	res := httptest.NewRecorder()
	fx.router.ServeHTTP(res, req)
	return res, rec
}

func TestSubmitLoginSuccessRedirectsToRoleHome(t *testing.T) {
	fx := newFixture(t, &stubUsers{user: users.User{ID: 2, Username: "emp", Type: "EMPLOYEE"}})

	res, rec := postLogin(t, fx, "emp", "pw")
	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", res.Code)
	}
	if loc := res.Header().Get("Location"); loc != "/employee" {
		t.Fatalf("expected /employee, got %s", loc)
	}
	if rec.Principal() == nil {
		t.Fatal("principal should be stored on the record")
	}
}

func TestSubmitLoginMissingFields(t *testing.T) {
	fx := newFixture(t, &stubUsers{})

	res, rec := postLogin(t, fx, "", "")
	if res.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", res.Code)
	}
	body := res.Body.String()
	if !strings.Contains(body, "Username is required.") || !strings.Contains(body, "Password is required.") {
		t.Fatal("expected field errors in body")
	}
	if rec.Principal() != nil {
		t.Fatal("failed login must not set a principal")
	}
}

func TestSubmitLoginBadCredentialsShowsGenericError(t *testing.T) {
	fx := newFixture(t, &stubUsers{err: context.DeadlineExceeded})

	res, rec := postLogin(t, fx, "emp", "wrong")
	if res.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", res.Code)
	}
	body := res.Body.String()
	if !strings.Contains(body, "Invalid username or password.") {
		t.Fatal("expected the generic error message")
	}
	if strings.Contains(body, "deadline") {
		t.Fatal("internal error details must not leak to the page")
	}
	if rec.Principal() != nil {
		t.Fatal("failed login must not set a principal")
	}
}

func TestLogoutDestroysSessionAndRedirects(t *testing.T) {
	fx := newFixture(t, &stubUsers{})

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req, rec := withRecord(fx.store, req)
	rec.SetPrincipal(&session.Principal{ID: 1, Username: "m", Role: session.RoleAdmin})

	res := httptest.NewRecorder()
	fx.router.ServeHTTP(res, req)

	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", res.Code)
	}
	if loc := res.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected /login, got %s", loc)
	}
	if rec.Principal() != nil {
		t.Fatal("logout must clear the principal")
	}
}
