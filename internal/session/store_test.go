package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/cinedesk/cinedesk/internal/session"
)

func newStore(t *testing.T) (*session.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return session.NewStore(client, nil, "user", "secret", time.Hour, false), mr
}

func sessionCookie(t *testing.T, res *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range res.Result().Cookies() {
		if c.Name == "user" {
			return c
		}
	}
	t.Fatal("credential cookie not set")
	return nil
}

func TestPrincipalSurvivesReload(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	rec := store.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	rec.SetPrincipal(&session.Principal{ID: 7, Username: "alice", Role: session.RoleManager})

	res := httptest.NewRecorder()
	if err := store.Commit(ctx, res, rec); err != nil {
		t.Fatalf("commit: %v", err)
	}
	cookie := sessionCookie(t, res)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	reloaded := store.Load(ctx, req)

	p := reloaded.Principal()
	if p == nil {
		t.Fatal("expected principal after reload")
	}
	if p.ID != 7 || p.Username != "alice" || p.Role != session.RoleManager {
		t.Fatalf("principal mangled on reload: %+v", p)
	}
}

func TestLoadWithoutCookieIsLoggedOut(t *testing.T) {
	store, _ := newStore(t)
	rec := store.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	if rec == nil {
		t.Fatal("load must always return a record")
	}
	if rec.Principal() != nil {
		t.Fatal("fresh record must be logged out")
	}
}

func TestMalformedCredentialDegradesToLoggedOut(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	mr.Set("credential:broken", "{not json")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "user", Value: "broken"})

	rec := store.Load(ctx, req)
	if rec.Principal() != nil {
		t.Fatal("malformed credential must resolve to logged out")
	}
}

func TestUnknownRoleCredentialDegradesToLoggedOut(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	mr.Set("credential:odd", `{"principal":{"id":1,"username":"x","role":"SUPERVISOR"}}`)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "user", Value: "odd"})

	rec := store.Load(ctx, req)
	if rec.Principal() != nil {
		t.Fatal("credential with unknown role must resolve to logged out")
	}
}

func TestRedisDownDegradesToLoggedOut(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "user", Value: "whatever"})
	mr.Close()

	rec := store.Load(ctx, req)
	if rec == nil {
		t.Fatal("load must not fail outward when the store is down")
	}
	if rec.Principal() != nil {
		t.Fatal("unreadable credential must resolve to logged out")
	}
}

func TestDestroyDeletesCredentialAndExpiresCookie(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	rec := store.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	rec.SetPrincipal(&session.Principal{ID: 1, Username: "bob", Role: session.RoleEmployee})
	res := httptest.NewRecorder()
	if err := store.Commit(ctx, res, rec); err != nil {
		t.Fatalf("commit: %v", err)
	}
	cookie := sessionCookie(t, res)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rec = store.Load(ctx, req)
	store.Destroy(rec)

	res = httptest.NewRecorder()
	if err := store.Commit(ctx, res, rec); err != nil {
		t.Fatalf("commit destroy: %v", err)
	}
	if mr.Exists("credential:" + cookie.Value) {
		t.Fatal("credential should be deleted from the store")
	}
	expired := sessionCookie(t, res)
	if expired.MaxAge != -1 {
		t.Fatalf("cookie should be expired, got MaxAge=%d", expired.MaxAge)
	}
	if rec.Principal() != nil {
		t.Fatal("destroyed record must report no principal")
	}
}

func TestSetPrincipalRotatesPresetCredentialID(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	// A cookie value planted before authentication must never name the
	// authenticated credential.
	mr.Set("credential:planted", `{}`)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "user", Value: "planted"})

	rec := store.Load(ctx, req)
	rec.SetPrincipal(&session.Principal{ID: 4, Username: "dana", Role: session.RoleEmployee})

	res := httptest.NewRecorder()
	if err := store.Commit(ctx, res, rec); err != nil {
		t.Fatalf("commit: %v", err)
	}
	cookie := sessionCookie(t, res)
	if cookie.Value == "planted" {
		t.Fatal("credential ID must rotate when a principal is set")
	}
	if mr.Exists("credential:planted") {
		t.Fatal("the planted credential entry must be removed")
	}
	if !mr.Exists("credential:" + cookie.Value) {
		t.Fatal("the rotated credential entry must be persisted")
	}
}

func TestCredentialExpiryIsSetAtWrite(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	rec := store.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	rec.SetPrincipal(&session.Principal{ID: 3, Username: "carol", Role: session.RoleAdmin})
	res := httptest.NewRecorder()
	if err := store.Commit(ctx, res, rec); err != nil {
		t.Fatalf("commit: %v", err)
	}
	cookie := sessionCookie(t, res)

	ttl := mr.TTL("credential:" + cookie.Value)
	if ttl <= 0 || ttl > time.Hour {
		t.Fatalf("expected a TTL up to one hour, got %v", ttl)
	}

	// The storage medium owns expiry: once it lapses, the principal is gone.
	mr.FastForward(2 * time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	if store.Load(ctx, req).Principal() != nil {
		t.Fatal("expired credential must resolve to logged out")
	}
}

func TestFlashMessagesPopOnce(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	rec := store.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	rec.AddFlash(session.FlashMessage{Kind: "success", Message: "saved"})

	res := httptest.NewRecorder()
	if err := store.Commit(ctx, res, rec); err != nil {
		t.Fatalf("commit: %v", err)
	}
	cookie := sessionCookie(t, res)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec = store.Load(ctx, req)

	flash := rec.PopFlash()
	if flash == nil || flash.Message != "saved" {
		t.Fatalf("expected flash to survive a reload, got %+v", flash)
	}
	if rec.PopFlash() != nil {
		t.Fatal("flash must pop only once")
	}
}

func TestSnapshotStates(t *testing.T) {
	var nilRecord *session.Record
	if snap := nilRecord.Snapshot(); snap.Authenticated() {
		t.Fatal("nil record must resolve to logged out")
	}
	loading := session.Loading()
	if loading.Status != session.StatusLoading {
		t.Fatalf("expected loading status, got %v", loading.Status)
	}
	if loading.Authenticated() {
		t.Fatal("loading session must not count as authenticated")
	}
}
