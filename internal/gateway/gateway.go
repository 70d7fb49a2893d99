// Package gateway translates credentials into a principal via the remote
// Users service.
package gateway

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cinedesk/cinedesk/internal/clients/users"
	"github.com/cinedesk/cinedesk/internal/session"
)

// Authenticator is the slice of the Users service the gateway depends on.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (users.User, error)
}

// Gateway owns the login and logout flows. Its only side effect on success is
// a single SetPrincipal on the identity record; failures leave the record
// untouched.
type Gateway struct {
	users  Authenticator
	store  *session.Store
	logger *slog.Logger
}

// New constructs a Gateway.
func New(usersClient Authenticator, store *session.Store, logger *slog.Logger) *Gateway {
	return &Gateway{users: usersClient, store: store, logger: logger}
}

// Login validates the credentials, issues one authentication request, and on
// success stores the principal on the record with the configured TTL.
//
// A logout of the same record racing the in-flight request wins: the late
// principal is dropped and ErrLoginSuperseded returned. Logouts of other
// sessions never interfere.
func (g *Gateway) Login(ctx context.Context, rec *session.Record, username, password string) (*session.Principal, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" {
		return nil, &ValidationError{Field: "username", Reason: "required"}
	}
	if password == "" {
		return nil, &ValidationError{Field: "password", Reason: "required"}
	}

	before := rec.Epoch()
	user, err := g.users.Authenticate(ctx, username, password)
	if err != nil {
		if g.logger != nil {
			g.logger.Info("authentication failed", slog.Any("error", err))
		}
		return nil, &AuthenticationError{cause: err}
	}
	role, ok := session.ParseRole(user.Type)
	if !ok {
		if g.logger != nil {
			g.logger.Warn("users service returned unknown role", slog.String("role", user.Type))
		}
		return nil, &AuthenticationError{}
	}
	principal := &session.Principal{
		ID:       user.ID,
		Username: user.Username,
		Role:     role,
		Email:    user.Email,
		Phone:    user.Phone,
	}

	if rec.Epoch() != before {
		return nil, ErrLoginSuperseded
	}
	rec.SetPrincipal(principal)
	return principal, nil
}

// Logout clears the identity record. It cannot fail: credential deletion is
// best effort and happens on commit.
func (g *Gateway) Logout(rec *session.Record) {
	g.store.Destroy(rec)
}

// TTL exposes the credential lifetime applied at login.
func (g *Gateway) TTL() time.Duration {
	return g.store.TTL()
}
