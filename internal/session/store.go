package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// FlashMessage represents a one-time notification stored with the credential.
type FlashMessage struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Store is the single source of truth for "who is logged in". It persists a
// serialized principal in Redis under a cookie-carried credential ID. The
// expiry is set at write time and enforced by Redis itself; it is not
// re-validated on read.
type Store struct {
	client     *redis.Client
	logger     *slog.Logger
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
}

// Record holds per-request identity state loaded from the credential store.
type Record struct {
	ID        string
	staleID   string
	principal *Principal
	values    map[string]string
	flashes   []FlashMessage
	isNew     bool
	dirty     bool
	destroyed bool
	epoch     int64
}

type credentialPayload struct {
	Principal *Principal        `json:"principal,omitempty"`
	Values    map[string]string `json:"values,omitempty"`
	Flashes   []FlashMessage    `json:"flashes,omitempty"`
}

// NewStore constructs a Store.
func NewStore(client *redis.Client, logger *slog.Logger, cookieName, secret string, ttl time.Duration, secure bool) *Store {
	return &Store{
		client:     client,
		logger:     logger,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
	}
}

// Load reconstitutes identity state from the persisted credential. It never
// fails outward: a missing, malformed or unreadable credential degrades to a
// fresh logged-out record.
func (s *Store) Load(ctx context.Context, r *http.Request) *Record {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		return s.newRecord()
	}

	payload, err := s.client.Get(ctx, s.redisKey(cookie.Value)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && s.logger != nil {
			s.logger.Warn("credential read failed", slog.Any("error", err))
		}
		rec := s.newRecord()
		rec.ID = cookie.Value
		return rec
	}

	var stored credentialPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		if s.logger != nil {
			s.logger.Warn("credential malformed, treating as absent", slog.Any("error", err))
		}
		rec := s.newRecord()
		rec.ID = cookie.Value
		return rec
	}
	if stored.Principal != nil && !stored.Principal.Role.Valid() {
		if s.logger != nil {
			s.logger.Warn("credential carries unknown role, treating as absent",
				slog.String("role", string(stored.Principal.Role)))
		}
		stored.Principal = nil
	}

	rec := s.newRecord()
	rec.ID = cookie.Value
	rec.principal = stored.Principal
	rec.values = stored.Values
	rec.flashes = stored.Flashes
	rec.isNew = false
	rec.dirty = false
	return rec
}

// Commit persists the record and writes cookie headers as needed. A failed
// write is returned so callers can log it, but the in-memory principal stays
// valid for the current request.
func (s *Store) Commit(ctx context.Context, w http.ResponseWriter, rec *Record) error {
	if rec == nil {
		return nil
	}

	if rec.staleID != "" && rec.staleID != rec.ID {
		if err := s.client.Del(ctx, s.redisKey(rec.staleID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			if s.logger != nil {
				s.logger.Warn("stale credential delete failed", slog.Any("error", err))
			}
		}
		rec.staleID = ""
	}

	if rec.destroyed {
		if err := s.client.Del(ctx, s.redisKey(rec.ID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			if s.logger != nil {
				s.logger.Warn("credential delete failed", slog.Any("error", err))
			}
		}
		http.SetCookie(w, &http.Cookie{
			Name:     s.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteStrictMode,
		})
		return nil
	}

	if rec.isNew && rec.ID == "" {
		rec.ID = s.generateCredentialID()
	}

	if rec.dirty || rec.isNew {
		payload := credentialPayload{Principal: rec.principal, Values: rec.values, Flashes: rec.flashes}
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		if err := s.client.Set(ctx, s.redisKey(rec.ID), data, s.ttl).Err(); err != nil {
			return err
		}
		rec.dirty = false
	}

	if rec.ID != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     s.cookieName,
			Value:    rec.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteStrictMode,
			Expires:  time.Now().Add(s.ttl),
		})
	}
	return nil
}

// Destroy marks the credential for deletion on the next commit and bumps the
// record's epoch so an in-flight login against the same record can detect it.
func (s *Store) Destroy(rec *Record) {
	if rec == nil {
		return
	}
	rec.destroyed = true
	rec.epoch++
}

// TTL exposes the configured credential lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// CookieName returns the cookie slot carrying the credential ID.
func (s *Store) CookieName() string {
	return s.cookieName
}

// Record helpers

// Snapshot derives the resolved session view consumed by the route guard.
func (r *Record) Snapshot() Session {
	if r == nil {
		return Resolved(nil)
	}
	if r.destroyed {
		return Resolved(nil)
	}
	return Resolved(r.principal)
}

// Principal returns the in-memory principal, nil when logged out.
func (r *Record) Principal() *Principal {
	if r == nil || r.destroyed {
		return nil
	}
	return r.principal
}

// SetPrincipal replaces the stored principal and rotates the credential ID so
// a cookie value chosen before authentication never names an authenticated
// credential. The old credential entry is deleted on the next commit.
func (r *Record) SetPrincipal(p *Principal) {
	if r.ID != "" && r.staleID == "" {
		r.staleID = r.ID
	}
	r.ID = uuid.NewString()
	r.principal = p
	r.destroyed = false
	r.dirty = true
}

// ClearPrincipal drops the principal while keeping the record alive.
func (r *Record) ClearPrincipal() {
	r.principal = nil
	r.dirty = true
}

// Epoch counts how many times this record has been destroyed. Callers with a
// long-running operation can snapshot it to detect a concurrent logout of the
// same session.
func (r *Record) Epoch() int64 {
	if r == nil {
		return 0
	}
	return r.epoch
}

// CurrentRole returns the principal's role, or "" when logged out.
func (r *Record) CurrentRole() Role {
	if p := r.Principal(); p != nil {
		return p.Role
	}
	return ""
}

// Set stores a key-value pair alongside the credential.
func (r *Record) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	r.values[key] = value
	r.dirty = true
}

// Get retrieves a stored value.
func (r *Record) Get(key string) string {
	if r.values == nil {
		return ""
	}
	return r.values[key]
}

// Delete removes a stored value.
func (r *Record) Delete(key string) {
	if r.values == nil {
		return
	}
	delete(r.values, key)
	r.dirty = true
}

// AddFlash queues a flash message.
func (r *Record) AddFlash(msg FlashMessage) {
	r.flashes = append(r.flashes, msg)
	r.dirty = true
}

// PopFlash retrieves and clears the oldest flash message.
func (r *Record) PopFlash() *FlashMessage {
	if len(r.flashes) == 0 {
		return nil
	}
	msg := r.flashes[0]
	r.flashes = r.flashes[1:]
	r.dirty = true
	return &msg
}

func (s *Store) newRecord() *Record {
	return &Record{
		ID:     s.generateCredentialID(),
		values: make(map[string]string),
		isNew:  true,
		dirty:  true,
	}
}

func (s *Store) redisKey(id string) string {
	return "credential:" + id
}

func (s *Store) generateCredentialID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	if len(s.secret) > 0 {
		for i := range b {
			b[i] ^= s.secret[i%len(s.secret)]
		}
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
