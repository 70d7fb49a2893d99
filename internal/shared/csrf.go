package shared

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"time"

	"github.com/cinedesk/cinedesk/internal/session"
)

const (
	// CSRFSessionKey is the key used to persist tokens alongside the credential.
	CSRFSessionKey = "csrf_token"
	// CSRFFormField is the form field name carrying the CSRF token.
	CSRFFormField = "csrf_token"
)

// CSRFManager issues and verifies CSRF tokens bound to a credential record.
type CSRFManager struct {
	secret []byte
}

// NewCSRFManager returns a CSRFManager using the provided secret key.
func NewCSRFManager(secret string) *CSRFManager {
	return &CSRFManager{secret: []byte(secret)}
}

// EnsureToken retrieves or generates a CSRF token for the record.
func (m *CSRFManager) EnsureToken(ctx context.Context, rec *session.Record) (string, error) {
	if rec == nil {
		return "", errors.New("identity record missing")
	}
	if token := rec.Get(CSRFSessionKey); token != "" {
		return token, nil
	}
	token := m.generateToken(rec.ID)
	rec.Set(CSRFSessionKey, token)
	return token, nil
}

// VerifyToken compares the supplied token with the stored token.
func (m *CSRFManager) VerifyToken(ctx context.Context, rec *session.Record, token string) error {
	if rec == nil {
		return ErrCSRFTokenMissing
	}
	expected := rec.Get(CSRFSessionKey)
	if expected == "" {
		return ErrCSRFTokenMissing
	}
	if token == "" {
		return ErrCSRFTokenMissing
	}
	if !hmac.Equal([]byte(expected), []byte(token)) {
		return ErrCSRFTokenMismatch
	}
	return nil
}

func (m *CSRFManager) generateToken(recordID string) string {
	mac := hmac.New(sha256.New, m.secret)
	_, _ = mac.Write([]byte(recordID))
	_, _ = mac.Write([]byte{'|'})
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(time.Now().UnixNano()))
	_, _ = mac.Write(buf)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
