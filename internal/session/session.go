// Package session maps opaque signed tokens to user identities with a fixed
// time-to-live. It is the single source of truth for "who is this caller" on
// both the REST path and the websocket handshake.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// CookieName is the HTTP-only cookie carrying the session token. REST
// handlers and the websocket handshake read it identically.
const CookieName = "session_token"

// DefaultTTL bounds a session's lifetime from creation; it does not slide.
const DefaultTTL = 7 * 24 * time.Hour

// Store issues, resolves, and revokes session tokens.
//
// Resolve never fails for an unknown token: absence is a normal outcome and
// is reported as ok=false. Backend outages degrade the same way, so a caller
// with an unreachable store is treated as unauthenticated rather than erroring.
type Store interface {
	Create(ctx context.Context, userID int64) (string, error)
	Resolve(ctx context.Context, token string) (userID int64, ok bool)
	Revoke(ctx context.Context, token string) error
}

const tokenRawSize = 24

// Codec signs and verifies session tokens. A token is random material plus an
// HMAC over it, so forged or truncated tokens are rejected before any store
// lookup.
type Codec struct {
	secret []byte
}

// NewCodec builds a Codec around the shared signing secret.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("session: signing secret is required")
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Issue generates a fresh signed token.
func (c *Codec) Issue() (string, error) {
	raw := make([]byte, tokenRawSize)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw) + "." + c.sign(raw), nil
}

// Verify reports whether token is well formed and carries a valid signature.
func (c *Codec) Verify(token string) bool {
	body, sig, found := strings.Cut(token, ".")
	if !found {
		return false
	}
	raw, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil || len(raw) != tokenRawSize {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(c.sign(raw)))
}

func (c *Codec) sign(raw []byte) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(raw)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
