package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"
)

var (
	// ErrNoSession means the caller is anonymous: missing, expired or
	// destroyed session. Routes that allow anonymous access treat this as
	// business as usual.
	ErrNoSession = errors.New("no valid session")

	// ErrInvalidCredentials covers both unknown username and wrong password,
	// deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Session is the server-side record a cookie points at. The only field ever
// trusted from it during request handling is UserID; role and profile are
// re-fetched from the user row on every request.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store persists sessions. Get returns ErrNoSession for unknown ids.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

// NewSessionID returns an opaque, unguessable session id (256 bits).
func NewSessionID() (string, error) {
	b := make([]byte, 32)

	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
