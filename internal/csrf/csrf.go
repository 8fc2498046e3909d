package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
)

const (
	// CookieName holds the server-issued token. Deliberately not HttpOnly:
	// the double-submit scheme requires the frontend to read it back and
	// echo it in the header.
	CookieName = "csrf_token"

	HeaderName = "X-CSRF-Token"

	tokenBytes = 32
)

// IssueToken mints a fresh random token for the cookie/header pair.
func IssueToken() (string, error) {
	b := make([]byte, tokenBytes)

	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// Verify performs the double-submit comparison in constant time. Both sides
// must be present and equal.
func Verify(headerToken, cookieToken string) bool {
	if headerToken == "" || cookieToken == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(headerToken), []byte(cookieToken)) == 1
}
