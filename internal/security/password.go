package security

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/scrypt"
)

// argon2id parameters (OWASP recommended).
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2SaltLen = 16
	argon2KeyLen  = 32
)

// legacy scrypt parameters, matching the hashes we inherited.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
)

// Hasher hashes and verifies passwords. It understands three stored formats:
//
//   - modern:  $argon2id$v=19$m=...,t=...,p=...$<salt>$<digest>  (PHC string)
//   - legacy:  <128 hex chars>.<salt>   scrypt, 64-byte key
//   - legacy:  <64 hex chars>.<salt>    sha256(salt + password)
//
// Hashing is CPU-bound, so every Hash/Verify call takes a slot from a bounded
// pool; callers block (or bail out via ctx) rather than oversubscribing the
// process.
type Hasher struct {
	slots chan struct{}
}

func NewHasher(maxConcurrent int) *Hasher {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	return &Hasher{
		slots: make(chan struct{}, maxConcurrent),
	}
}

func (h *Hasher) acquire(ctx context.Context) error {
	select {
	case h.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hasher) release() {
	<-h.slots
}

// Hash produces a PHC-encoded argon2id hash of the password.
func (h *Hasher) Hash(ctx context.Context, plain string) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.release()

	salt := make([]byte, argon2SaltLen)

	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	digest := argon2.IDKey([]byte(plain), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)

	return encoded, nil
}

// Verify reports whether plain matches the stored encoded hash, and whether
// that hash is in a legacy format that should be re-hashed on success.
// Unrecognized or malformed input is a mismatch, never an error: a user with
// a broken or absent hash simply cannot log in with a password.
func (h *Hasher) Verify(ctx context.Context, plain, encoded string) (matched bool, legacy bool) {
	if encoded == "" {
		return false, false
	}

	if err := h.acquire(ctx); err != nil {
		return false, false
	}
	defer h.release()

	if strings.HasPrefix(encoded, "$argon2id$") {
		return verifyArgon2id(plain, encoded), false
	}

	// legacy "<digest>.<salt>" hex pair
	digestHex, salt, ok := strings.Cut(encoded, ".")

	if !ok || digestHex == "" || salt == "" {
		return false, false
	}

	expected, err := hex.DecodeString(digestHex)

	if err != nil {
		return false, false
	}

	switch len(expected) {
	case scryptKeyLen:
		computed, err := scrypt.Key([]byte(plain), []byte(salt), scryptN, scryptR, scryptP, scryptKeyLen)
		if err != nil {
			return false, false
		}
		return subtle.ConstantTimeCompare(computed, expected) == 1, true

	case sha256.Size:
		sum := sha256.Sum256([]byte(salt + plain))
		return subtle.ConstantTimeCompare(sum[:], expected) == 1, true
	}

	return false, false
}

func verifyArgon2id(plain, encoded string) bool {
	parts := strings.Split(encoded, "$")

	if len(parts) != 6 {
		return false
	}

	var version int

	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false
	}

	var memory, time, threads uint32

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}

	if threads == 0 || threads > 255 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])

	if err != nil {
		return false
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])

	if err != nil || len(expected) == 0 || len(expected) > 1024 {
		return false
	}

	computed := argon2.IDKey([]byte(plain), salt, time, memory, uint8(threads), uint32(len(expected)))

	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// IsLegacy reports whether a stored hash is in one of the legacy formats.
func IsLegacy(encoded string) bool {
	return encoded != "" && !strings.HasPrefix(encoded, "$argon2id$")
}
