package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"golang.org/x/crypto/scrypt"
)

func legacyScryptHash(t *testing.T, plain, salt string) string {
	t.Helper()

	key, err := scrypt.Key([]byte(plain), []byte(salt), scryptN, scryptR, scryptP, scryptKeyLen)

	if err != nil {
		t.Fatalf("scrypt: %v", err)
	}

	return hex.EncodeToString(key) + "." + salt
}

func legacySHA256Hash(plain, salt string) string {
	sum := sha256.Sum256([]byte(salt + plain))
	return hex.EncodeToString(sum[:]) + "." + salt
}

func TestHashVerifyRoundTrip(t *testing.T) {
	h := NewHasher(2)
	ctx := context.Background()

	passwords := []string{
		"Secret123!",
		"",
		"пароль-юникод-密码",
		strings.Repeat("long-password-", 20), // 280 chars
	}

	for _, plain := range passwords {
		encoded, err := h.Hash(ctx, plain)

		if err != nil {
			t.Fatalf("Hash(%q): %v", plain, err)
		}

		if !strings.HasPrefix(encoded, "$argon2id$") {
			t.Fatalf("expected argon2id encoding, got %q", encoded)
		}

		matched, legacy := h.Verify(ctx, plain, encoded)

		if !matched {
			t.Fatalf("Verify(%q) did not match its own hash", plain)
		}

		if legacy {
			t.Fatalf("fresh hash reported as legacy")
		}

		matched, _ = h.Verify(ctx, plain+"x", encoded)

		if matched {
			t.Fatalf("Verify matched wrong password")
		}
	}
}

func TestVerifyLegacyScrypt(t *testing.T) {
	h := NewHasher(2)
	ctx := context.Background()

	encoded := legacyScryptHash(t, "Secret123!", "a1b2c3d4e5f60718")

	matched, legacy := h.Verify(ctx, "Secret123!", encoded)

	if !matched || !legacy {
		t.Fatalf("got matched=%v legacy=%v, want true/true", matched, legacy)
	}

	matched, _ = h.Verify(ctx, "wrong", encoded)

	if matched {
		t.Fatalf("wrong password matched legacy scrypt hash")
	}
}

func TestVerifyLegacySHA256(t *testing.T) {
	h := NewHasher(2)
	ctx := context.Background()

	encoded := legacySHA256Hash("Secret123!", "somesalt")

	matched, legacy := h.Verify(ctx, "Secret123!", encoded)

	if !matched || !legacy {
		t.Fatalf("got matched=%v legacy=%v, want true/true", matched, legacy)
	}

	matched, _ = h.Verify(ctx, "wrong", encoded)

	if matched {
		t.Fatalf("wrong password matched legacy sha256 hash")
	}
}

func TestVerifyMalformed(t *testing.T) {
	h := NewHasher(2)
	ctx := context.Background()

	cases := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"no_delimiter", "deadbeef"},
		{"bad_hex_digest", "zzzz.salt"},
		{"wrong_digest_length", "deadbeef.salt"},
		{"empty_salt", legacySHA256Hash("x", "s")[:65] + "."},
		{"truncated_phc", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA"},
		{"bad_phc_salt", "$argon2id$v=19$m=65536,t=1,p=4$!!!$ZGlnZXN0"},
		{"unknown_algorithm", "$bcrypt$whatever"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			matched, _ := h.Verify(ctx, "anything", tt.encoded)

			if matched {
				t.Fatalf("malformed hash %q matched", tt.encoded)
			}
		})
	}
}

func TestIsLegacy(t *testing.T) {
	if IsLegacy("") {
		t.Fatalf("empty hash should not be legacy")
	}

	if IsLegacy("$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$ZGlnZXN0") {
		t.Fatalf("argon2id hash should not be legacy")
	}

	if !IsLegacy(legacySHA256Hash("p", "s")) {
		t.Fatalf("hex pair hash should be legacy")
	}
}

func TestVerifyCancelledContext(t *testing.T) {
	h := NewHasher(1)

	// fill the only slot so acquire has to wait, then cancel
	h.slots <- struct{}{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	matched, legacy := h.Verify(ctx, "p", legacySHA256Hash("p", "s"))

	if matched || legacy {
		t.Fatalf("cancelled verify should report no match")
	}
}
