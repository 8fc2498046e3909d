package teams

import (
	"crypto/rand"
	"strings"
)

// Join-code alphabet: uppercase alphanumerics minus the glyphs people misread
// over a team chat (0/O, 1/I). 32 symbols, so a random byte maps without bias.
const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const JoinCodeLength = 6

// GenerateJoinCode draws a 6-character code from a CSPRNG.
func GenerateJoinCode() (string, error) {
	b := make([]byte, JoinCodeLength)

	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(JoinCodeLength)

	for _, c := range b {
		sb.WriteByte(joinCodeAlphabet[int(c)%len(joinCodeAlphabet)])
	}

	return sb.String(), nil
}

// NormalizeJoinCode maps user input to canonical form.
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
