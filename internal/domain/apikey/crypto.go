package apikey

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// DisplayPrefix tags every issued secret so holders can tell key types apart.
const DisplayPrefix = "sk_live"

const (
	secretBytes    = 24
	minSecretChars = 21
)

// Hash returns the hex-encoded SHA-256 digest of secret.
func Hash(secret string) string {
	h := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(h[:])
}

// Generate returns a fresh secret of the form "sk_live_<48 hex chars>" and
// the display prefix to store alongside its hash.
func Generate() (secret, prefix string, err error) {
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("read random: %w", err)
	}
	return DisplayPrefix + "_" + hex.EncodeToString(b), DisplayPrefix, nil
}

// ConstantTimeEqual compares a and b without leaking the position of the
// first mismatch. Strings of different length compare unequal.
func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// ValidFormat reports whether secret looks like a key this package issued.
func ValidFormat(secret string) bool {
	return strings.HasPrefix(secret, DisplayPrefix+"_") && len(secret) >= minSecretChars
}
