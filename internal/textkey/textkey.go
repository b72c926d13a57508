// Package textkey turns raw message text into the canonical comparison key
// and fixed-size fingerprint used for duplicate detection. Both functions are
// pure: identical input always yields identical output, which is what makes
// detection work across process restarts.
package textkey

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Normalize canonicalizes raw text for comparison: it lower-cases, collapses
// runs of whitespace to single spaces, and trims the ends. Punctuation,
// digits, and emoji are preserved; matching is exact after normalization,
// not fuzzy. Normalize is total and idempotent.
func Normalize(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}

// Fingerprint maps a canonical key to a lowercase hex SHA-256 digest.
// Cryptographic strength is incidental; the digest is used purely as a
// collision-resistant content key.
func Fingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
