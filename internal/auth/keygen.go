// Package auth provides bearer-token generation and hashing for C6/C12.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// tokenBytes is the amount of entropy in a freshly generated token
// (32 random bytes, per spec §4.7).
const tokenBytes = 32

// GenerateToken returns a new cryptographically random bearer token,
// URL-safe base64 encoded. The raw value is shown to the operator
// exactly once; only its hash is ever persisted.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken computes the HMAC-SHA256 of raw keyed by secret, hex
// encoded. Tokens are looked up by exact hash equality (a unique index
// on token_hash), not by trial comparison against a candidate set, so
// the hash must be a keyed MAC rather than a salted, per-row digest.
func HashToken(secret, raw string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
