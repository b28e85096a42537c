// Package codegen produces and validates short-link codes.
package codegen

import (
	"crypto/rand"
	"math/big"
	"regexp"

	"github.com/shortlink/shortlink/internal/apperr"
)

const (
	// autoLength is the length used for auto-generated codes: 62^11 is
	// comfortably above 2^64, giving the auto path ~65 bits of entropy.
	autoLength = 11

	minCustomLength = 6
	maxCustomLength = 64

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var customCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{6,64}$`)

// Auto samples a collision-resistant short code from a cryptographically
// strong source. Callers retry on store-reported collisions.
func Auto() (string, error) {
	b := make([]byte, autoLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", apperr.Wrap(apperr.CodeInternal, "failed to generate random code", err)
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b), nil
}

// ValidateCustom checks a caller-supplied code against the allowed
// character class ([A-Za-z0-9_-]) and length bounds (6..64).
func ValidateCustom(code string) error {
	if !customCodePattern.MatchString(code) {
		return apperr.Newf(apperr.CodeValidation,
			"custom code must match [A-Za-z0-9_-]{%d,%d}", minCustomLength, maxCustomLength)
	}
	return nil
}
