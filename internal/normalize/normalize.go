// Package normalize canonicalizes user-supplied URLs for deduplication.
// The canonical form is never shown to users; it exists solely so the
// link store can detect that two differently-written URLs refer to the
// same destination.
package normalize

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shortlink/shortlink/internal/apperr"
)

const maxURLLength = 2048

// defaultPort maps a scheme to the port that's implicit and therefore
// dropped during normalization.
var defaultPort = map[string]string{
	"http":  "80",
	"https": "443",
}

// URL parses, validates, and canonicalizes raw per the rules in
// SPEC_FULL.md §4.1: lowercase scheme/host, drop default ports, drop
// the fragment, collapse an empty path to "/", and leave the query
// string untouched (query parameter order is preserved on purpose —
// "?a=1&b=2" and "?b=2&a=1" are treated as distinct links).
//
// Returns the raw string unchanged as longURL and the canonical form
// as normalized. Fails with apperr.CodeValidation if raw is not an
// absolute http(s) URL.
func URL(raw string) (longURL, normalized string, err error) {
	if raw == "" {
		return "", "", apperr.New(apperr.CodeValidation, "destination URL is required")
	}
	if len(raw) > maxURLLength {
		return "", "", apperr.New(apperr.CodeValidation, "destination URL exceeds maximum length")
	}

	parsed, parseErr := url.Parse(raw)
	if parseErr != nil {
		return "", "", apperr.Wrap(apperr.CodeValidation, "malformed destination URL", parseErr)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", "", apperr.New(apperr.CodeValidation, "destination URL must use http or https")
	}
	if parsed.Host == "" {
		return "", "", apperr.New(apperr.CodeValidation, "destination URL must have a host")
	}

	host := strings.ToLower(parsed.Hostname())
	if port := parsed.Port(); port != "" && port != defaultPort[scheme] {
		host = fmt.Sprintf("%s:%s", host, port)
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}

	canonical := url.URL{
		Scheme:   scheme,
		Host:     host,
		Opaque:   parsed.Opaque,
		RawPath:  path,
		RawQuery: parsed.RawQuery,
	}
	// Path and RawPath must agree on the decoded form; re-derive Path
	// from RawPath so url.URL.String() doesn't re-escape it.
	if decoded, decodeErr := url.PathUnescape(path); decodeErr == nil {
		canonical.Path = decoded
	} else {
		canonical.Path = path
	}

	return raw, canonical.String(), nil
}

// Idempotent reports whether normalizing s twice yields the same
// result both times; used by tests to check the idempotency invariant
// without depending on normalize's internals.
func Idempotent(s string) bool {
	_, once, err := URL(s)
	if err != nil {
		return true // not applicable to non-URLs
	}
	_, twice, err := URL(once)
	if err != nil {
		return false
	}
	return once == twice
}
