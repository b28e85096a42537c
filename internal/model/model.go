// Package model defines the domain entities shared across the service,
// store, and handler layers.
package model

import "time"

// Domain represents a hostname namespace that short codes live under.
type Domain struct {
	ID          int64
	Name        string
	IsDefault   bool
	IsActive    bool
	Description string
	DeletedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Deleted reports whether the domain has been soft-deleted.
func (d *Domain) Deleted() bool {
	return d.DeletedAt != nil
}

// Usable reports whether the domain can resolve redirects: present,
// active, and not soft-deleted.
func (d *Domain) Usable() bool {
	return d != nil && !d.Deleted() && d.IsActive
}

// Link represents a shortened URL scoped to a Domain.
type Link struct {
	ID            string
	Code          string
	LongURL       string
	NormalizedURL string
	DomainID      int64
	Permanent     bool
	ExpiresAt     *time.Time
	DeletedAt     *time.Time
	CreatedAt     time.Time
}

// Deleted reports whether the link has been soft-deleted.
func (l *Link) Deleted() bool {
	return l.DeletedAt != nil
}

// Expired reports whether the link's expiry has passed as of now.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// Redirectable reports whether the link, considered alone (the parent
// domain's state is checked separately), is eligible for redirect:
// not deleted and not expired.
func (l *Link) Redirectable(now time.Time) bool {
	return !l.Deleted() && !l.Expired(now)
}

// RedirectStatus returns the HTTP status code for this link's redirect
// type: 301 for permanent, 307 for temporary.
func (l *Link) RedirectStatus() int {
	if l.Permanent {
		return 301
	}
	return 307
}

// Click is an append-only record of a single redirect event.
type Click struct {
	ID        string
	LinkID    string
	ClickedAt time.Time
	IP        string
	UserAgent string
	Referer   string
}

// ApiToken is a bearer credential verified by exact HMAC hash lookup.
type ApiToken struct {
	ID         string
	Name       string
	TokenHash  string
	CreatedAt  time.Time
	LastUsedAt *time.Time
	RevokedAt  *time.Time
}

// Valid reports whether the token has not been revoked.
func (t *ApiToken) Valid() bool {
	return t.RevokedAt == nil
}

// ClickEvent is the in-memory, not-yet-persisted representation of a
// click produced by the redirect handler and consumed by the click
// pipeline worker pool.
type ClickEvent struct {
	LinkID       string
	ClickedAt    time.Time
	IP           string
	UserAgent    string
	Referer      string
	AttemptCount int
}
