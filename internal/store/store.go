// Package store defines the capability sets (interfaces) the service
// layer depends on for durable state. Real implementations speak to
// Postgres (internal/store/postgres); tests substitute the in-memory
// doubles in internal/store/memory. No runtime reflection is used to
// select an implementation — it's wired once at startup.
package store

import (
	"context"
	"time"

	"github.com/shortlink/shortlink/internal/model"
)

// LinkFilter narrows a link listing.
type LinkFilter struct {
	DomainID      *int64
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Page          int
	PageSize      int
}

// LinkStore is the durable operations surface for Link rows (C3).
type LinkStore interface {
	Create(ctx context.Context, link *model.Link) error
	GetByCode(ctx context.Context, domainID int64, code string) (*model.Link, error)
	GetByID(ctx context.Context, id string) (*model.Link, error)
	GetByNormalizedURL(ctx context.Context, domainID int64, normalizedURL string) (*model.Link, error)
	// CodeExists reports whether code is taken for domainID, including
	// soft-deleted rows — codes of soft-deleted links are never reused.
	CodeExists(ctx context.Context, domainID int64, code string) (bool, error)
	Update(ctx context.Context, link *model.Link) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, filter LinkFilter) (links []*model.Link, total int, err error)
}

// DomainStore is the durable operations surface for Domain rows (C4).
type DomainStore interface {
	Create(ctx context.Context, domain *model.Domain) error
	GetByName(ctx context.Context, name string) (*model.Domain, error)
	GetByID(ctx context.Context, id int64) (*model.Domain, error)
	GetDefault(ctx context.Context) (*model.Domain, error)
	List(ctx context.Context) ([]*model.Domain, error)
	// Update persists domain's mutable fields. If domain.IsDefault is
	// true, the previous default (if any, and not domain itself) is
	// atomically cleared in the same transaction.
	Update(ctx context.Context, domain *model.Domain) error
	// HasActiveLinks reports whether any non-deleted link references
	// domainID; used by the deletion-safety check.
	HasActiveLinks(ctx context.Context, domainID int64) (bool, error)
	SoftDelete(ctx context.Context, id int64) error
}

// ClickFilter narrows a click history read.
type ClickFilter struct {
	LinkID string
	From   *time.Time
	To     *time.Time
	Page   int
	PageSize int
}

// ClickStore is the append-only persistence surface for Click rows (C5).
type ClickStore interface {
	Insert(ctx context.Context, click *model.Click) error
	List(ctx context.Context, filter ClickFilter) (clicks []*model.Click, total int, err error)
	// CountByLink returns the total click count for each linkID given.
	CountByLink(ctx context.Context, linkIDs []string) (map[string]int64, error)
}

// TokenStore is the durable operations surface for ApiToken rows (C6).
type TokenStore interface {
	Create(ctx context.Context, token *model.ApiToken) error
	GetByHash(ctx context.Context, hash string) (*model.ApiToken, error)
	Revoke(ctx context.Context, id string) error
	// TouchLastUsed updates last_used_at; AuthService.Authenticate calls
	// it fire-and-forget with its own short-timeout context, detached
	// from the request, so a finished request never cancels it.
	TouchLastUsed(ctx context.Context, id string, when time.Time) error
	List(ctx context.Context) ([]*model.ApiToken, error)
}

// Pinger is implemented by anything whose health can be checked with a
// lightweight round trip (used by the /health endpoint).
type Pinger interface {
	Ping(ctx context.Context) error
}
