package service

import (
	"context"
	cryptorand "crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/shortlink/shortlink/internal/apperr"
	"github.com/shortlink/shortlink/internal/cache"
	"github.com/shortlink/shortlink/internal/clickqueue"
	"github.com/shortlink/shortlink/internal/codegen"
	"github.com/shortlink/shortlink/internal/metrics"
	"github.com/shortlink/shortlink/internal/model"
	"github.com/shortlink/shortlink/internal/normalize"
	"github.com/shortlink/shortlink/internal/store"
)

const maxAutoCodeRetries = 5

// LinkService orchestrates C9: batch creation, patch/restore, soft
// delete, and the cache-first redirect hot path.
type LinkService struct {
	links   store.LinkStore
	domains store.DomainStore
	cache   cache.Cache
	clicks  *clickqueue.Queue
	metrics *metrics.Metrics

	cacheTTL    time.Duration
	negativeTTL time.Duration
}

// Config controls cache TTLs the service applies on writes.
type Config struct {
	CacheTTL    time.Duration
	NegativeTTL time.Duration
}

func NewLinkService(links store.LinkStore, domains store.DomainStore, c cache.Cache, clicks *clickqueue.Queue, m *metrics.Metrics, cfg Config) *LinkService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.NegativeTTL <= 0 {
		cfg.NegativeTTL = time.Minute
	}
	return &LinkService{
		links: links, domains: domains, cache: c, clicks: clicks, metrics: m,
		cacheTTL: cfg.CacheTTL, negativeTTL: cfg.NegativeTTL,
	}
}

// CreateItem is one element of a batch-create request.
type CreateItem struct {
	URL        string
	Domain     string // empty means "use the current default"
	CustomCode string
	ExpiresAt  *time.Time
	Permanent  bool
}

// CreateResult is the per-item outcome of a batch create: exactly one
// of Link or Err is set.
type CreateResult struct {
	Link     *model.Link
	ShortURL string
	Err      error
}

// CreateBatch processes each item independently; one item's failure
// never aborts the batch (spec §4.3).
func (s *LinkService) CreateBatch(ctx context.Context, items []CreateItem, scheme string) []CreateResult {
	results := make([]CreateResult, len(items))
	for i, item := range items {
		link, err := s.createOne(ctx, item)
		if err != nil {
			results[i] = CreateResult{Err: err}
			continue
		}
		if err := s.cache.Invalidate(ctx, link.DomainID, link.Code); err != nil {
			s.metrics.IncDatabaseError("cache_invalidate")
		}
		domain, domErr := s.domains.GetByID(ctx, link.DomainID)
		if domErr != nil {
			results[i] = CreateResult{Err: domErr}
			continue
		}
		results[i] = CreateResult{Link: link, ShortURL: shortURL(scheme, domain.Name, link.Code)}
	}
	return results
}

func (s *LinkService) createOne(ctx context.Context, item CreateItem) (*model.Link, error) {
	domain, err := s.resolveDomain(ctx, item.Domain)
	if err != nil {
		return nil, err
	}

	longURL, normalizedURL, err := normalize.URL(item.URL)
	if err != nil {
		return nil, err
	}

	if item.ExpiresAt != nil && item.ExpiresAt.Before(clockNow()) {
		return nil, apperr.New(apperr.CodeValidation, "expires_at must be in the future")
	}

	if item.CustomCode == "" {
		if existing, err := s.links.GetByNormalizedURL(ctx, domain.ID, normalizedURL); err == nil {
			return existing, nil
		} else if !apperr.Is(err, apperr.CodeNotFound) {
			return nil, err
		}
	}

	code := item.CustomCode
	if code != "" {
		if err := codegen.ValidateCustom(code); err != nil {
			return nil, err
		}
	}

	link := &model.Link{
		ID:            newLinkID(),
		LongURL:       longURL,
		NormalizedURL: normalizedURL,
		DomainID:      domain.ID,
		Permanent:     item.Permanent,
		ExpiresAt:     item.ExpiresAt,
		CreatedAt:     clockNow(),
	}

	if code != "" {
		link.Code = code
		if err := s.links.Create(ctx, link); err != nil {
			return nil, err
		}
		return link, nil
	}

	for attempt := 0; attempt < maxAutoCodeRetries; attempt++ {
		generated, err := codegen.Auto()
		if err != nil {
			return nil, err
		}
		link.Code = generated
		err = s.links.Create(ctx, link)
		if err == nil {
			return link, nil
		}
		if !apperr.Is(err, apperr.CodeConflict) {
			return nil, err
		}
	}
	return nil, apperr.New(apperr.CodeInternal, "failed to generate a unique code after retries")
}

func (s *LinkService) resolveDomain(ctx context.Context, name string) (*model.Domain, error) {
	if name == "" {
		return s.domains.GetDefault(ctx)
	}
	domain, err := s.domains.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if !domain.Usable() {
		return nil, apperr.ErrNotFound
	}
	return domain, nil
}

// PatchInput carries the optional fields accepted by the patch
// operation; a nil pointer means "leave unchanged".
type PatchInput struct {
	URL       *string
	ExpiresAt *time.Time
	ClearExpiresAt bool
	Permanent *bool
	Restore   bool
}

// Patch applies a partial update to the link identified by
// (domainID, code), re-normalizing the URL and invalidating the cache
// entry on success.
func (s *LinkService) Patch(ctx context.Context, domainID int64, code string, input PatchInput) (*model.Link, error) {
	link, err := s.links.GetByCode(ctx, domainID, code)
	if err != nil {
		return nil, err
	}

	if input.URL != nil {
		longURL, normalizedURL, err := normalize.URL(*input.URL)
		if err != nil {
			return nil, err
		}
		link.LongURL = longURL
		link.NormalizedURL = normalizedURL
	}

	switch {
	case input.ClearExpiresAt:
		link.ExpiresAt = nil
	case input.ExpiresAt != nil:
		if input.ExpiresAt.Before(clockNow()) {
			return nil, apperr.New(apperr.CodeValidation, "expires_at must be in the future")
		}
		link.ExpiresAt = input.ExpiresAt
	}

	if input.Permanent != nil {
		link.Permanent = *input.Permanent
	}

	if input.Restore && link.Deleted() {
		link.DeletedAt = nil
	}

	if err := s.links.Update(ctx, link); err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, domainID, code); err != nil {
		s.metrics.IncDatabaseError("cache_invalidate")
	}

	return link, nil
}

// Delete soft-deletes the link identified by (domainID, code) and
// invalidates its cache entry.
func (s *LinkService) Delete(ctx context.Context, domainID int64, code string) error {
	link, err := s.links.GetByCode(ctx, domainID, code)
	if err != nil {
		return err
	}
	if err := s.links.SoftDelete(ctx, link.ID); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, domainID, code); err != nil {
		s.metrics.IncDatabaseError("cache_invalidate")
	}
	return nil
}

// RedirectResult is what ResolveRedirect returns to the handler.
type RedirectResult struct {
	LongURL   string
	Permanent bool
}

// ResolveRedirect is the hot path (spec §4.3 "Lookup for redirect"):
// cache first, store on miss, negative-cache the outcome either way,
// and enqueue a click event for every link actually resolved.
func (s *LinkService) ResolveRedirect(ctx context.Context, domainID int64, code string, click model.ClickEvent) (RedirectResult, error) {
	start := time.Now()
	outcome := "miss"
	defer func() { s.metrics.ObserveRedirect(outcome, time.Since(start)) }()

	cacheOutcome, entry, err := s.cache.Get(ctx, domainID, code)
	if err != nil {
		s.metrics.IncDatabaseError("cache_get")
	}

	switch cacheOutcome {
	case cache.OutcomeHit:
		outcome = "hit"
		s.metrics.ObserveCache("hit")
		click.LinkID = entry.LinkID
		s.clicks.Enqueue(&click)
		return RedirectResult{LongURL: entry.LongURL, Permanent: entry.Permanent}, nil
	case cache.OutcomeHitGone:
		outcome = "hit_gone"
		s.metrics.ObserveCache("hit_gone")
		return RedirectResult{}, apperr.ErrGone
	case cache.OutcomeHitMissing:
		outcome = "hit_missing"
		s.metrics.ObserveCache("hit_missing")
		return RedirectResult{}, apperr.ErrNotFound
	}

	s.metrics.ObserveCache("miss")

	link, err := s.links.GetByCode(ctx, domainID, code)
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			if setErr := s.cache.SetMissing(ctx, domainID, code, s.negativeTTL); setErr != nil {
				s.metrics.IncDatabaseError("cache_set")
			}
			return RedirectResult{}, apperr.ErrNotFound
		}
		s.metrics.IncDatabaseError("link_lookup")
		return RedirectResult{}, err
	}

	now := clockNow()
	if !link.Redirectable(now) {
		if setErr := s.cache.SetGone(ctx, domainID, code, s.negativeTTL); setErr != nil {
			s.metrics.IncDatabaseError("cache_set")
		}
		click.LinkID = link.ID
		s.clicks.Enqueue(&click)
		return RedirectResult{}, apperr.ErrGone
	}

	entry = cache.Entry{LinkID: link.ID, LongURL: link.LongURL, Permanent: link.Permanent}
	if setErr := s.cache.SetHit(ctx, domainID, code, entry, s.cacheTTL); setErr != nil {
		s.metrics.IncDatabaseError("cache_set")
	}

	outcome = "miss"
	click.LinkID = link.ID
	s.clicks.Enqueue(&click)

	return RedirectResult{LongURL: link.LongURL, Permanent: link.Permanent}, nil
}

// List returns a page of links, optionally scoped to one domain.
func (s *LinkService) List(ctx context.Context, filter store.LinkFilter) ([]*model.Link, int, error) {
	return s.links.List(ctx, filter)
}

func shortURL(scheme, domainName, code string) string {
	return fmt.Sprintf("%s://%s/%s", scheme, domainName, code)
}

func newLinkID() string {
	return ulid.MustNew(ulid.Timestamp(clockNow()), cryptorand.Reader).String()
}
