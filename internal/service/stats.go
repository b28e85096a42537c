package service

import (
	"context"

	"github.com/shortlink/shortlink/internal/model"
	"github.com/shortlink/shortlink/internal/store"
)

// StatsService orchestrates C11: joining links with click aggregates
// and per-link click history, under the page/page_size/from/to/domain
// filters spec §6 defines for the stats endpoints.
type StatsService struct {
	links  store.LinkStore
	clicks store.ClickStore
}

func NewStatsService(links store.LinkStore, clicks store.ClickStore) *StatsService {
	return &StatsService{links: links, clicks: clicks}
}

// LinkStats pairs a link with its all-time click total.
type LinkStats struct {
	Link       *model.Link
	ClickCount int64
}

// Summary lists links matching filter alongside each link's total
// click count (spec "List links with totals").
func (s *StatsService) Summary(ctx context.Context, filter store.LinkFilter) ([]LinkStats, int, error) {
	links, total, err := s.links.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if len(links) == 0 {
		return nil, total, nil
	}

	ids := make([]string, len(links))
	for i, l := range links {
		ids[i] = l.ID
	}
	counts, err := s.clicks.CountByLink(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]LinkStats, len(links))
	for i, l := range links {
		out[i] = LinkStats{Link: l, ClickCount: counts[l.ID]}
	}
	return out, total, nil
}

// History returns the paginated click history for the link identified
// by (domainID, code), honoring filter's from/to window.
func (s *StatsService) History(ctx context.Context, domainID int64, code string, filter store.ClickFilter) ([]*model.Click, int, error) {
	link, err := s.links.GetByCode(ctx, domainID, code)
	if err != nil {
		return nil, 0, err
	}
	filter.LinkID = link.ID
	return s.clicks.List(ctx, filter)
}
