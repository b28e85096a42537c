package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shortlink/shortlink/internal/model"
	"github.com/shortlink/shortlink/internal/store"
)

// ClickStore is a mutex-guarded in-memory store.ClickStore.
type ClickStore struct {
	mu     sync.Mutex
	clicks []*model.Click
}

func NewClickStore() *ClickStore {
	return &ClickStore{}
}

func (s *ClickStore) Insert(_ context.Context, click *model.Click) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *click
	s.clicks = append(s.clicks, &cp)
	return nil
}

func (s *ClickStore) List(_ context.Context, filter store.ClickFilter) ([]*model.Click, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*model.Click
	for _, c := range s.clicks {
		if c.LinkID != filter.LinkID {
			continue
		}
		if filter.From != nil && c.ClickedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && c.ClickedAt.After(*filter.To) {
			continue
		}
		cp := *c
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ClickedAt.After(matched[j].ClickedAt) })

	total := len(matched)
	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 100
	}
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *ClickStore) CountByLink(_ context.Context, linkIDs []string) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[string]bool, len(linkIDs))
	for _, id := range linkIDs {
		want[id] = true
	}
	counts := make(map[string]int64, len(linkIDs))
	for _, c := range s.clicks {
		if want[c.LinkID] {
			counts[c.LinkID]++
		}
	}
	return counts, nil
}
