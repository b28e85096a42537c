// Package memory provides in-memory implementations of the internal/store
// interfaces, used by service- and handler-level tests in place of a real
// Postgres instance.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shortlink/shortlink/internal/apperr"
	"github.com/shortlink/shortlink/internal/model"
	"github.com/shortlink/shortlink/internal/store"
)

// LinkStore is a mutex-guarded in-memory store.LinkStore.
type LinkStore struct {
	mu   sync.Mutex
	byID map[string]*model.Link
}

func NewLinkStore() *LinkStore {
	return &LinkStore{byID: make(map[string]*model.Link)}
}

func (s *LinkStore) Create(_ context.Context, link *model.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.DomainID == link.DomainID && existing.Code == link.Code {
			return apperr.New(apperr.CodeConflict, "code already in use for this domain")
		}
		if existing.DomainID == link.DomainID && existing.NormalizedURL == link.NormalizedURL && !existing.Deleted() {
			return apperr.New(apperr.CodeConflict, "an active link for this URL already exists in this domain")
		}
	}
	cp := *link
	s.byID[link.ID] = &cp
	return nil
}

func (s *LinkStore) GetByCode(_ context.Context, domainID int64, code string) (*model.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.byID {
		if l.DomainID == domainID && l.Code == code {
			cp := *l
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *LinkStore) GetByID(_ context.Context, id string) (*model.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *LinkStore) GetByNormalizedURL(_ context.Context, domainID int64, normalizedURL string) (*model.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.byID {
		if l.DomainID == domainID && l.NormalizedURL == normalizedURL && !l.Deleted() {
			cp := *l
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *LinkStore) CodeExists(_ context.Context, domainID int64, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.byID {
		if l.DomainID == domainID && l.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *LinkStore) Update(_ context.Context, link *model.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[link.ID]; !ok {
		return apperr.ErrNotFound
	}
	for _, existing := range s.byID {
		if existing.ID == link.ID {
			continue
		}
		if existing.DomainID == link.DomainID && existing.NormalizedURL == link.NormalizedURL && !existing.Deleted() && !link.Deleted() {
			return apperr.New(apperr.CodeConflict, "an active link for this URL already exists in this domain")
		}
	}
	cp := *link
	s.byID[link.ID] = &cp
	return nil
}

func (s *LinkStore) SoftDelete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byID[id]
	if !ok || l.Deleted() {
		return apperr.ErrNotFound
	}
	now := time.Now().UTC()
	l.DeletedAt = &now
	return nil
}

func (s *LinkStore) List(_ context.Context, filter store.LinkFilter) ([]*model.Link, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*model.Link
	for _, l := range s.byID {
		if l.Deleted() {
			continue
		}
		if filter.DomainID != nil && l.DomainID != *filter.DomainID {
			continue
		}
		if filter.CreatedAfter != nil && l.CreatedAt.Before(*filter.CreatedAfter) {
			continue
		}
		if filter.CreatedBefore != nil && l.CreatedAt.After(*filter.CreatedBefore) {
			continue
		}
		cp := *l
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
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
