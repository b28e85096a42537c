package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shortlink/shortlink/internal/apperr"
	"github.com/shortlink/shortlink/internal/model"
)

// DomainStore is a mutex-guarded in-memory store.DomainStore.
type DomainStore struct {
	mu     sync.Mutex
	byID   map[int64]*model.Domain
	nextID int64
}

func NewDomainStore() *DomainStore {
	return &DomainStore{byID: make(map[int64]*model.Domain), nextID: 1}
}

func (s *DomainStore) Create(_ context.Context, d *model.Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Name == d.Name && !existing.Deleted() {
			return apperr.New(apperr.CodeConflict, "domain name already registered")
		}
	}
	d.ID = s.nextID
	s.nextID++
	cp := *d
	s.byID[d.ID] = &cp
	return nil
}

func (s *DomainStore) GetByName(_ context.Context, name string) (*model.Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.byID {
		if d.Name == name && !d.Deleted() {
			cp := *d
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *DomainStore) GetByID(_ context.Context, id int64) (*model.Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.byID[id]
	if !ok || d.Deleted() {
		return nil, apperr.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *DomainStore) GetDefault(_ context.Context) (*model.Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.byID {
		if d.IsDefault && !d.Deleted() {
			cp := *d
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *DomainStore) List(_ context.Context) ([]*model.Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Domain
	for _, d := range s.byID {
		if d.Deleted() {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (s *DomainStore) Update(_ context.Context, d *model.Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[d.ID]; !ok {
		return apperr.ErrNotFound
	}
	for _, existing := range s.byID {
		if existing.ID == d.ID {
			continue
		}
		if existing.Name == d.Name && !existing.Deleted() {
			return apperr.New(apperr.CodeConflict, "domain name already registered")
		}
	}
	if d.IsDefault {
		for _, existing := range s.byID {
			if existing.ID != d.ID {
				existing.IsDefault = false
			}
		}
	}
	d.UpdatedAt = time.Now().UTC()
	cp := *d
	s.byID[d.ID] = &cp
	return nil
}

func (s *DomainStore) HasActiveLinks(_ context.Context, domainID int64) (bool, error) {
	// The in-memory test double doesn't cross-reference LinkStore, so
	// it always reports no active links.
	return false, nil
}

func (s *DomainStore) SoftDelete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.byID[id]
	if !ok || d.Deleted() {
		return apperr.ErrNotFound
	}
	now := time.Now().UTC()
	d.DeletedAt = &now
	return nil
}
