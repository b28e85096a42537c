package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shortlink/shortlink/internal/apperr"
	"github.com/shortlink/shortlink/internal/model"
)

// TokenStore is a mutex-guarded in-memory store.TokenStore.
type TokenStore struct {
	mu   sync.Mutex
	byID map[string]*model.ApiToken
}

func NewTokenStore() *TokenStore {
	return &TokenStore{byID: make(map[string]*model.ApiToken)}
}

func (s *TokenStore) Create(_ context.Context, token *model.ApiToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.TokenHash == token.TokenHash {
			return apperr.New(apperr.CodeConflict, "token hash collision")
		}
	}
	cp := *token
	s.byID[token.ID] = &cp
	return nil
}

func (s *TokenStore) GetByHash(_ context.Context, hash string) (*model.ApiToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.byID {
		if t.TokenHash == hash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *TokenStore) Revoke(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok || t.RevokedAt != nil {
		return apperr.ErrNotFound
	}
	now := time.Now().UTC()
	t.RevokedAt = &now
	return nil
}

func (s *TokenStore) TouchLastUsed(_ context.Context, id string, when time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok {
		return apperr.ErrNotFound
	}
	t.LastUsedAt = &when
	return nil
}

func (s *TokenStore) List(_ context.Context) ([]*model.ApiToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.ApiToken
	for _, t := range s.byID {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}
