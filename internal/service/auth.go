package service

import (
	"context"
	cryptorand "crypto/rand"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/shortlink/shortlink/internal/apperr"
	"github.com/shortlink/shortlink/internal/auth"
	"github.com/shortlink/shortlink/internal/model"
	"github.com/shortlink/shortlink/internal/store"
)

// touchTimeout bounds the fire-and-forget last_used_at update so it
// can't outlive the request that triggered it by much.
const touchTimeout = 5 * time.Second

// AuthService orchestrates C12: bearer-token verification by exact
// HMAC hash lookup, and token issuance for the admin CLI.
type AuthService struct {
	tokens store.TokenStore
	secret string
	logger *slog.Logger
}

func NewAuthService(tokens store.TokenStore, secret string, logger *slog.Logger) *AuthService {
	return &AuthService{tokens: tokens, secret: secret, logger: logger}
}

// Authenticate verifies raw against the token store by exact hash
// equality and, on success, fires an asynchronous last_used_at update
// that never blocks the caller.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*model.ApiToken, error) {
	if raw == "" {
		return nil, apperr.ErrUnauthorized
	}

	hash := auth.HashToken(s.secret, raw)
	token, err := s.tokens.GetByHash(ctx, hash)
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			return nil, apperr.ErrUnauthorized
		}
		return nil, err
	}
	if !token.Valid() {
		return nil, apperr.ErrUnauthorized
	}

	go s.touchLastUsed(token.ID)

	return token, nil
}

func (s *AuthService) touchLastUsed(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), touchTimeout)
	defer cancel()
	if err := s.tokens.TouchLastUsed(ctx, id, clockNow()); err != nil {
		s.logger.Warn("touch last_used_at failed", "token_id", id, "error", err)
	}
}

// Issue generates a fresh bearer token, persists its hash under name,
// and returns the raw value — the only time it is ever available.
func (s *AuthService) Issue(ctx context.Context, name string) (raw string, token *model.ApiToken, err error) {
	raw, err = auth.GenerateToken()
	if err != nil {
		return "", nil, err
	}

	token = &model.ApiToken{
		ID:        newTokenID(),
		Name:      name,
		TokenHash: auth.HashToken(s.secret, raw),
		CreatedAt: clockNow(),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return "", nil, err
	}
	return raw, token, nil
}

// Revoke marks a token unusable; it is never deleted, so audit history
// (created_at, last_used_at) survives.
func (s *AuthService) Revoke(ctx context.Context, id string) error {
	return s.tokens.Revoke(ctx, id)
}

// List returns every issued token (including revoked ones).
func (s *AuthService) List(ctx context.Context) ([]*model.ApiToken, error) {
	return s.tokens.List(ctx)
}

func newTokenID() string {
	return ulid.MustNew(ulid.Timestamp(clockNow()), cryptorand.Reader).String()
}
