package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shortlink/shortlink/internal/apperr"
	"github.com/shortlink/shortlink/internal/model"
)

// TokenRepo implements store.TokenStore against Postgres.
type TokenRepo struct {
	pool *pgxpool.Pool
}

const tokenColumns = `id, name, token_hash, created_at, last_used_at, revoked_at`

func (r *TokenRepo) Create(ctx context.Context, token *model.ApiToken) error {
	const query = `
		INSERT INTO api_tokens (id, name, token_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query, token.ID, token.Name, token.TokenHash, token.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "api_tokens_token_hash_key") {
			return apperr.New(apperr.CodeConflict, "token hash collision")
		}
		return fmt.Errorf("create token: %w", err)
	}
	return nil
}

// GetByHash looks up a token by exact hash equality — this is the
// auth hot path, so token_hash carries a unique index.
func (r *TokenRepo) GetByHash(ctx context.Context, hash string) (*model.ApiToken, error) {
	const query = `SELECT ` + tokenColumns + ` FROM api_tokens WHERE token_hash = $1`
	var t model.ApiToken
	err := r.pool.QueryRow(ctx, query, hash).Scan(
		&t.ID, &t.Name, &t.TokenHash, &t.CreatedAt, &t.LastUsedAt, &t.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("get token by hash: %w", err)
	}
	return &t, nil
}

func (r *TokenRepo) Revoke(ctx context.Context, id string) error {
	const query = `UPDATE api_tokens SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *TokenRepo) TouchLastUsed(ctx context.Context, id string, when time.Time) error {
	const query = `UPDATE api_tokens SET last_used_at = $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, when)
	if err != nil {
		return fmt.Errorf("touch token last used: %w", err)
	}
	return nil
}

func (r *TokenRepo) List(ctx context.Context) ([]*model.ApiToken, error) {
	const query = `SELECT ` + tokenColumns + ` FROM api_tokens ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*model.ApiToken
	for rows.Next() {
		var t model.ApiToken
		if err := rows.Scan(&t.ID, &t.Name, &t.TokenHash, &t.CreatedAt, &t.LastUsedAt, &t.RevokedAt); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		tokens = append(tokens, &t)
	}
	return tokens, rows.Err()
}
