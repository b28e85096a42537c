// Package postgres is the pgx-backed implementation of the internal/store
// interfaces.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store bundles a connection pool and exposes it to the per-entity
// repositories defined alongside it (Links, Domains, Clicks, Tokens).
type Store struct {
	pool *pgxpool.Pool
}

// Open parses databaseURL, applies maxConns, and opens a pool.
func Open(ctx context.Context, databaseURL string, maxConns int32) (*Store, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() { s.pool.Close() }

func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Links returns the LinkStore view over this pool.
func (s *Store) Links() *LinkRepo { return &LinkRepo{pool: s.pool} }

// Domains returns the DomainStore view over this pool.
func (s *Store) Domains() *DomainRepo { return &DomainRepo{pool: s.pool} }

// Clicks returns the ClickStore view over this pool.
func (s *Store) Clicks() *ClickRepo { return &ClickRepo{pool: s.pool} }

// Tokens returns the TokenStore view over this pool.
func (s *Store) Tokens() *TokenRepo { return &TokenRepo{pool: s.pool} }

// isUniqueViolation reports whether err is a Postgres 23505 error,
// optionally scoped to a specific constraint name.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
