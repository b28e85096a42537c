package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shortlink/shortlink/internal/apperr"
	"github.com/shortlink/shortlink/internal/model"
	"github.com/shortlink/shortlink/internal/store"
)

// ClickRepo implements store.ClickStore against Postgres. Rows are
// append-only: no Update or Delete method exists on purpose.
type ClickRepo struct {
	pool *pgxpool.Pool
}

func (r *ClickRepo) Insert(ctx context.Context, click *model.Click) error {
	const query = `
		INSERT INTO link_clicks (id, link_id, clicked_at, ip, user_agent, referer)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		click.ID, click.LinkID, click.ClickedAt, click.IP, click.UserAgent, click.Referer,
	)
	if err != nil {
		if code, ok := classifyClickInsertError(err); ok {
			return apperr.Wrap(code, "click rejected", err)
		}
		return fmt.Errorf("insert click: %w", err)
	}
	return nil
}

// classifyClickInsertError distinguishes a permanent rejection (the
// link this click points to was hard-deleted, or the row otherwise
// violates a constraint) from a transient failure (dropped
// connection, serialization conflict) that the caller should retry.
func classifyClickInsertError(err error) (apperr.Code, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return apperr.CodeInternal, false
	}
	switch pgErr.Code {
	case "23503": // foreign_key_violation: link_id no longer references a row
		return apperr.CodeNotFound, true
	case "23505", "23502", "23514", "22P02": // unique/not-null/check/invalid-input
		return apperr.CodeConflict, true
	default:
		return apperr.CodeInternal, false
	}
}

func (r *ClickRepo) List(ctx context.Context, filter store.ClickFilter) ([]*model.Click, int, error) {
	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 100
	}

	where := `WHERE link_id = $1`
	args := []any{filter.LinkID}
	argIndex := 2
	if filter.From != nil {
		where += fmt.Sprintf(" AND clicked_at >= $%d", argIndex)
		args = append(args, *filter.From)
		argIndex++
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND clicked_at <= $%d", argIndex)
		args = append(args, *filter.To)
		argIndex++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM link_clicks `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clicks: %w", err)
	}

	listArgs := append(append([]any{}, args...), pageSize, (page-1)*pageSize)
	query := fmt.Sprintf(`
		SELECT id, link_id, clicked_at, ip, user_agent, referer
		FROM link_clicks %s
		ORDER BY clicked_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argIndex, argIndex+1)

	rows, err := r.pool.Query(ctx, query, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list clicks: %w", err)
	}
	defer rows.Close()

	var clicks []*model.Click
	for rows.Next() {
		var c model.Click
		if err := rows.Scan(&c.ID, &c.LinkID, &c.ClickedAt, &c.IP, &c.UserAgent, &c.Referer); err != nil {
			return nil, 0, fmt.Errorf("scan click: %w", err)
		}
		clicks = append(clicks, &c)
	}
	return clicks, total, rows.Err()
}

func (r *ClickRepo) CountByLink(ctx context.Context, linkIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(linkIDs))
	if len(linkIDs) == 0 {
		return counts, nil
	}

	const query = `
		SELECT link_id, COUNT(*)
		FROM link_clicks
		WHERE link_id = ANY($1)
		GROUP BY link_id
	`
	rows, err := r.pool.Query(ctx, query, linkIDs)
	if err != nil {
		return nil, fmt.Errorf("count clicks by link: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var linkID string
		var count int64
		if err := rows.Scan(&linkID, &count); err != nil {
			return nil, fmt.Errorf("scan click count: %w", err)
		}
		counts[linkID] = count
	}
	return counts, rows.Err()
}
