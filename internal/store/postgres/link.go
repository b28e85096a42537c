package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shortlink/shortlink/internal/apperr"
	"github.com/shortlink/shortlink/internal/model"
	"github.com/shortlink/shortlink/internal/store"
)

// LinkRepo implements store.LinkStore against Postgres.
type LinkRepo struct {
	pool *pgxpool.Pool
}

const linkColumns = `id, code, long_url, normalized_url, domain_id, permanent, expires_at, deleted_at, created_at`

func (r *LinkRepo) Create(ctx context.Context, link *model.Link) error {
	const query = `
		INSERT INTO links (` + linkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		link.ID, link.Code, link.LongURL, link.NormalizedURL, link.DomainID,
		link.Permanent, link.ExpiresAt, link.DeletedAt, link.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "links_domain_id_code_key") {
			return apperr.New(apperr.CodeConflict, "code already in use for this domain")
		}
		if isUniqueViolation(err, "links_domain_id_normalized_url_active_key") {
			return apperr.New(apperr.CodeConflict, "an active link for this URL already exists in this domain")
		}
		return fmt.Errorf("create link: %w", err)
	}
	return nil
}

func (r *LinkRepo) GetByCode(ctx context.Context, domainID int64, code string) (*model.Link, error) {
	const query = `SELECT ` + linkColumns + ` FROM links WHERE domain_id = $1 AND code = $2`
	link, err := scanLinkRow(r.pool.QueryRow(ctx, query, domainID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("get link by code: %w", err)
	}
	return link, nil
}

func (r *LinkRepo) GetByID(ctx context.Context, id string) (*model.Link, error) {
	const query = `SELECT ` + linkColumns + ` FROM links WHERE id = $1`
	link, err := scanLinkRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("get link by id: %w", err)
	}
	return link, nil
}

func (r *LinkRepo) GetByNormalizedURL(ctx context.Context, domainID int64, normalizedURL string) (*model.Link, error) {
	const query = `
		SELECT ` + linkColumns + `
		FROM links
		WHERE domain_id = $1 AND normalized_url = $2 AND deleted_at IS NULL
	`
	link, err := scanLinkRow(r.pool.QueryRow(ctx, query, domainID, normalizedURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("get link by normalized url: %w", err)
	}
	return link, nil
}

func (r *LinkRepo) CodeExists(ctx context.Context, domainID int64, code string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM links WHERE domain_id = $1 AND code = $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, domainID, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("check code existence: %w", err)
	}
	return exists, nil
}

func (r *LinkRepo) Update(ctx context.Context, link *model.Link) error {
	const query = `
		UPDATE links
		SET long_url = $2, normalized_url = $3, permanent = $4, expires_at = $5, deleted_at = $6
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		link.ID, link.LongURL, link.NormalizedURL, link.Permanent, link.ExpiresAt, link.DeletedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "links_domain_id_normalized_url_active_key") {
			return apperr.New(apperr.CodeConflict, "an active link for this URL already exists in this domain")
		}
		return fmt.Errorf("update link: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *LinkRepo) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE links SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft delete link: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *LinkRepo) List(ctx context.Context, filter store.LinkFilter) ([]*model.Link, int, error) {
	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	where := `WHERE deleted_at IS NULL`
	args := []any{}
	argIndex := 1
	if filter.DomainID != nil {
		where += fmt.Sprintf(" AND domain_id = $%d", argIndex)
		args = append(args, *filter.DomainID)
		argIndex++
	}
	if filter.CreatedAfter != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", argIndex)
		args = append(args, *filter.CreatedAfter)
		argIndex++
	}
	if filter.CreatedBefore != nil {
		where += fmt.Sprintf(" AND created_at <= $%d", argIndex)
		args = append(args, *filter.CreatedBefore)
		argIndex++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM links ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count links: %w", err)
	}

	listArgs := append(append([]any{}, args...), pageSize, (page-1)*pageSize)
	listQuery := fmt.Sprintf(`
		SELECT %s FROM links %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, linkColumns, where, argIndex, argIndex+1)

	rows, err := r.pool.Query(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var links []*model.Link
	for rows.Next() {
		link, err := scanLinkRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate links: %w", err)
	}
	return links, total, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanLinkRow(row scannable) (*model.Link, error) {
	var link model.Link
	err := row.Scan(
		&link.ID, &link.Code, &link.LongURL, &link.NormalizedURL, &link.DomainID,
		&link.Permanent, &link.ExpiresAt, &link.DeletedAt, &link.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &link, nil
}
