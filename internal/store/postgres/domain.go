package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shortlink/shortlink/internal/apperr"
	"github.com/shortlink/shortlink/internal/model"
)

// DomainRepo implements store.DomainStore against Postgres.
type DomainRepo struct {
	pool *pgxpool.Pool
}

const domainColumns = `id, name, is_default, is_active, description, deleted_at, created_at, updated_at`

func (r *DomainRepo) Create(ctx context.Context, domain *model.Domain) error {
	const query = `
		INSERT INTO domains (name, is_default, is_active, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		domain.Name, domain.IsDefault, domain.IsActive, domain.Description,
		domain.CreatedAt, domain.UpdatedAt,
	).Scan(&domain.ID)
	if err != nil {
		if isUniqueViolation(err, "domains_name_key") {
			return apperr.New(apperr.CodeConflict, "domain name already registered")
		}
		return fmt.Errorf("create domain: %w", err)
	}
	return nil
}

func (r *DomainRepo) GetByName(ctx context.Context, name string) (*model.Domain, error) {
	const query = `SELECT ` + domainColumns + ` FROM domains WHERE name = $1 AND deleted_at IS NULL`
	d, err := scanDomainRow(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("get domain by name: %w", err)
	}
	return d, nil
}

func (r *DomainRepo) GetByID(ctx context.Context, id int64) (*model.Domain, error) {
	const query = `SELECT ` + domainColumns + ` FROM domains WHERE id = $1 AND deleted_at IS NULL`
	d, err := scanDomainRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("get domain by id: %w", err)
	}
	return d, nil
}

func (r *DomainRepo) GetDefault(ctx context.Context) (*model.Domain, error) {
	const query = `SELECT ` + domainColumns + ` FROM domains WHERE is_default AND deleted_at IS NULL LIMIT 1`
	d, err := scanDomainRow(r.pool.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("get default domain: %w", err)
	}
	return d, nil
}

func (r *DomainRepo) List(ctx context.Context) ([]*model.Domain, error) {
	const query = `SELECT ` + domainColumns + ` FROM domains WHERE deleted_at IS NULL ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	defer rows.Close()

	var domains []*model.Domain
	for rows.Next() {
		d, err := scanDomainRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

// Update persists domain's mutable fields. Promoting domain to default
// clears the previous default in the same transaction — the
// single-default invariant is never observable as violated by a
// concurrent reader.
func (r *DomainRepo) Update(ctx context.Context, domain *model.Domain) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if domain.IsDefault {
		if _, err := tx.Exec(ctx, `UPDATE domains SET is_default = FALSE WHERE id != $1 AND is_default`, domain.ID); err != nil {
			return fmt.Errorf("clear previous default domain: %w", err)
		}
	}

	const query = `
		UPDATE domains
		SET name = $2, is_default = $3, is_active = $4, description = $5, updated_at = $6
		WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := tx.Exec(ctx, query,
		domain.ID, domain.Name, domain.IsDefault, domain.IsActive, domain.Description, domain.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "domains_name_key") {
			return apperr.New(apperr.CodeConflict, "domain name already registered")
		}
		return fmt.Errorf("update domain: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}

	return tx.Commit(ctx)
}

func (r *DomainRepo) HasActiveLinks(ctx context.Context, domainID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM links WHERE domain_id = $1 AND deleted_at IS NULL)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, domainID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active links: %w", err)
	}
	return exists, nil
}

func (r *DomainRepo) SoftDelete(ctx context.Context, id int64) error {
	const query = `UPDATE domains SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft delete domain: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func scanDomainRow(row scannable) (*model.Domain, error) {
	var d model.Domain
	err := row.Scan(
		&d.ID, &d.Name, &d.IsDefault, &d.IsActive, &d.Description,
		&d.DeletedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
