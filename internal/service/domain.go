package service

import (
	"context"
	"strings"

	"github.com/shortlink/shortlink/internal/apperr"
	"github.com/shortlink/shortlink/internal/model"
	"github.com/shortlink/shortlink/internal/store"
)

// DomainService orchestrates C10: domain creation, patch, and the
// deletion-safety / single-default invariants.
type DomainService struct {
	domains store.DomainStore
}

func NewDomainService(domains store.DomainStore) *DomainService {
	return &DomainService{domains: domains}
}

// Create inserts a new domain; the name must not collide with any
// non-deleted domain.
func (s *DomainService) Create(ctx context.Context, name string, isDefault bool, description string) (*model.Domain, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, apperr.New(apperr.CodeValidation, "domain name is required")
	}

	now := clockNow()
	domain := &model.Domain{
		Name:        name,
		IsDefault:   false,
		IsActive:    true,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.domains.Create(ctx, domain); err != nil {
		return nil, err
	}
	if isDefault {
		// Inserted non-default above: domains_single_default_key only
		// allows one is_default=true row, and an existing default would
		// reject the insert outright. Promote through Update instead,
		// which clears the previous default in the same transaction.
		domain.IsDefault = true
		if err := s.domains.Update(ctx, domain); err != nil {
			return nil, err
		}
	}
	return domain, nil
}

// PatchDomainInput carries the optional fields accepted by the domain
// patch operation; nil means "leave unchanged".
type PatchDomainInput struct {
	Name             *string
	IsActive         *bool
	IsDefault        *bool
	Description      *string
	ClearDescription bool
}

// Patch applies a partial update, enforcing the single-default and
// rename-uniqueness invariants.
func (s *DomainService) Patch(ctx context.Context, id int64, input PatchDomainInput) (*model.Domain, error) {
	domain, err := s.domains.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		domain.Name = strings.ToLower(strings.TrimSpace(*input.Name))
	}
	if input.IsActive != nil {
		domain.IsActive = *input.IsActive
	}
	switch {
	case input.ClearDescription:
		domain.Description = ""
	case input.Description != nil:
		domain.Description = *input.Description
	}

	if input.IsDefault != nil {
		if *input.IsDefault {
			domain.IsDefault = true
		} else if domain.IsDefault {
			return nil, apperr.New(apperr.CodeBadRequest,
				"cannot unset the current default domain; set another domain as default instead")
		}
	}

	domain.UpdatedAt = clockNow()
	if err := s.domains.Update(ctx, domain); err != nil {
		return nil, err
	}
	return domain, nil
}

// SoftDelete rejects deleting the current default domain or a domain
// that still has non-deleted links.
func (s *DomainService) SoftDelete(ctx context.Context, id int64) error {
	domain, err := s.domains.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if domain.IsDefault {
		return apperr.New(apperr.CodeBadRequest, "cannot delete the current default domain")
	}
	hasLinks, err := s.domains.HasActiveLinks(ctx, id)
	if err != nil {
		return err
	}
	if hasLinks {
		return apperr.New(apperr.CodeBadRequest, "cannot delete a domain with active links")
	}
	return s.domains.SoftDelete(ctx, id)
}

// List returns every non-deleted domain.
func (s *DomainService) List(ctx context.Context) ([]*model.Domain, error) {
	return s.domains.List(ctx)
}

// ResolveName returns the domain named name, or the current default
// domain if name is empty. Used by handlers that accept an optional
// ?domain= query parameter on link mutation routes.
func (s *DomainService) ResolveName(ctx context.Context, name string) (*model.Domain, error) {
	if name == "" {
		return s.domains.GetDefault(ctx)
	}
	return s.domains.GetByName(ctx, strings.ToLower(strings.TrimSpace(name)))
}

// ResolveHost returns the usable domain matching host, or apperr.ErrGone
// if the domain is missing, deleted, or inactive — the redirect path
// treats an unresolvable domain as a terminal "gone" result rather than
// a plain not-found, per spec §4.3.
func (s *DomainService) ResolveHost(ctx context.Context, host string) (*model.Domain, error) {
	domain, err := s.domains.GetByName(ctx, strings.ToLower(host))
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			return nil, apperr.ErrGone
		}
		return nil, err
	}
	if !domain.Usable() {
		return nil, apperr.ErrGone
	}
	return domain, nil
}
