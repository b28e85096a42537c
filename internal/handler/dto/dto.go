// Package dto defines the JSON request/response shapes the HTTP layer
// exchanges with clients, and the conversions to/from internal/model.
package dto

import (
	"time"

	"github.com/shortlink/shortlink/internal/apperr"
	"github.com/shortlink/shortlink/internal/model"
	"github.com/shortlink/shortlink/internal/service"
)

// ErrorResponse is the error envelope spec §6 defines:
// {"error":{"code":...,"message":...,"details":...}}.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// FromAppError builds the error envelope for err; non-apperr errors are
// reported as an opaque internal_error.
func FromAppError(err error) ErrorResponse {
	code := apperr.CodeOf(err)
	message := "internal error"
	var details map[string]any
	var appErr *apperr.Error
	if e, ok := err.(*apperr.Error); ok {
		appErr = e
	}
	if appErr != nil {
		message = appErr.Message
		details = appErr.Details
	}
	return ErrorResponse{Error: ErrorBody{Code: string(code), Message: message, Details: details}}
}

// CreateLinkItem is one element of a POST /api/shorten batch request.
type CreateLinkItem struct {
	URL        string     `json:"url"`
	Domain     string     `json:"domain,omitempty"`
	CustomCode string     `json:"custom_code,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Permanent  bool       `json:"permanent,omitempty"`
}

// CreateLinkRequest is the body of POST /api/shorten.
type CreateLinkRequest struct {
	Items []CreateLinkItem `json:"items"`
}

// CreateLinkResult is one element of the batch response.
type CreateLinkResult struct {
	LongURL  string     `json:"long_url,omitempty"`
	Code     string     `json:"code,omitempty"`
	ShortURL string     `json:"short_url,omitempty"`
	Error    *ErrorBody `json:"error,omitempty"`
}

// CreateLinkResponse is the body of a POST /api/shorten response.
type CreateLinkResponse struct {
	Results []CreateLinkResult `json:"results"`
}

// ToCreateLinkResult converts one service.CreateResult into its wire shape.
func ToCreateLinkResult(r service.CreateResult) CreateLinkResult {
	if r.Err != nil {
		env := FromAppError(r.Err)
		return CreateLinkResult{Error: &env.Error}
	}
	return CreateLinkResult{
		LongURL:  r.Link.LongURL,
		Code:     r.Link.Code,
		ShortURL: r.ShortURL,
	}
}

// PatchLinkRequest is the body of PATCH /api/links/{code}.
type PatchLinkRequest struct {
	URL            *string    `json:"url,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	ClearExpiresAt bool       `json:"clear_expires_at,omitempty"`
	Permanent      *bool      `json:"permanent,omitempty"`
	Restore        bool       `json:"restore,omitempty"`
}

// LinkResponse represents a Link in API responses.
type LinkResponse struct {
	Code      string     `json:"code"`
	LongURL   string     `json:"long_url"`
	DomainID  int64      `json:"domain_id"`
	Permanent bool       `json:"permanent"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Deleted   bool       `json:"deleted"`
	CreatedAt time.Time  `json:"created_at"`
}

func ToLinkResponse(l *model.Link) LinkResponse {
	return LinkResponse{
		Code:      l.Code,
		LongURL:   l.LongURL,
		DomainID:  l.DomainID,
		Permanent: l.Permanent,
		ExpiresAt: l.ExpiresAt,
		Deleted:   l.Deleted(),
		CreatedAt: l.CreatedAt,
	}
}

// LinkStatsResponse pairs a link with its all-time click total.
type LinkStatsResponse struct {
	LinkResponse
	ClickCount int64 `json:"click_count"`
}

func ToLinkStatsResponse(s service.LinkStats) LinkStatsResponse {
	return LinkStatsResponse{LinkResponse: ToLinkResponse(s.Link), ClickCount: s.ClickCount}
}

// StatsListResponse is the body of GET /api/stats.
type StatsListResponse struct {
	Data  []LinkStatsResponse `json:"data"`
	Total int                 `json:"total"`
	Page  int                 `json:"page"`
}

// ClickResponse represents a single Click in API responses.
type ClickResponse struct {
	ClickedAt time.Time `json:"clicked_at"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Referer   string    `json:"referer,omitempty"`
}

func ToClickResponse(c *model.Click) ClickResponse {
	return ClickResponse{ClickedAt: c.ClickedAt, IP: c.IP, UserAgent: c.UserAgent, Referer: c.Referer}
}

// ClickHistoryResponse is the body of GET /api/stats/{code}.
type ClickHistoryResponse struct {
	Data  []ClickResponse `json:"data"`
	Total int             `json:"total"`
	Page  int             `json:"page"`
}

// CreateDomainRequest is the body of POST /api/domains.
type CreateDomainRequest struct {
	Name        string `json:"name"`
	IsDefault   bool   `json:"is_default,omitempty"`
	Description string `json:"description,omitempty"`
}

// PatchDomainRequest is the body of PATCH /api/domains/{id}.
type PatchDomainRequest struct {
	Name             *string `json:"name,omitempty"`
	IsActive         *bool   `json:"is_active,omitempty"`
	IsDefault        *bool   `json:"is_default,omitempty"`
	Description      *string `json:"description,omitempty"`
	ClearDescription bool    `json:"clear_description,omitempty"`
}

// DomainResponse represents a Domain in API responses.
type DomainResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	IsDefault   bool   `json:"is_default"`
	IsActive    bool   `json:"is_active"`
	Description string `json:"description,omitempty"`
}

func ToDomainResponse(d *model.Domain) DomainResponse {
	return DomainResponse{
		ID:          d.ID,
		Name:        d.Name,
		IsDefault:   d.IsDefault,
		IsActive:    d.IsActive,
		Description: d.Description,
	}
}

// DomainListResponse is the body of GET /api/domains.
type DomainListResponse struct {
	Data []DomainResponse `json:"data"`
}

// TokenResponse represents an ApiToken in API responses (never
// includes the raw token or its hash).
type TokenResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

func ToTokenResponse(t *model.ApiToken) TokenResponse {
	return TokenResponse{
		ID:         t.ID,
		Name:       t.Name,
		CreatedAt:  t.CreatedAt,
		LastUsedAt: t.LastUsedAt,
		RevokedAt:  t.RevokedAt,
	}
}
