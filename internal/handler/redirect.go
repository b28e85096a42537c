package handler

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shortlink/shortlink/internal/apperr"
	"github.com/shortlink/shortlink/internal/middleware"
	"github.com/shortlink/shortlink/internal/model"
	"github.com/shortlink/shortlink/internal/service"
)

// RedirectHandler serves GET /{code}, the one unauthenticated route.
type RedirectHandler struct {
	links       *service.LinkService
	domains     *service.DomainService
	logger      *slog.Logger
	behindProxy bool
}

func NewRedirectHandler(links *service.LinkService, domains *service.DomainService, logger *slog.Logger, behindProxy bool) *RedirectHandler {
	return &RedirectHandler{links: links, domains: domains, logger: logger, behindProxy: behindProxy}
}

// Redirect resolves the domain from the request Host header and the
// code from the path, then issues a 301/307 redirect or the
// appropriate error response (404 not found, 410 gone).
func (h *RedirectHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	domain, err := h.domains.ResolveHost(r.Context(), requestHost(r))
	if err != nil {
		h.writeRedirectError(w, r, err)
		return
	}

	click := model.ClickEvent{
		ClickedAt: time.Now().UTC(),
		IP:        h.clientIP(r),
		UserAgent: r.Header.Get("User-Agent"),
		Referer:   r.Header.Get("Referer"),
	}

	result, err := h.links.ResolveRedirect(r.Context(), domain.ID, code, click)
	if err != nil {
		h.writeRedirectError(w, r, err)
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Cache-Control", "private, max-age=0")

	status := http.StatusTemporaryRedirect
	if result.Permanent {
		status = http.StatusMovedPermanently
	}
	http.Redirect(w, r, result.LongURL, status)
}

func (h *RedirectHandler) writeRedirectError(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=0")

	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, apperr.New(apperr.CodeNotFound, "link not found"))
	case errors.Is(err, apperr.ErrGone):
		writeError(w, apperr.New(apperr.CodeGone, "link is no longer available"))
	default:
		h.logger.Error("redirect failed", "error", err, "request_id", middleware.GetRequestID(r.Context()))
		writeError(w, err)
	}
}

// requestHost strips any port suffix from the Host header so domain
// lookups match on hostname alone.
func requestHost(r *http.Request) string {
	host := r.Host
	if i := strings.LastIndexByte(host, ':'); i != -1 {
		return host[:i]
	}
	return host
}

// clientIP extracts the caller's address, honoring proxy headers only
// when the server is configured to sit behind a trusted proxy.
func (h *RedirectHandler) clientIP(r *http.Request) string {
	if h.behindProxy {
		if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
			return ip
		}
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			if i := strings.IndexByte(fwd, ','); i != -1 {
				return strings.TrimSpace(fwd[:i])
			}
			return strings.TrimSpace(fwd)
		}
		if ip := r.Header.Get("X-Real-IP"); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
