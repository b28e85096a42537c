package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig controls the optional per-IP token-bucket limiter
// applied to the redirect route. It is never required for correctness;
// disabled by default.
type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
	Logger  *slog.Logger
}

// limiterStore holds one token bucket per client IP, evicting entries
// that have gone idle so the map doesn't grow unbounded under scanning
// traffic from many distinct addresses.
type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rps      rate.Limit
	burst    int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const limiterIdleTimeout = 10 * time.Minute

func newLimiterStore(rps float64, burst int) *limiterStore {
	return &limiterStore{
		limiters: make(map[string]*limiterEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (s *limiterStore) allow(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	entry, ok := s.limiters[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.limiters[ip] = entry
	}
	entry.lastSeen = now

	if len(s.limiters) > 10000 {
		for k, e := range s.limiters {
			if now.Sub(e.lastSeen) > limiterIdleTimeout {
				delete(s.limiters, k)
			}
		}
	}

	return entry.limiter.Allow()
}

// RateLimitIP returns middleware that rejects requests once an IP
// exceeds cfg.RPS/cfg.Burst, used on the redirect route to blunt
// scanning traffic against the short-code namespace.
func RateLimitIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	store := newLimiterStore(cfg.RPS, cfg.Burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			ip := getClientIP(r)
			if !store.allow(ip) {
				if cfg.Logger != nil {
					cfg.Logger.Warn("rate limit exceeded",
						"ip", ip,
						"path", r.URL.Path,
						"request_id", GetRequestID(r.Context()),
					)
				}
				w.Header().Set("Retry-After", "1")
				writeRateLimitError(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeRateLimitError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = fmt.Fprint(w, `{"error":{"code":"rate_limited","message":"rate limit exceeded"}}`)
}

// getClientIP extracts the client IP, checking proxy headers before
// falling back to RemoteAddr.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
