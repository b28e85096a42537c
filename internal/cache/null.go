package cache

import (
	"context"
	"time"
)

// NullCache is a Cache that never caches anything; every Get is a miss.
// Selected at startup when no REDIS_URL is configured, so the redirect
// path always falls through to the store rather than failing startup.
type NullCache struct{}

func NewNull() *NullCache { return &NullCache{} }

func (NullCache) Get(context.Context, int64, string) (Outcome, Entry, error) {
	return OutcomeMiss, Entry{}, nil
}

func (NullCache) SetHit(context.Context, int64, string, Entry, time.Duration) error { return nil }

func (NullCache) SetMissing(context.Context, int64, string, time.Duration) error { return nil }

func (NullCache) SetGone(context.Context, int64, string, time.Duration) error { return nil }

func (NullCache) Invalidate(context.Context, int64, string) error { return nil }

func (NullCache) Ping(context.Context) error { return nil }

func (NullCache) Close() error { return nil }
