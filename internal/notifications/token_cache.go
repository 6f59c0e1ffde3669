package notifications

import (
	"context"
	"sync"
	"time"
)

const defaultTokenMargin = 5 * time.Minute

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// TokenFetcher obtains a fresh token and its lifetime.
type TokenFetcher func(ctx context.Context) (token string, ttl time.Duration, err error)

// TokenCache holds one access token and refreshes it shortly before it
// expires. Concurrent callers share a single refresh.
type TokenCache struct {
	mu        sync.Mutex
	fetch     TokenFetcher
	clock     Clock
	margin    time.Duration
	token     string
	expiresAt time.Time
}

// TokenCacheOption customises a TokenCache.
type TokenCacheOption func(*TokenCache)

// WithCacheClock injects the clock used for expiry checks.
func WithCacheClock(clock Clock) TokenCacheOption {
	return func(c *TokenCache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithMargin sets how long before expiry a token stops being served.
func WithMargin(margin time.Duration) TokenCacheOption {
	return func(c *TokenCache) {
		if margin >= 0 {
			c.margin = margin
		}
	}
}

// NewTokenCache builds an empty cache around fetch.
func NewTokenCache(fetch TokenFetcher, opts ...TokenCacheOption) *TokenCache {
	c := &TokenCache{fetch: fetch, clock: SystemClock{}, margin: defaultTokenMargin}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrRefresh returns the cached token while it is valid for longer than the
// safety margin, otherwise fetches and stores a new one. A failed fetch leaves
// the cache empty.
func (c *TokenCache) GetOrRefresh(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if c.token != "" && now.Add(c.margin).Before(c.expiresAt) {
		return c.token, nil
	}

	token, ttl, err := c.fetch(ctx)
	if err != nil {
		c.token = ""
		c.expiresAt = time.Time{}
		return "", err
	}
	c.token = token
	c.expiresAt = now.Add(ttl)
	return token, nil
}

// Invalidate drops the cached token so the next call refreshes.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiresAt = time.Time{}
}
