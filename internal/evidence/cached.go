package evidence

import (
	"context"
	"time"

	"github.com/ppiankov/claimwatch/internal/cache"
)

// Cached memoises successful searches of another source; failures are never cached
type Cached struct {
	source Source
	cache  cache.Cache
	ttl    time.Duration
}

// NewCached wraps source with c. A nil cache returns source unchanged.
func NewCached(source Source, c cache.Cache, ttl time.Duration) Source {
	if c == nil {
		return source
	}
	return &Cached{source: source, cache: c, ttl: ttl}
}

// Name returns the wrapped source's name
func (c *Cached) Name() string { return c.source.Name() }

// Search serves from the cache when possible
func (c *Cached) Search(ctx context.Context, claim string) (*SearchResult, error) {
	key := cache.CacheKey("evidence:"+c.source.Name(), claim)

	var hit SearchResult
	if cache.GetJSON(c.cache, key, &hit) {
		return &hit, nil
	}

	res, err := c.source.Search(ctx, claim)
	if err != nil {
		return nil, err
	}
	_ = cache.SetJSON(c.cache, key, res, c.ttl)
	return res, nil
}
