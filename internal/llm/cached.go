package llm

import (
	"context"
	"time"

	"github.com/ppiankov/claimwatch/internal/cache"
	"github.com/ppiankov/claimwatch/internal/model"
)

// CachedProvider memoises successful analyses of another provider
type CachedProvider struct {
	Provider
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedProvider wraps p with c. A nil cache returns p unchanged.
func NewCachedProvider(p Provider, c cache.Cache, ttl time.Duration) Provider {
	if c == nil || p == nil {
		return p
	}
	return &CachedProvider{Provider: p, cache: c, ttl: ttl}
}

// Analyze serves repeated claims from the cache; errors are never cached
func (p *CachedProvider) Analyze(ctx context.Context, claim string) (*model.Analysis, error) {
	key := cache.CacheKey("analysis:"+p.Name(), claim)

	var hit model.Analysis
	if cache.GetJSON(p.cache, key, &hit) {
		return &hit, nil
	}

	analysis, err := p.Provider.Analyze(ctx, claim)
	if err != nil {
		return nil, err
	}
	_ = cache.SetJSON(p.cache, key, analysis, p.ttl)
	return analysis, nil
}
