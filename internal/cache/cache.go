package cache

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/OneOfOne/xxhash"

	"github.com/ppiankov/claimwatch/internal/model"
)

// Cache stores serialized AI analyses and evidence searches
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

const keyPrefix = "claimwatch-v1"

// CacheKey builds a stable key for a namespace ("analysis", "evidence:pubmed", ...) and its inputs.
// Inputs are lowercased and trimmed so trivially different claim texts share an entry.
func CacheKey(namespace string, parts ...string) string {
	h := xxhash.NewS64(0)
	for i, p := range parts {
		if i > 0 {
			_, _ = h.Write([]byte{0})
		}
		_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(p))))
	}
	ns := strings.NewReplacer(":", "-", "/", "-", " ", "-").Replace(namespace)
	return keyPrefix + "-" + ns + "-" + strconv.FormatUint(h.Sum64(), 16)
}

// New builds the cache selected by cfg.Backend. A disabled cache yields (nil, nil).
func New(cfg model.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Backend {
	case "", "memory":
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute), nil
	case "disk":
		return NewDiskCache(cfg.DiskDir, cfg.DiskTTL), nil
	case "layered":
		return NewLayeredCache(cfg.MemoryTTL, cfg.DiskDir, cfg.DiskTTL), nil
	case "redis":
		return NewRedisCache(cfg.RedisURL, cfg.MemoryTTL)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// GetJSON decodes the entry at key into v, reporting whether a usable entry was found
func GetJSON(c Cache, key string, v any) bool {
	if c == nil {
		return false
	}
	data, ok := c.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// SetJSON encodes v and stores it under key
func SetJSON(c Cache, key string, v any, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return c.Set(key, data, ttl)
}
