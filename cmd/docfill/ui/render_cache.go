// Package ui provides rendering cache for performance optimization.
package ui

import (
	"hash/fnv"
	"math"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// RenderCache provides hash-based caching for rendered content.
// Entries expire so a long session does not keep every rendered message forever.
type RenderCache struct {
	cache *cache.Cache
}

// NewRenderCache creates a cache whose entries live for ttl.
func NewRenderCache(ttl time.Duration) *RenderCache {
	return &RenderCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

// computeHash computes a FNV-1a hash for cache keys.
func computeHash(inputs ...any) uint64 {
	h := fnv.New64a()
	var b [8]byte

	put := func(u uint64) {
		for i := range b {
			b[i] = byte(u >> (8 * i))
		}
		h.Write(b[:])
	}

	for _, input := range inputs {
		switch v := input.(type) {
		case string:
			put(uint64(len(v)))
			h.Write([]byte(v))
		case int:
			put(uint64(v))
		case float64:
			put(math.Float64bits(v))
		case bool:
			if v {
				h.Write([]byte{1})
			} else {
				h.Write([]byte{0})
			}
		}
	}

	return h.Sum64()
}

// ComputeKey generates a cache key from multiple inputs.
func ComputeKey(inputs ...any) uint64 {
	return computeHash(inputs...)
}

// Get retrieves cached content if available.
func (rc *RenderCache) Get(key uint64) (string, bool) {
	if x, found := rc.cache.Get(strconv.FormatUint(key, 16)); found {
		return x.(string), true
	}
	return "", false
}

// Set stores rendered content in the cache.
func (rc *RenderCache) Set(key uint64, content string) {
	rc.cache.Set(strconv.FormatUint(key, 16), content, cache.DefaultExpiration)
}

// Len reports the number of cached entries, including expired ones not yet purged.
func (rc *RenderCache) Len() int {
	return rc.cache.ItemCount()
}

// Clear empties the cache.
func (rc *RenderCache) Clear() {
	rc.cache.Flush()
}

// GetOrCompute retrieves from cache or computes if missing.
func (rc *RenderCache) GetOrCompute(key uint64, compute func() string) string {
	if content, ok := rc.Get(key); ok {
		return content
	}

	content := compute()
	rc.Set(key, content)
	return content
}
