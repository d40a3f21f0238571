package reqsign

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultNonceCacheSize bounds the nonce cache when NewNonceCache is
// given a non-positive size.
const DefaultNonceCacheSize = 8192

// NonceCache remembers recently accepted (workerID, nonce) pairs so a
// captured request cannot be replayed inside the freshness window.
// Entries expire after the window, after which the freshness check
// rejects the request anyway. Safe for concurrent use.
type NonceCache struct {
	mu   sync.Mutex
	seen *expirable.LRU[string, struct{}]
}

// NewNonceCache creates a nonce cache. Entries live for ttl, which
// should equal the verifier's freshness window. A non-positive size
// falls back to DefaultNonceCacheSize.
func NewNonceCache(size int, ttl time.Duration) *NonceCache {
	if size <= 0 {
		size = DefaultNonceCacheSize
	}

	return &NonceCache{
		seen: expirable.NewLRU[string, struct{}](size, nil, ttl),
	}
}

// Seen reports whether the (workerID, nonce) pair was already recorded,
// recording it when it was not. Check and record happen under one lock
// so two concurrent requests with the same nonce cannot both pass.
func (c *NonceCache) Seen(workerID, nonce string) bool {
	key := workerID + "\x00" + nonce

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seen.Contains(key) {
		return true
	}

	c.seen.Add(key, struct{}{})

	return false
}

// Len returns the number of live entries in the cache.
func (c *NonceCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.seen.Len()
}
