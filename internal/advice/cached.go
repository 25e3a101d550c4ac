package advice

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"budgeter/internal/cache"
)

// Cached reuses advice for identical prompts within the cache TTL. Errors
// are never cached.
type Cached struct {
	next  Advisor
	cache cache.Cache[string]
}

var _ Advisor = (*Cached)(nil)

// NewCached wraps next with an LRU of size entries. A non-positive ttl
// returns next unchanged.
func NewCached(next Advisor, size int, ttl time.Duration, opts ...cache.Option) Advisor {
	if ttl <= 0 {
		return next
	}
	return &Cached{next: next, cache: cache.NewLRUCache[string](size, ttl, opts...)}
}

func (c *Cached) Complete(ctx context.Context, system, user string) (string, error) {
	key := promptKey(system, user)
	if text, ok := c.cache.Get(key); ok {
		return text, nil
	}
	text, err := c.next.Complete(ctx, system, user)
	if err != nil {
		return "", err
	}
	c.cache.Set(key, text)
	return text, nil
}

func promptKey(system, user string) string {
	h := sha256.New()
	h.Write([]byte(system))
	h.Write([]byte{0})
	h.Write([]byte(user))
	return hex.EncodeToString(h.Sum(nil))
}
