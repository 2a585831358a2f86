package cache

import (
	"context"
	"sync"
	"time"

	"github.com/frederickimanuels/tokenscopex8/internal/application/port"
)

type entry struct {
	price   float64
	written time.Time
}

// MemoryCache is the in-process implementation, used in tests and
// single-node runs without Redis. Expiry is checked lazily on read.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) Put(_ context.Context, exchange, pair string, price float64) error {
	c.mu.Lock()
	c.entries[key(exchange, pair)] = entry{price: price, written: c.now()}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Get(_ context.Context, exchange, pair string) (float64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key(exchange, pair)
	e, ok := c.entries[k]
	if !ok {
		return 0, false, nil
	}
	if c.now().Sub(e.written) > c.ttl {
		delete(c.entries, k)
		return 0, false, nil
	}
	return e.price, true, nil
}

var _ port.PriceCache = (*MemoryCache)(nil)
