package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/frederickimanuels/tokenscopex8/internal/application/port"
)

// DefaultTTL matches the original 5-minute expiry: a price older than that
// must not be served silently.
const DefaultTTL = 5 * time.Minute

// RedisCache stores the latest price per (venue, pair) under
// "price:<venue>:<pair>" with a TTL reset on every write.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func key(exchange, pair string) string {
	return "price:" + exchange + ":" + pair
}

func (c *RedisCache) Put(ctx context.Context, exchange, pair string, price float64) error {
	if err := c.rdb.Set(ctx, key(exchange, pair), price, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache put %s: %w", key(exchange, pair), err)
	}
	return nil
}

func (c *RedisCache) Get(ctx context.Context, exchange, pair string) (float64, bool, error) {
	val, err := c.rdb.Get(ctx, key(exchange, pair)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("cache get %s: %w", key(exchange, pair), err)
	}
	price, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, fmt.Errorf("cache value %q: %w", val, err)
	}
	return price, true, nil
}

var _ port.PriceCache = (*RedisCache)(nil)
