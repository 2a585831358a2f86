package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCachePutGet(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, "binance", "BTCUSDT", 64000); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	price, ok, err := c.Get(ctx, "binance", "BTCUSDT")
	if err != nil || !ok || price != 64000 {
		t.Errorf("Get = (%v, %v, %v), want (64000, true, nil)", price, ok, err)
	}

	if _, ok, _ := c.Get(ctx, "bybit", "BTCUSDT"); ok {
		t.Error("venues must not share entries")
	}
}

func TestMemoryCacheEntryExpires(t *testing.T) {
	c := NewMemory(5 * time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	ctx := context.Background()
	_ = c.Put(ctx, "binance", "BTCUSDT", 64000)

	c.now = func() time.Time { return base.Add(4 * time.Minute) }
	if _, ok, _ := c.Get(ctx, "binance", "BTCUSDT"); !ok {
		t.Error("entry expired before its TTL")
	}

	c.now = func() time.Time { return base.Add(5*time.Minute + time.Second) }
	if _, ok, _ := c.Get(ctx, "binance", "BTCUSDT"); ok {
		t.Error("entry survived past its TTL")
	}
}

func TestMemoryCacheWriteResetsTTL(t *testing.T) {
	c := NewMemory(5 * time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	ctx := context.Background()
	_ = c.Put(ctx, "binance", "BTCUSDT", 64000)

	c.now = func() time.Time { return base.Add(4 * time.Minute) }
	_ = c.Put(ctx, "binance", "BTCUSDT", 64100)

	c.now = func() time.Time { return base.Add(8 * time.Minute) }
	price, ok, _ := c.Get(ctx, "binance", "BTCUSDT")
	if !ok || price != 64100 {
		t.Errorf("rewrite must reset expiry, got (%v, %v)", price, ok)
	}
}
