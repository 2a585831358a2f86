package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/frederickimanuels/tokenscopex8/internal/infrastructure/cache"
)

func TestCacheUpdaterMirrorsEvents(t *testing.T) {
	c := cache.NewMemory(time.Minute)
	u := NewCacheUpdater(nil, c, zerolog.Nop())

	ctx := context.Background()
	u.handle(ctx, newPriceEvent("BTCUSDT", 64000))
	u.handle(ctx, newPriceEvent("BTCUSDT", 64100))

	price, ok, err := c.Get(ctx, "binance", "BTCUSDT")
	if err != nil || !ok {
		t.Fatalf("Get = (%v, %v, %v), want hit", price, ok, err)
	}
	if price != 64100 {
		t.Errorf("price = %v, want latest write 64100", price)
	}
}
