package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/frederickimanuels/tokenscopex8/internal/application/port"
	"github.com/frederickimanuels/tokenscopex8/internal/domain"
)

// CacheUpdater mirrors every bus event into the price cache, resetting the
// entry's expiry on each write.
type CacheUpdater struct {
	bus   port.Bus
	cache port.PriceCache
	log   zerolog.Logger
}

func NewCacheUpdater(b port.Bus, cache port.PriceCache, logger zerolog.Logger) *CacheUpdater {
	return &CacheUpdater{
		bus:   b,
		cache: cache,
		log:   logger.With().Str("component", "cache_updater").Logger(),
	}
}

// Run subscribes to the bus and blocks until ctx is cancelled.
func (u *CacheUpdater) Run(ctx context.Context) error {
	return u.bus.Subscribe(ctx, u.handle)
}

func (u *CacheUpdater) handle(ctx context.Context, ev domain.PriceEvent) {
	if err := u.cache.Put(ctx, ev.Exchange, ev.Pair, ev.Price); err != nil {
		u.log.Warn().Err(err).Str("pair", ev.Pair).Msg("cache write failed")
	}
}
