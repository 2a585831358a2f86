package service

import (
	"context"
	"strings"

	"github.com/frederickimanuels/tokenscopex8/internal/application/port"
	"github.com/frederickimanuels/tokenscopex8/internal/domain"
)

// Quote is one on-demand price answer.
type Quote struct {
	Exchange string  `json:"exchange"`
	Pair     string  `json:"pair"`
	Price    float64 `json:"price"`
}

// PriceQuery answers on-demand price lookups from the cache. A miss and an
// expired entry are indistinguishable on purpose: both mean no active alert
// is currently warming that pair.
type PriceQuery struct {
	cache  port.PriceCache
	venues []string // probe order when the venue is omitted
}

func NewPriceQuery(cache port.PriceCache, venues []string) *PriceQuery {
	return &PriceQuery{cache: cache, venues: venues}
}

// Lookup resolves (venue?, coin, quote?) to the latest cached price. The
// quote defaults to the venue's default stablecoin.
func (q *PriceQuery) Lookup(ctx context.Context, exchange, coin, quote string) (Quote, bool, error) {
	coin = strings.ToUpper(strings.TrimSpace(coin))
	if coin == "" {
		return Quote{}, false, nil
	}

	venues := q.venues
	if v := strings.ToLower(strings.TrimSpace(exchange)); v != "" {
		venues = []string{v}
	}

	for _, venue := range venues {
		qt := strings.ToUpper(strings.TrimSpace(quote))
		if qt == "" {
			qt = domain.DefaultQuote(venue)
		}
		pair := domain.PairSymbol(venue, coin, qt)

		price, ok, err := q.cache.Get(ctx, venue, pair)
		if err != nil {
			return Quote{}, false, err
		}
		if ok {
			return Quote{Exchange: venue, Pair: pair, Price: price}, true, nil
		}
	}
	return Quote{}, false, nil
}
