package port

import "context"

// PriceCache holds the last observed price per (venue, pair) with a fixed
// expiry measured from the last write. An expired entry reads the same as
// one that was never written.
type PriceCache interface {
	Put(ctx context.Context, exchange, pair string, price float64) error
	Get(ctx context.Context, exchange, pair string) (price float64, ok bool, err error)
}
