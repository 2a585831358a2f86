package port

import (
	"context"

	"github.com/frederickimanuels/tokenscopex8/internal/domain"
)

// EventHandler consumes one bus event. Handlers must return quickly; any
// slow work belongs in a goroutine of their own.
type EventHandler func(ctx context.Context, ev domain.PriceEvent)

// Bus is the price event channel between watchers and consumers.
// Delivery is at-most-once: publishers never block on slow subscribers,
// and a dropped tick is superseded by the next one within seconds.
type Bus interface {
	Publish(ctx context.Context, ev domain.PriceEvent) error
	// Subscribe blocks, invoking h for every event until ctx is cancelled.
	Subscribe(ctx context.Context, h EventHandler) error
}
