package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/frederickimanuels/tokenscopex8/internal/application/port"
	"github.com/frederickimanuels/tokenscopex8/internal/domain"
)

// DefaultChannel is the well-known price event channel name.
const DefaultChannel = "price-updates"

// RedisBus carries price events over a Redis pub/sub channel. Redis gives
// the fan-out and the publisher decoupling for free; there is no replay.
type RedisBus struct {
	rdb     *redis.Client
	channel string
	log     zerolog.Logger
}

func NewRedis(rdb *redis.Client, channel string, logger zerolog.Logger) *RedisBus {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBus{
		rdb:     rdb,
		channel: channel,
		log:     logger.With().Str("component", "bus").Logger(),
	}
}

func (b *RedisBus) Publish(ctx context.Context, ev domain.PriceEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal price event: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish price event: %w", err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, h port.EventHandler) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev domain.PriceEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Debug().Err(err).Str("payload", msg.Payload).Msg("malformed bus payload dropped")
				continue
			}
			h(ctx, ev)
		}
	}
}

var _ port.Bus = (*RedisBus)(nil)
