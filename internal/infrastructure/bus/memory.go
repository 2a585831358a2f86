package bus

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/frederickimanuels/tokenscopex8/internal/application/port"
	"github.com/frederickimanuels/tokenscopex8/internal/domain"
)

// MemoryBus is an in-process bus with the same at-most-once semantics as
// the Redis one: each subscriber gets a buffered channel and a full buffer
// drops the event rather than stalling the publisher.
type MemoryBus struct {
	mu      sync.RWMutex
	subs    map[int]chan domain.PriceEvent
	nextID  int
	buffer  int
	dropped atomic.Int64
}

func NewMemory(buffer int) *MemoryBus {
	if buffer <= 0 {
		buffer = 64
	}
	return &MemoryBus{
		subs:   make(map[int]chan domain.PriceEvent),
		buffer: buffer,
	}
}

func (b *MemoryBus) Publish(_ context.Context, ev domain.PriceEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// slow consumer; the next tick supersedes this one anyway
			b.dropped.Add(1)
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, h port.EventHandler) error {
	ch := make(chan domain.PriceEvent, b.buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-ch:
			h(ctx, ev)
		}
	}
}

// Dropped reports how many events were discarded for slow subscribers.
func (b *MemoryBus) Dropped() int64 { return b.dropped.Load() }

var _ port.Bus = (*MemoryBus)(nil)
