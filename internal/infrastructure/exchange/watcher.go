package exchange

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/frederickimanuels/tokenscopex8/internal/application/port"
	"github.com/frederickimanuels/tokenscopex8/internal/domain"
	"github.com/frederickimanuels/tokenscopex8/internal/infrastructure/metrics"
)

const (
	// DefaultReconnectDelay is deliberately fixed rather than exponential:
	// transient blips should self-heal fast, and subscription correctness
	// is governed by the reconciler, not the retry schedule.
	DefaultReconnectDelay = 10 * time.Second

	dialTimeout = 10 * time.Second
)

// Conn is one live venue connection delivering normalized ticks.
type Conn interface {
	// ReadEvents blocks for the next inbound frame and returns the ticks it
	// carried. An empty slice means the frame was protocol housekeeping or
	// did not match the ticker schema.
	ReadEvents() ([]domain.PriceEvent, error)
	// Ping services application-level keepalive where the venue requires it.
	Ping() error
	Close() error
}

// Adapter holds all venue-specific wire knowledge: how to open a single
// multiplexed connection for a pair set and how to read frames off it.
// Adding a venue means implementing this, not branching in shared code.
type Adapter interface {
	Venue() string
	Dial(ctx context.Context, pairs []string) (Conn, error)
	// KeepaliveInterval is zero when the venue needs no app-level ping.
	KeepaliveInterval() time.Duration
}

// Watcher drives one venue's connection state machine:
// Idle -> Connecting -> Streaming -> Connecting on any error, or back to
// Idle when restarted with an empty set. All state is owned by Run's
// goroutine; Restart/Stop only hand over instructions.
type Watcher struct {
	adapter        Adapter
	bus            port.Bus
	reconnectDelay time.Duration
	cmds           chan []string
	log            zerolog.Logger

	mu    sync.Mutex
	pairs []string
}

func NewWatcher(adapter Adapter, b port.Bus, reconnectDelay time.Duration, logger zerolog.Logger) *Watcher {
	if reconnectDelay <= 0 {
		reconnectDelay = DefaultReconnectDelay
	}
	return &Watcher{
		adapter:        adapter,
		bus:            b,
		reconnectDelay: reconnectDelay,
		cmds:           make(chan []string, 1),
		log:            logger.With().Str("venue", adapter.Venue()).Logger(),
	}
}

func (w *Watcher) Venue() string { return w.adapter.Venue() }

func (w *Watcher) Pairs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.pairs...)
}

func (w *Watcher) setPairs(pairs []string) {
	w.mu.Lock()
	w.pairs = append([]string(nil), pairs...)
	w.mu.Unlock()
}

// Restart replaces the desired pair set. A queued instruction that was
// never picked up is collapsed away, so the most recent one always wins.
func (w *Watcher) Restart(pairs []string) {
	w.setPairs(pairs)
	select {
	case <-w.cmds:
	default:
	}
	w.cmds <- append([]string(nil), pairs...)
}

// Stop idles the watcher: connection closed, pending reconnect cancelled,
// no dial attempts until a non-empty Restart.
func (w *Watcher) Stop() { w.Restart(nil) }

// Run drives the state machine until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	pairs := w.Pairs()
	for {
		if len(pairs) == 0 {
			w.log.Info().Msg("watcher idle")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case pairs = <-w.cmds:
				continue
			}
		}

		next, switched, err := w.stream(ctx, pairs)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if switched {
			pairs = next
			continue
		}

		w.log.Warn().Err(err).Dur("retry_in", w.reconnectDelay).Msg("stream ended, reconnecting")
		metrics.Reconnects.WithLabelValues(w.Venue()).Inc()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case pairs = <-w.cmds:
			// newest instruction supersedes the retry timer
		case <-time.After(w.reconnectDelay):
		}
	}
}

// stream opens one connection for the pair set and pumps it until the
// connection fails, the context ends, or a new instruction arrives.
func (w *Watcher) stream(ctx context.Context, pairs []string) (next []string, switched bool, err error) {
	dctx, cancel := context.WithTimeout(ctx, dialTimeout)
	conn, err := w.adapter.Dial(dctx, pairs)
	cancel()
	if err != nil {
		return nil, false, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	w.log.Info().Int("pairs", len(pairs)).Msg("streaming")

	errCh := make(chan error, 1)
	go func() {
		for {
			events, err := conn.ReadEvents()
			if err != nil {
				errCh <- err
				return
			}
			if len(events) == 0 {
				metrics.FramesDiscarded.WithLabelValues(w.Venue()).Inc()
				continue
			}
			for _, ev := range events {
				if err := w.bus.Publish(ctx, ev); err != nil {
					// best-effort stream; the next tick supersedes this one
					w.log.Debug().Err(err).Str("pair", ev.Pair).Msg("publish failed, tick dropped")
					continue
				}
				metrics.TicksPublished.WithLabelValues(w.Venue()).Inc()
			}
		}
	}()

	var keepC <-chan time.Time
	if d := w.adapter.KeepaliveInterval(); d > 0 {
		keepalive := time.NewTicker(d)
		defer keepalive.Stop()
		keepC = keepalive.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case next := <-w.cmds:
			return next, true, nil
		case err := <-errCh:
			return nil, false, err
		case <-keepC:
			if err := conn.Ping(); err != nil {
				return nil, false, fmt.Errorf("keepalive: %w", err)
			}
		}
	}
}

var _ port.Streamer = (*Watcher)(nil)
