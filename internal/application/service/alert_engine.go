package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/frederickimanuels/tokenscopex8/internal/application/port"
	"github.com/frederickimanuels/tokenscopex8/internal/domain"
	"github.com/frederickimanuels/tokenscopex8/internal/infrastructure/metrics"
)

const dispatchTimeout = 10 * time.Second

// AlertEngine evaluates every bus event against the active rule set and
// fires matching alerts at most once each. It never consults the cache:
// each event is the freshest possible value by definition.
type AlertEngine struct {
	store    port.AlertStore
	notifier port.Notifier
	bus      port.Bus
	log      zerolog.Logger

	inflight sync.WaitGroup
}

func NewAlertEngine(store port.AlertStore, notifier port.Notifier, b port.Bus, logger zerolog.Logger) *AlertEngine {
	return &AlertEngine{
		store:    store,
		notifier: notifier,
		bus:      b,
		log:      logger.With().Str("component", "alert_engine").Logger(),
	}
}

// Run subscribes to the bus and blocks until ctx is cancelled.
func (e *AlertEngine) Run(ctx context.Context) error {
	return e.bus.Subscribe(ctx, e.HandlePriceEvent)
}

// HandlePriceEvent evaluates one tick. Failures are scoped to the single
// event or row they concern; the pipeline itself never stops.
func (e *AlertEngine) HandlePriceEvent(ctx context.Context, ev domain.PriceEvent) {
	base, quote, ok := domain.SplitPair(ev.Exchange, ev.Pair)
	if !ok {
		// cannot match any rule without a base symbol
		metrics.EventsUnmatched.WithLabelValues(ev.Exchange).Inc()
		return
	}

	alerts, err := e.store.CandidatePriceAlerts(ctx, ev.Exchange, base, quote)
	if err != nil {
		metrics.StoreErrors.Inc()
		e.log.Error().Err(err).Str("pair", ev.Pair).Msg("candidate query failed, event skipped")
		return
	}

	for _, a := range alerts {
		if !a.Matches(ev.Price) {
			continue
		}
		e.fire(ctx, a, ev.Pair, ev.Price)
	}
}

// fire attempts the conditional active -> triggered transition and, only
// when this call won it, dispatches the notification. Dispatch runs in its
// own goroutine so one slow delivery cannot stall other alerts.
func (e *AlertEngine) fire(ctx context.Context, a domain.Alert, pair string, value float64) {
	ok, err := e.store.MarkTriggered(ctx, a.ID)
	if err != nil {
		metrics.StoreErrors.Inc()
		e.log.Error().Err(err).Int64("alert_id", a.ID).Msg("status transition failed")
		return
	}
	if !ok {
		// already triggered or cancelled by a concurrent path
		return
	}

	metrics.AlertsTriggered.WithLabelValues(a.Kind).Inc()
	e.log.Info().Int64("alert_id", a.ID).Str("label", a.Label()).Float64("value", value).Msg("alert triggered")

	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		// detached from the event context: a shutdown mid-dispatch should
		// still let the message out within the timeout
		sctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		if err := e.notifier.Send(sctx, port.Notification{Alert: a, Pair: pair, Value: value}); err != nil {
			// the row stays triggered; delivery is one-shot best-effort
			metrics.NotifyFailures.Inc()
			e.log.Error().Err(err).Int64("alert_id", a.ID).Msg("notification dispatch failed")
		}
	}()
}

// Wait blocks until in-flight notification dispatches finish. Called on
// shutdown.
func (e *AlertEngine) Wait() { e.inflight.Wait() }
