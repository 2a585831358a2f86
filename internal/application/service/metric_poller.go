package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/frederickimanuels/tokenscopex8/internal/application/port"
	"github.com/frederickimanuels/tokenscopex8/internal/infrastructure/metrics"
)

// MetricSource fetches one market-wide metric value.
type MetricSource interface {
	Fetch(ctx context.Context) (float64, error)
}

// MetricSourceFunc adapts a plain function to MetricSource.
type MetricSourceFunc func(ctx context.Context) (float64, error)

func (f MetricSourceFunc) Fetch(ctx context.Context) (float64, error) { return f(ctx) }

// MetricPoller is the alert engine specialized to a single always-available
// "pair": it fetches a global metric on its own interval and pushes it
// through the same match/transition/dispatch path as price events.
type MetricPoller struct {
	source   MetricSource
	store    port.AlertStore
	engine   *AlertEngine
	metric   string
	interval time.Duration
	log      zerolog.Logger
}

func NewMetricPoller(source MetricSource, store port.AlertStore, engine *AlertEngine, metric string, interval time.Duration, logger zerolog.Logger) *MetricPoller {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &MetricPoller{
		source:   source,
		store:    store,
		engine:   engine,
		metric:   metric,
		interval: interval,
		log:      logger.With().Str("component", "metric_poller").Str("metric", metric).Logger(),
	}
}

// Run polls once immediately, then on every tick until ctx ends.
func (p *MetricPoller) Run(ctx context.Context) error {
	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *MetricPoller) poll(ctx context.Context) {
	value, err := p.source.Fetch(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("metric fetch failed")
		return
	}
	p.log.Debug().Float64("value", value).Msg("metric sampled")

	alerts, err := p.store.ActiveMetricAlerts(ctx, p.metric)
	if err != nil {
		metrics.StoreErrors.Inc()
		p.log.Error().Err(err).Msg("metric alert query failed")
		return
	}
	for _, a := range alerts {
		if !a.Matches(value) {
			continue
		}
		p.engine.fire(ctx, a, "", value)
	}
}
