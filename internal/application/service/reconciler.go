package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/frederickimanuels/tokenscopex8/internal/application/port"
	"github.com/frederickimanuels/tokenscopex8/internal/domain"
	"github.com/frederickimanuels/tokenscopex8/internal/infrastructure/metrics"
)

// Reconciler periodically recomputes the pair set each venue must stream
// from the active rule set and restarts only the watchers whose set
// actually changed. Full restart with the new list is deliberate: venues
// differ in incremental-subscribe support and rule churn is rare relative
// to the interval.
type Reconciler struct {
	store     port.AlertStore
	streamers map[string]port.Streamer
	interval  time.Duration
	idleMax   time.Duration
	log       zerolog.Logger

	// per-venue backoff while no rules exist for it
	idleWait  map[string]time.Duration
	skipUntil map[string]time.Time
}

func NewReconciler(store port.AlertStore, streamers []port.Streamer, interval, idleMax time.Duration, logger zerolog.Logger) *Reconciler {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if idleMax < interval {
		idleMax = 4 * interval
	}
	byVenue := make(map[string]port.Streamer, len(streamers))
	for _, s := range streamers {
		byVenue[strings.ToLower(s.Venue())] = s
	}
	return &Reconciler{
		store:     store,
		streamers: byVenue,
		interval:  interval,
		idleMax:   idleMax,
		log:       logger.With().Str("component", "reconciler").Logger(),
		idleWait:  make(map[string]time.Duration),
		skipUntil: make(map[string]time.Time),
	}
}

// Run reconciles once immediately, then on every tick until ctx ends.
func (r *Reconciler) Run(ctx context.Context) error {
	r.reconcile(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

func (r *Reconciler) reconcile(ctx context.Context) {
	desired, err := r.desired(ctx)
	if err != nil {
		// keep the previous snapshot: a transient read failure must never
		// tear down valid live subscriptions
		metrics.StoreErrors.Inc()
		r.log.Error().Err(err).Msg("rule set read failed, keeping current subscriptions")
		return
	}

	now := time.Now()
	for venue, s := range r.streamers {
		want := desired[venue]

		if len(want) == 0 {
			if until, ok := r.skipUntil[venue]; ok && now.Before(until) {
				continue
			}
			if len(s.Pairs()) != 0 {
				r.log.Info().Str("venue", venue).Msg("no active rules, idling watcher")
				s.Stop()
			}
			wait := r.idleWait[venue] * 2
			if wait < r.interval {
				wait = r.interval
			}
			if wait > r.idleMax {
				wait = r.idleMax
			}
			r.idleWait[venue] = wait
			r.skipUntil[venue] = now.Add(wait)
			continue
		}

		delete(r.idleWait, venue)
		delete(r.skipUntil, venue)

		have := s.Pairs()
		sort.Strings(have)
		if equalSets(want, have) {
			continue
		}
		r.log.Info().Str("venue", venue).
			Strs("pairs", want).
			Msg("subscription set changed, restarting watcher")
		s.Restart(want)
	}
}

// desired expands the active rule set into sorted, deduplicated per-venue
// pair lists. Sorting makes the equality check stable across passes.
func (r *Reconciler) desired(ctx context.Context) (map[string][]string, error) {
	subs, err := r.store.ActiveSubscriptions(ctx)
	if err != nil {
		return nil, err
	}

	sets := make(map[string]map[string]struct{})
	for _, sub := range subs {
		venue := strings.ToLower(strings.TrimSpace(sub.Exchange))
		if _, known := r.streamers[venue]; !known {
			r.log.Warn().Str("venue", venue).Str("base", sub.Base).Msg("rule references unknown venue, skipped")
			continue
		}
		for _, pair := range domain.SubscriptionPairs(sub) {
			if sets[venue] == nil {
				sets[venue] = make(map[string]struct{})
			}
			sets[venue][pair] = struct{}{}
		}
	}

	out := make(map[string][]string, len(sets))
	for venue, set := range sets {
		pairs := make([]string, 0, len(set))
		for p := range set {
			pairs = append(pairs, p)
		}
		sort.Strings(pairs)
		out[venue] = pairs
	}
	return out, nil
}

func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
