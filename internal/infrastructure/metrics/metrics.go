package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline counters. Malformed frames and unparseable events are dropped
// silently per the error policy, so the counters are the only trace of them.
var (
	TicksPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokenscope",
		Subsystem: "stream",
		Name:      "ticks_published_total",
		Help:      "Normalized price ticks published to the event bus",
	}, []string{"venue"})

	FramesDiscarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokenscope",
		Subsystem: "stream",
		Name:      "frames_discarded_total",
		Help:      "Inbound frames that did not match the ticker schema",
	}, []string{"venue"})

	Reconnects = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokenscope",
		Subsystem: "stream",
		Name:      "reconnects_total",
		Help:      "Watcher reconnect attempts after a disconnect or dial failure",
	}, []string{"venue"})

	EventsUnmatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokenscope",
		Subsystem: "engine",
		Name:      "events_unmatched_total",
		Help:      "Bus events whose pair identifier could not be parsed",
	}, []string{"venue"})

	AlertsTriggered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokenscope",
		Subsystem: "engine",
		Name:      "alerts_triggered_total",
		Help:      "Alerts transitioned from active to triggered",
	}, []string{"kind"})

	NotifyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tokenscope",
		Subsystem: "engine",
		Name:      "notify_failures_total",
		Help:      "Notifications that could not be delivered",
	})

	StoreErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tokenscope",
		Subsystem: "store",
		Name:      "errors_total",
		Help:      "Alert store read or write errors",
	})
)
