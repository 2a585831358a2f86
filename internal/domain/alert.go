package domain

import "time"

// Alert kinds.
const (
	KindPrice  = "PRICE"
	KindMetric = "METRIC"
)

// Trigger directions.
const (
	ConditionAbove = "ABOVE"
	ConditionBelow = "BELOW"
)

// Alert lifecycle. Transitions are one-way: active -> triggered or
// active -> cancelled, both terminal.
const (
	StatusActive    = "active"
	StatusTriggered = "triggered"
	StatusCancelled = "cancelled"
)

// QuoteAnyStable is the sentinel quote meaning "any stablecoin the venue
// supports". It is expanded per venue at reconciliation time.
const QuoteAnyStable = "USD_STABLES"

// MetricBTCDominance is the only market-wide metric currently polled.
const MetricBTCDominance = "BTC_DOMINANCE"

// Alert is a standing user rule read from the store. The core never writes
// anything but the single active -> triggered status transition.
type Alert struct {
	ID            int64
	UserID        string
	ChannelID     string
	Kind          string // PRICE or METRIC
	Exchange      string
	Base          string
	Quote         string // may be QuoteAnyStable
	MetricName    string // set for METRIC alerts
	Condition     string // ABOVE or BELOW
	Target        float64
	MentionRoleID string
	Status        string
}

// Matches reports whether value satisfies the trigger condition. Equality
// counts as crossed for both directions: the alert fires the moment the
// market reaches the target, not strictly past it.
func (a Alert) Matches(value float64) bool {
	switch a.Condition {
	case ConditionAbove:
		return a.Target <= value
	case ConditionBelow:
		return a.Target >= value
	default:
		return false
	}
}

// Label is the human-readable identifier used in notifications.
func (a Alert) Label() string {
	if a.Kind == KindMetric {
		return a.MetricName
	}
	if a.Quote == QuoteAnyStable {
		return a.Base
	}
	return a.Base + "/" + a.Quote
}

// Subscription is one (venue, base, quote) row derived from the active rule
// set. Quote may still be the stablecoin sentinel at this point.
type Subscription struct {
	Exchange string
	Base     string
	Quote    string
}

// PriceEvent is one normalized tick as carried on the bus. Pair is the
// venue-native concatenated identifier, e.g. "BTCUSDT".
type PriceEvent struct {
	Exchange   string    `json:"exchange"`
	Pair       string    `json:"pair"`
	Price      float64   `json:"price"`
	ObservedAt time.Time `json:"observed_at"`
}
