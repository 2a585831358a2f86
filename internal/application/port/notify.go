package port

import (
	"context"

	"github.com/frederickimanuels/tokenscopex8/internal/domain"
)

// Notification carries everything needed to tell the alert owner their rule
// fired: the rule itself, the venue pair identifier that matched (empty for
// metric alerts) and the observed value.
type Notification struct {
	Alert domain.Alert
	Pair  string
	Value float64
}

// Notifier delivers one message to the alert's destination. Delivery is
// one-shot best-effort: the caller logs failures and does not retry.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
