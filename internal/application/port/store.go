package port

import (
	"context"

	"github.com/frederickimanuels/tokenscopex8/internal/domain"
)

// AlertStore is the narrow contract against the relational alert store.
// The core reads active rows and performs exactly one kind of write: the
// conditional active -> triggered transition.
type AlertStore interface {
	// ActiveSubscriptions returns the distinct (venue, base, quote) rows of
	// all active PRICE alerts. Sentinel quotes are not expanded here.
	ActiveSubscriptions(ctx context.Context) ([]domain.Subscription, error)

	// CandidatePriceAlerts returns active PRICE alerts for the venue and
	// base whose quote is either the exact quote or the stablecoin sentinel.
	// Venue comparison ignores case; events carry lowercased venues while
	// rows may not.
	CandidatePriceAlerts(ctx context.Context, exchange, base, quote string) ([]domain.Alert, error)

	// ActiveMetricAlerts returns active METRIC alerts for a metric name.
	ActiveMetricAlerts(ctx context.Context, metric string) ([]domain.Alert, error)

	// MarkTriggered transitions an alert from active to triggered. It
	// reports false without error when the row was no longer active, which
	// is how a concurrent duplicate fire becomes a no-op.
	MarkTriggered(ctx context.Context, id int64) (bool, error)

	Close() error
}
