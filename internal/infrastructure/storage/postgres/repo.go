package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/frederickimanuels/tokenscopex8/internal/application/port"
	"github.com/frederickimanuels/tokenscopex8/internal/domain"
)

const (
	activeSubscriptionsSQL = `SELECT DISTINCT exchange, base_currency, quote_currency
FROM alerts
WHERE status = 'active' AND alert_type = 'PRICE'`

	candidatePriceAlertsSQL = `SELECT id, user_id, channel_id, exchange, alert_type, base_currency,
       quote_currency, metric_name, trigger_condition, target_price, mention_role_id, status
FROM alerts
WHERE status = 'active' AND alert_type = 'PRICE'
  AND LOWER(exchange) = LOWER($1) AND base_currency = $2
  AND (quote_currency = $3 OR quote_currency = 'USD_STABLES')`

	activeMetricAlertsSQL = `SELECT id, user_id, channel_id, exchange, alert_type, base_currency,
       quote_currency, metric_name, trigger_condition, target_price, mention_role_id, status
FROM alerts
WHERE status = 'active' AND alert_type = 'METRIC' AND metric_name = $1`

	markTriggeredSQL = `UPDATE alerts SET status = 'triggered', triggered_at = NOW()
WHERE id = $1 AND status = 'active'`
)

// Repo is the Postgres alert store. Alert rows are owned by the front end;
// the only write this side performs is the conditional status transition.
type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Repo{db: db}, nil
}

// NewWithDB wraps an existing handle; used by tests.
func NewWithDB(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) ActiveSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, activeSubscriptionsSQL)
	if err != nil {
		return nil, fmt.Errorf("active subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		var s domain.Subscription
		if err := rows.Scan(&s.Exchange, &s.Base, &s.Quote); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *Repo) CandidatePriceAlerts(ctx context.Context, exchange, base, quote string) ([]domain.Alert, error) {
	rows, err := r.db.QueryContext(ctx, candidatePriceAlertsSQL, exchange, base, quote)
	if err != nil {
		return nil, fmt.Errorf("candidate price alerts: %w", err)
	}
	defer rows.Close()
	return scanAlerts(rows)
}

func (r *Repo) ActiveMetricAlerts(ctx context.Context, metric string) ([]domain.Alert, error) {
	rows, err := r.db.QueryContext(ctx, activeMetricAlertsSQL, metric)
	if err != nil {
		return nil, fmt.Errorf("active metric alerts: %w", err)
	}
	defer rows.Close()
	return scanAlerts(rows)
}

// MarkTriggered performs the single conditional write. RowsAffected zero
// means another path already moved the row out of active; that is a no-op,
// not an error, and is what keeps notifications at-most-once.
func (r *Repo) MarkTriggered(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, markTriggeredSQL, id)
	if err != nil {
		return false, fmt.Errorf("mark triggered %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark triggered %d: %w", id, err)
	}
	return n == 1, nil
}

func scanAlerts(rows *sql.Rows) ([]domain.Alert, error) {
	var alerts []domain.Alert
	for rows.Next() {
		var (
			a                         domain.Alert
			base, quote, metric, role sql.NullString
		)
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.ChannelID, &a.Exchange, &a.Kind,
			&base, &quote, &metric, &a.Condition, &a.Target, &role, &a.Status,
		); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Base = base.String
		a.Quote = quote.String
		a.MetricName = metric.String
		a.MentionRoleID = role.String
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return alerts, nil
}

var _ port.AlertStore = (*Repo)(nil)
