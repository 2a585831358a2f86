package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/frederickimanuels/tokenscopex8/internal/application/port"
	"github.com/frederickimanuels/tokenscopex8/internal/domain"
)

// Repo is the SQLite alert store for single-node deployments. Same contract
// as the Postgres repo; the conditional transition relies on SQLite's
// per-connection write serialization.
type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

// DB exposes the handle for seeding and inspection in tests.
func (r *Repo) DB() *sql.DB { return r.db }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS alerts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL,
  channel_id TEXT NOT NULL,
  exchange TEXT NOT NULL DEFAULT '',
  alert_type TEXT NOT NULL,
  base_currency TEXT NOT NULL DEFAULT '',
  quote_currency TEXT NOT NULL DEFAULT '',
  metric_name TEXT NOT NULL DEFAULT '',
  trigger_condition TEXT NOT NULL,
  target_price REAL NOT NULL,
  mention_role_id TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'active',
  created_at INTEGER NOT NULL DEFAULT (strftime('%s','now')),
  triggered_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_alerts_status_type ON alerts(status, alert_type);
CREATE INDEX IF NOT EXISTS idx_alerts_lookup ON alerts(exchange, base_currency);
`)
	if err != nil {
		return fmt.Errorf("migrate alerts: %w", err)
	}
	return nil
}

func (r *Repo) ActiveSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT DISTINCT exchange, base_currency, quote_currency
FROM alerts
WHERE status = 'active' AND alert_type = 'PRICE'`)
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
	return subs, rows.Err()
}

func (r *Repo) CandidatePriceAlerts(ctx context.Context, exchange, base, quote string) ([]domain.Alert, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, channel_id, exchange, alert_type, base_currency,
       quote_currency, metric_name, trigger_condition, target_price, mention_role_id, status
FROM alerts
WHERE status = 'active' AND alert_type = 'PRICE'
  AND LOWER(exchange) = LOWER(?) AND base_currency = ?
  AND (quote_currency = ? OR quote_currency = 'USD_STABLES')`, exchange, base, quote)
	if err != nil {
		return nil, fmt.Errorf("candidate price alerts: %w", err)
	}
	defer rows.Close()
	return scanAlerts(rows)
}

func (r *Repo) ActiveMetricAlerts(ctx context.Context, metric string) ([]domain.Alert, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, channel_id, exchange, alert_type, base_currency,
       quote_currency, metric_name, trigger_condition, target_price, mention_role_id, status
FROM alerts
WHERE status = 'active' AND alert_type = 'METRIC' AND metric_name = ?`, metric)
	if err != nil {
		return nil, fmt.Errorf("active metric alerts: %w", err)
	}
	defer rows.Close()
	return scanAlerts(rows)
}

func (r *Repo) MarkTriggered(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE alerts SET status = 'triggered', triggered_at = ? WHERE id = ? AND status = 'active'`,
		time.Now().Unix(), id)
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
		var a domain.Alert
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.ChannelID, &a.Exchange, &a.Kind,
			&a.Base, &a.Quote, &a.MetricName, &a.Condition, &a.Target, &a.MentionRoleID, &a.Status,
		); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

var _ port.AlertStore = (*Repo)(nil)
