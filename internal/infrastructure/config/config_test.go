package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
[database]
driver = "sqlite"
sqlite_path = "alerts.db"

[exchange.binance]
enabled = true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.ReconcileInterval())
	assert.Equal(t, 120*time.Second, cfg.IdleMaxInterval())
	assert.Equal(t, 10*time.Second, cfg.ReconnectDelay())
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
	assert.Equal(t, 5*time.Minute, cfg.MetricInterval())
	assert.Equal(t, 10*time.Second, cfg.KucoinPollInterval())
	assert.Equal(t, ":8080", cfg.API.Listen)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "price-updates", cfg.Redis.Channel)
}

func TestLoadExplicitValues(t *testing.T) {
	path := writeConfig(t, `
[app]
log_level = "debug"
reconcile_interval_sec = 5

[database]
driver = "postgres"
dsn = "postgres://localhost/alerts"

[exchange.bybit]
enabled = true
ws_url = "wss://example.test/v5/public/spot"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.ReconcileInterval())
	assert.Equal(t, "wss://example.test/v5/public/spot", cfg.Exchange.Bybit.WsURL)
	assert.Equal(t, []string{"bybit"}, cfg.Venues())
}

func TestLoadRejectsMissingDSN(t *testing.T) {
	path := writeConfig(t, `
[database]
driver = "postgres"

[exchange.binance]
enabled = true
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, `
[database]
driver = "oracle"
dsn = "whatever"

[exchange.binance]
enabled = true
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsNoExchanges(t *testing.T) {
	path := writeConfig(t, `
[database]
driver = "sqlite"
sqlite_path = "alerts.db"
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestVenuesOrder(t *testing.T) {
	path := writeConfig(t, `
[database]
driver = "sqlite"
sqlite_path = "alerts.db"

[exchange.binance]
enabled = true

[exchange.bybit]
enabled = true

[exchange.kucoin]
enabled = true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"binance", "bybit", "kucoin"}, cfg.Venues())
}
