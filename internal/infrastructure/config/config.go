package config

import (
	"errors"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App struct {
		LogLevel             string `toml:"log_level"`
		ReconcileIntervalSec int    `toml:"reconcile_interval_sec"`
		IdleMaxIntervalSec   int    `toml:"idle_max_interval_sec"`
		ReconnectDelaySec    int    `toml:"reconnect_delay_sec"`
		CacheTTLSec          int    `toml:"cache_ttl_sec"`
	} `toml:"app"`

	API struct {
		Listen string `toml:"listen"` // e.g. :8080
	} `toml:"api"`

	Redis struct {
		Addr    string `toml:"addr"`
		Channel string `toml:"channel"`
	} `toml:"redis"`

	Database struct {
		Driver     string `toml:"driver"` // postgres or sqlite
		DSN        string `toml:"dsn"`
		SQLitePath string `toml:"sqlite_path"`
	} `toml:"database"`

	Discord struct {
		Token      string `toml:"token"`
		APIBaseURL string `toml:"api_base_url"`
	} `toml:"discord"`

	Metric struct {
		Enabled     bool   `toml:"enabled"`
		APIBaseURL  string `toml:"api_base_url"`
		APIKey      string `toml:"api_key"`
		IntervalSec int    `toml:"interval_sec"`
	} `toml:"metric"`

	Exchange struct {
		Binance struct {
			Enabled bool   `toml:"enabled"`
			WsURL   string `toml:"ws_url"` // e.g. wss://stream.binance.com:9443
		} `toml:"binance"`

		Bybit struct {
			Enabled bool   `toml:"enabled"`
			WsURL   string `toml:"ws_url"` // e.g. wss://stream.bybit.com/v5/public/spot
		} `toml:"bybit"`

		Kucoin struct {
			Enabled         bool   `toml:"enabled"`
			RestURL         string `toml:"rest_url"`
			PollIntervalSec int    `toml:"poll_interval_sec"`
		} `toml:"kucoin"`
	} `toml:"exchange"`
}

func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.ReconcileIntervalSec <= 0 {
		cfg.App.ReconcileIntervalSec = 15
	}
	if cfg.App.IdleMaxIntervalSec <= 0 {
		cfg.App.IdleMaxIntervalSec = 120
	}
	if cfg.App.ReconnectDelaySec <= 0 {
		cfg.App.ReconnectDelaySec = 10
	}
	if cfg.App.CacheTTLSec <= 0 {
		cfg.App.CacheTTLSec = 300
	}
	if cfg.API.Listen == "" {
		cfg.API.Listen = ":8080"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = "price-updates"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Metric.IntervalSec <= 0 {
		cfg.Metric.IntervalSec = 300
	}
	if cfg.Exchange.Kucoin.PollIntervalSec <= 0 {
		cfg.Exchange.Kucoin.PollIntervalSec = 10
	}
}

func validate(cfg *Config) error {
	switch cfg.Database.Driver {
	case "postgres":
		if strings.TrimSpace(cfg.Database.DSN) == "" {
			return errors.New("database.dsn is required for driver postgres")
		}
	case "sqlite":
		if strings.TrimSpace(cfg.Database.SQLitePath) == "" {
			return errors.New("database.sqlite_path is required for driver sqlite")
		}
	default:
		return errors.New("database.driver must be postgres or sqlite")
	}

	if !cfg.Exchange.Binance.Enabled && !cfg.Exchange.Bybit.Enabled && !cfg.Exchange.Kucoin.Enabled {
		return errors.New("no exchange enabled")
	}
	return nil
}

// Venues lists the enabled venues in a fixed order; on-demand queries that
// omit the venue probe them in this order.
func (cfg *Config) Venues() []string {
	var v []string
	if cfg.Exchange.Binance.Enabled {
		v = append(v, "binance")
	}
	if cfg.Exchange.Bybit.Enabled {
		v = append(v, "bybit")
	}
	if cfg.Exchange.Kucoin.Enabled {
		v = append(v, "kucoin")
	}
	return v
}

func (cfg *Config) ReconcileInterval() time.Duration {
	return time.Duration(cfg.App.ReconcileIntervalSec) * time.Second
}

func (cfg *Config) IdleMaxInterval() time.Duration {
	return time.Duration(cfg.App.IdleMaxIntervalSec) * time.Second
}

func (cfg *Config) ReconnectDelay() time.Duration {
	return time.Duration(cfg.App.ReconnectDelaySec) * time.Second
}

func (cfg *Config) CacheTTL() time.Duration {
	return time.Duration(cfg.App.CacheTTLSec) * time.Second
}

func (cfg *Config) MetricInterval() time.Duration {
	return time.Duration(cfg.Metric.IntervalSec) * time.Second
}

func (cfg *Config) KucoinPollInterval() time.Duration {
	return time.Duration(cfg.Exchange.Kucoin.PollIntervalSec) * time.Second
}
