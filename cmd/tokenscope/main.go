package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/frederickimanuels/tokenscopex8/internal/application/port"
	"github.com/frederickimanuels/tokenscopex8/internal/application/service"
	"github.com/frederickimanuels/tokenscopex8/internal/domain"
	"github.com/frederickimanuels/tokenscopex8/internal/infrastructure/bus"
	"github.com/frederickimanuels/tokenscopex8/internal/infrastructure/cache"
	"github.com/frederickimanuels/tokenscopex8/internal/infrastructure/coingecko"
	"github.com/frederickimanuels/tokenscopex8/internal/infrastructure/config"
	"github.com/frederickimanuels/tokenscopex8/internal/infrastructure/exchange"
	"github.com/frederickimanuels/tokenscopex8/internal/infrastructure/exchange/binance"
	"github.com/frederickimanuels/tokenscopex8/internal/infrastructure/exchange/bybit"
	"github.com/frederickimanuels/tokenscopex8/internal/infrastructure/exchange/kucoin"
	"github.com/frederickimanuels/tokenscopex8/internal/infrastructure/logger"
	"github.com/frederickimanuels/tokenscopex8/internal/infrastructure/notify"
	"github.com/frederickimanuels/tokenscopex8/internal/infrastructure/storage/postgres"
	"github.com/frederickimanuels/tokenscopex8/internal/infrastructure/storage/sqlite"
	"github.com/frederickimanuels/tokenscopex8/internal/interfaces/api"
)

func main() {
	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}
	logger.Setup(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer rdb.Close()

	priceBus := bus.NewRedis(rdb, cfg.Redis.Channel, log.With().Str("component", "bus").Logger())
	priceCache := cache.NewRedis(rdb, cfg.CacheTTL())

	var store port.AlertStore
	switch cfg.Database.Driver {
	case "postgres":
		store, err = postgres.New(cfg.Database.DSN)
	case "sqlite":
		store, err = sqlite.New(cfg.Database.SQLitePath)
	}
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("open alert store failed")
	}
	defer store.Close()

	notifier := notify.NewDiscord(cfg.Discord.Token, cfg.Discord.APIBaseURL, 10*time.Second,
		log.With().Str("component", "notify").Logger())

	engine := service.NewAlertEngine(store, notifier, priceBus,
		log.With().Str("component", "engine").Logger())
	updater := service.NewCacheUpdater(priceBus, priceCache,
		log.With().Str("component", "cache").Logger())

	var streamers []port.Streamer
	if cfg.Exchange.Binance.Enabled {
		streamers = append(streamers, exchange.NewWatcher(
			binance.New(cfg.Exchange.Binance.WsURL), priceBus, cfg.ReconnectDelay(), log.Logger))
	}
	if cfg.Exchange.Bybit.Enabled {
		streamers = append(streamers, exchange.NewWatcher(
			bybit.New(cfg.Exchange.Bybit.WsURL), priceBus, cfg.ReconnectDelay(), log.Logger))
	}
	if cfg.Exchange.Kucoin.Enabled {
		streamers = append(streamers, kucoin.NewPoller(
			cfg.Exchange.Kucoin.RestURL, cfg.KucoinPollInterval(), priceBus, log.Logger))
	}

	reconciler := service.NewReconciler(store, streamers, cfg.ReconcileInterval(), cfg.IdleMaxInterval(),
		log.With().Str("component", "reconciler").Logger())

	router := api.NewRouter(service.NewPriceQuery(priceCache, cfg.Venues()))
	srv := &http.Server{Addr: cfg.API.Listen, Handler: router}

	type runner interface {
		Run(ctx context.Context) error
	}
	run := func(name string, r runner) {
		go func() {
			if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Str("component", name).Msg("component exited")
			}
		}()
	}

	for _, s := range streamers {
		if r, ok := s.(runner); ok {
			run(s.Venue(), r)
		}
	}
	run("reconciler", reconciler)
	run("engine", engine)
	run("cache", updater)

	if cfg.Metric.Enabled {
		gecko := coingecko.New(cfg.Metric.APIBaseURL, cfg.Metric.APIKey, 15*time.Second)
		poller := service.NewMetricPoller(
			service.MetricSourceFunc(gecko.BTCDominance),
			store, engine, domain.MetricBTCDominance, cfg.MetricInterval(),
			log.With().Str("component", "metric").Logger())
		run("metric", poller)
	}

	go func() {
		log.Info().Str("listen", cfg.API.Listen).Msg("http server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server exited")
		}
	}()

	log.Info().
		Str("config", *configPath).
		Strs("venues", cfg.Venues()).
		Str("driver", cfg.Database.Driver).
		Msg("tokenscope started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown failed")
	}
	engine.Wait()
}
