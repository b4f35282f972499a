package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/admin"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/alert"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/circuitbreaker"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/config"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/hyperliquid"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/metrics"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/poller"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/positions"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/ratelimit"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/store"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/store/postgres"
	redispkg "github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/store/redis"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/telegram"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/tracing"
)

const (
	serviceName = "whale-tracker"

	dbPoolStatsInterval = 15 * time.Second
	migrationsDir       = "internal/store/postgres/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	logger.Info("starting whale-tracker",
		"whales", len(cfg.Whales),
		"api_url", cfg.Hyperliquid.APIURL,
		"poll_interval", cfg.Poller.Interval.String(),
		"persistence", cfg.DB.URL != "",
		"redis", cfg.Redis.URL != "",
	)

	// OpenTelemetry tracing (no-op when no endpoint is configured).
	shutdownTracing, err := tracing.Init(context.Background(), serviceName, cfg.Tracing.Endpoint, cfg.Tracing.Insecure, cfg.Tracing.SampleRatio)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown error", "error", err)
		}
	}()
	if cfg.Tracing.Endpoint != "" {
		logger.Info("tracing enabled", "endpoint", cfg.Tracing.Endpoint)
	}

	// Persistence is optional: without DB_URL the tracker runs in-memory.
	var st store.Store = store.NewNullStore()
	var db *postgres.DB
	if cfg.DB.URL != "" {
		db, err = postgres.New(postgres.Config{
			URL:             cfg.DB.URL,
			MaxOpenConns:    cfg.DB.MaxOpenConns,
			MaxIdleConns:    cfg.DB.MaxIdleConns,
			ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		})
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.RunMigrations(migrationsDir); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("connected to database")

		pg := postgres.NewStore(db)
		st = pg

		if err := syncWhales(context.Background(), pg, cfg); err != nil {
			logger.Error("failed to sync whale roster", "error", err)
			os.Exit(1)
		}
	}

	client := hyperliquid.NewClient(cfg.Hyperliquid.APIURL, logger,
		hyperliquid.WithTimeout(cfg.Hyperliquid.Timeout),
		hyperliquid.WithRateLimiter(ratelimit.NewLimiter(cfg.Hyperliquid.RateLimitRPS, cfg.Hyperliquid.RateLimitBurst)),
	)

	breaker := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: cfg.Hyperliquid.BreakerFailureThreshold,
		SuccessThreshold: cfg.Hyperliquid.BreakerSuccessThreshold,
		OpenTimeout:      cfg.Hyperliquid.BreakerOpenTimeout,
		OnStateChange: func(from, to circuitbreaker.State) {
			metrics.BreakerState.Set(float64(to))
			logger.Warn("circuit breaker state changed", "from", from.String(), "to", to.String())
		},
	})

	serviceOpts := []positions.Option{positions.WithBreaker(breaker)}
	if cfg.Redis.URL != "" {
		midsCache, err := redispkg.NewCache(cfg.Redis.URL, cfg.Redis.MidsTTL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer midsCache.Close()
		logger.Info("connected to redis")
		serviceOpts = append(serviceOpts, positions.WithMidsCache(midsCache))
	}
	source := positions.NewService(client, cfg.Whales, logger, serviceOpts...)

	bot, err := telegram.New(cfg.Telegram.Token, cfg.Telegram.ChatID, source, logger)
	if err != nil {
		logger.Error("failed to start telegram bot", "error", err)
		os.Exit(1)
	}

	channels := []alert.Alerter{alert.NewTelegram(bot)}
	if cfg.Alert.WebhookURL != "" {
		channels = append(channels, alert.NewWebhook(cfg.Alert.WebhookURL))
	}
	alerter := alert.NewMulti(logger, cfg.Alert.Cooldown, channels...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return bot.Run(gCtx)
	})

	var adminOpts []admin.ServerOption
	if cfg.Poller.Interval > 0 {
		p := poller.New(poller.Config{
			Source:   source,
			Alerter:  alerter,
			Store:    st,
			Interval: cfg.Poller.Interval,
			Diff: positions.DiffConfig{
				MinNotionalUSD: cfg.Alert.MinNotionalUSD,
				MinChangePct:   cfg.Alert.MinChangePct,
			},
			UnhealthyAfter: cfg.Poller.UnhealthyAfter,
			Retention:      cfg.Poller.Retention,
			Logger:         logger,
		})
		adminOpts = append(adminOpts, admin.WithHealthProvider(p))
		g.Go(func() error {
			return p.Run(gCtx)
		})
	} else {
		logger.Info("background polling disabled")
	}
	if cfg.DB.URL != "" {
		adminOpts = append(adminOpts, admin.WithAlertLog(st.AlertLog()))
	}

	rl := admin.NewRateLimitMiddleware(logger)
	defer rl.Stop()
	adminServer := admin.NewServer(source, logger, adminOpts...)
	g.Go(func() error {
		return adminServer.Run(gCtx, cfg.Server.HealthPort, rl)
	})

	if db != nil {
		startDBPoolStatsPump(gCtx, db.DB, logger)
	}

	g.Go(func() error {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("tracker exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("tracker shut down gracefully")
}

// syncWhales upserts the configured roster and deactivates database whales
// dropped from configuration, so the whales table mirrors what is tracked.
func syncWhales(ctx context.Context, pg *postgres.Store, cfg *config.Config) error {
	configured := make(map[string]bool, len(cfg.Whales))
	for i := range cfg.Whales {
		w := cfg.Whales[i]
		configured[w.Address] = true
		if err := pg.Whales().Upsert(ctx, &w); err != nil {
			return fmt.Errorf("upsert whale %s: %w", w.Address, err)
		}
	}

	active, err := pg.Whales().GetActive(ctx)
	if err != nil {
		return fmt.Errorf("list active whales: %w", err)
	}
	for _, w := range active {
		if configured[w.Address] {
			continue
		}
		if err := pg.Whales().Deactivate(ctx, w.Address); err != nil {
			return fmt.Errorf("deactivate whale %s: %w", w.Address, err)
		}
	}

	slog.Info("whale roster synced", "count", len(cfg.Whales))
	return nil
}

type dbStatsProvider interface {
	Stats() sql.DBStats
}

func startDBPoolStatsPump(ctx context.Context, db dbStatsProvider, logger *slog.Logger) {
	collect := func() {
		stats := db.Stats()
		metrics.DBPoolOpen.Set(float64(stats.OpenConnections))
		metrics.DBPoolInUse.Set(float64(stats.InUse))
		metrics.DBPoolIdle.Set(float64(stats.Idle))
		metrics.DBPoolWaitCount.Set(float64(stats.WaitCount))
		metrics.DBPoolWaitDurationSeconds.Set(stats.WaitDuration.Seconds())
	}

	ticker := time.NewTicker(dbPoolStatsInterval)
	go func() {
		defer ticker.Stop()
		collect()
		for {
			select {
			case <-ctx.Done():
				logger.Info("db pool stats sampler stopped")
				return
			case <-ticker.C:
				collect()
			}
		}
	}()
}
