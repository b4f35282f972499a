package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters, gauges and histograms for the tracker, partitioned by whale where
// it is useful for dashboards.

var (
	// Poller
	PollerTicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "whaletracker",
		Subsystem: "poller",
		Name:      "ticks_total",
		Help:      "Total poller ticks",
	})

	PollerTickErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "whaletracker",
		Subsystem: "poller",
		Name:      "tick_errors_total",
		Help:      "Total poller ticks that failed for every whale",
	})

	PollerTickLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "whaletracker",
		Subsystem: "poller",
		Name:      "tick_duration_seconds",
		Help:      "Poller tick processing duration",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	PollerWhaleFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whaletracker",
		Subsystem: "poller",
		Name:      "whale_fetch_errors_total",
		Help:      "Total per-whale fetch failures (after retry exhaustion)",
	}, []string{"whale"})

	PositionsTracked = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "whaletracker",
		Subsystem: "poller",
		Name:      "open_positions",
		Help:      "Current number of open whitelisted positions per whale",
	}, []string{"whale"})

	PositionChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whaletracker",
		Subsystem: "poller",
		Name:      "position_changes_total",
		Help:      "Total material position changes detected",
	}, []string{"kind"})

	// Hyperliquid API
	APICallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whaletracker",
		Subsystem: "hyperliquid",
		Name:      "api_calls_total",
		Help:      "Total Hyperliquid info API calls by method and status class",
	}, []string{"method", "status"})

	APICallLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "whaletracker",
		Subsystem: "hyperliquid",
		Name:      "api_call_duration_seconds",
		Help:      "Hyperliquid info API call duration",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method"})

	APIRateLimitWaits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "whaletracker",
		Subsystem: "hyperliquid",
		Name:      "rate_limit_waits_total",
		Help:      "Total times API calls waited for the rate limiter",
	})

	BreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "whaletracker",
		Subsystem: "hyperliquid",
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	})

	// Telegram
	TelegramCommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whaletracker",
		Subsystem: "telegram",
		Name:      "commands_total",
		Help:      "Total recognized Telegram commands received",
	}, []string{"command"})

	TelegramMessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "whaletracker",
		Subsystem: "telegram",
		Name:      "messages_sent_total",
		Help:      "Total Telegram messages sent",
	})

	TelegramSendErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "whaletracker",
		Subsystem: "telegram",
		Name:      "send_errors_total",
		Help:      "Total Telegram send failures",
	})

	// Alerts
	AlertsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whaletracker",
		Subsystem: "alert",
		Name:      "sent_total",
		Help:      "Total alerts sent",
	}, []string{"channel", "alert_type"})

	AlertsCooldownSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "whaletracker",
		Subsystem: "alert",
		Name:      "cooldown_skipped_total",
		Help:      "Total alerts skipped due to cooldown",
	})

	// Store
	SnapshotsWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "whaletracker",
		Subsystem: "store",
		Name:      "snapshots_written_total",
		Help:      "Total position snapshots written to the database",
	})

	SnapshotsPurgedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "whaletracker",
		Subsystem: "store",
		Name:      "snapshots_purged_total",
		Help:      "Total position snapshots removed by retention",
	})

	// Cache
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whaletracker",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"cache"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whaletracker",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"cache"})

	// Database pool
	DBPoolOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "whaletracker",
		Subsystem: "postgres",
		Name:      "db_pool_open",
		Help:      "Current number of open PostgreSQL connections in the pool",
	})

	DBPoolInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "whaletracker",
		Subsystem: "postgres",
		Name:      "db_pool_in_use",
		Help:      "Current number of in-use PostgreSQL connections in the pool",
	})

	DBPoolIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "whaletracker",
		Subsystem: "postgres",
		Name:      "db_pool_idle",
		Help:      "Current number of idle PostgreSQL connections in the pool",
	})

	DBPoolWaitCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "whaletracker",
		Subsystem: "postgres",
		Name:      "db_pool_wait_count",
		Help:      "Cumulative count of waits for PostgreSQL connections from pool",
	})

	DBPoolWaitDurationSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "whaletracker",
		Subsystem: "postgres",
		Name:      "db_pool_wait_duration_seconds",
		Help:      "Cumulative PostgreSQL pool wait duration in seconds",
	})

	// Admin API
	AdminRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whaletracker",
		Subsystem: "admin",
		Name:      "requests_total",
		Help:      "Total admin API requests by path and status code",
	}, []string{"path", "code"})

	AdminRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "whaletracker",
		Subsystem: "admin",
		Name:      "rate_limited_total",
		Help:      "Total admin API requests rejected by the rate limiter",
	})
)
