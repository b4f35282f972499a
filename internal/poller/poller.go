// Package poller drives the periodic fetch, diff, persist, alert cycle.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/alert"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/domain/model"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/metrics"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/positions"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/store"
)

const (
	defaultUnhealthyAfter = 3
	purgeEvery            = time.Hour
)

// Config wires a Poller.
type Config struct {
	Source   positions.Source
	Alerter  alert.Alerter
	Store    store.Store
	Interval time.Duration
	Diff     positions.DiffConfig
	// UnhealthyAfter is how many consecutive failed ticks flip the poller to
	// unhealthy (default 3).
	UnhealthyAfter int
	// Retention bounds snapshot age; 0 disables purging.
	Retention time.Duration
	Logger    *slog.Logger
}

// Health is a point-in-time view of the polling loop for readiness checks.
type Health struct {
	Healthy             bool      `json:"healthy"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastTickAt          time.Time `json:"lastTickAt"`
	LastError           string    `json:"lastError,omitempty"`
}

type Poller struct {
	source         positions.Source
	alerter        alert.Alerter
	store          store.Store
	interval       time.Duration
	diffCfg        positions.DiffConfig
	unhealthyAfter int
	retention      time.Duration
	logger         *slog.Logger

	mu                  sync.Mutex
	prev                []model.WhalePositions
	consecutiveFailures int
	unhealthy           bool
	lastTickAt          time.Time
	lastErr             error
	lastPurgeAt         time.Time

	nowFn func() time.Time
}

func New(cfg Config) *Poller {
	if cfg.UnhealthyAfter <= 0 {
		cfg.UnhealthyAfter = defaultUnhealthyAfter
	}
	if cfg.Alerter == nil {
		cfg.Alerter = alert.Noop{}
	}
	if cfg.Store == nil {
		cfg.Store = store.NewNullStore()
	}
	return &Poller{
		source:         cfg.Source,
		alerter:        cfg.Alerter,
		store:          cfg.Store,
		interval:       cfg.Interval,
		diffCfg:        cfg.Diff,
		unhealthyAfter: cfg.UnhealthyAfter,
		retention:      cfg.Retention,
		logger:         cfg.Logger.With("component", "poller"),
		nowFn:          time.Now,
	}
}

// Run ticks immediately and then on every interval until ctx is cancelled.
// Tick failures are absorbed into health state, never returned.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller starting", "interval", p.interval.String())

	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopping")
			return ctx.Err()
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// Health reports the current polling health.
func (p *Poller) Health() Health {
	p.mu.Lock()
	defer p.mu.Unlock()

	h := Health{
		Healthy:             !p.unhealthy,
		ConsecutiveFailures: p.consecutiveFailures,
		LastTickAt:          p.lastTickAt,
	}
	if p.lastErr != nil {
		h.LastError = p.lastErr.Error()
	}
	return h
}

func (p *Poller) tick(ctx context.Context) {
	start := p.nowFn()
	metrics.PollerTicksTotal.Inc()

	curr, err := p.source.Refresh(ctx)
	metrics.PollerTickLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.recordFailure(ctx, err, start)
		return
	}

	p.recordSuccess(ctx, start)

	prev := p.swapPrev(curr)
	if prev != nil {
		p.dispatchChanges(ctx, positions.Diff(prev, curr, p.diffCfg), start)
	}

	p.persistSnapshots(ctx, curr, start)
	p.maybePurge(ctx, start)
}

func (p *Poller) recordFailure(ctx context.Context, err error, at time.Time) {
	metrics.PollerTickErrors.Inc()

	p.mu.Lock()
	p.consecutiveFailures++
	p.lastTickAt = at
	p.lastErr = err
	flip := !p.unhealthy && p.consecutiveFailures >= p.unhealthyAfter
	if flip {
		p.unhealthy = true
	}
	failures := p.consecutiveFailures
	p.mu.Unlock()

	p.logger.Error("poll tick failed", "consecutive_failures", failures, "error", err)

	if flip {
		p.sendAlert(ctx, alert.Unhealthy(failures, at))
	}
}

func (p *Poller) recordSuccess(ctx context.Context, at time.Time) {
	p.mu.Lock()
	p.consecutiveFailures = 0
	p.lastTickAt = at
	p.lastErr = nil
	recovered := p.unhealthy
	p.unhealthy = false
	p.mu.Unlock()

	if recovered {
		p.logger.Info("poller recovered")
		p.sendAlert(ctx, alert.Recovered(at))
	}
}

// swapPrev installs curr as the comparison baseline and returns the old one.
// Whales missing from curr keep their previous state so a transient fetch
// failure does not fire spurious open alerts on the next successful poll.
func (p *Poller) swapPrev(curr []model.WhalePositions) []model.WhalePositions {
	p.mu.Lock()
	defer p.mu.Unlock()

	old := p.prev

	present := make(map[string]bool, len(curr))
	for _, wp := range curr {
		present[wp.Whale.Address] = true
	}

	next := make([]model.WhalePositions, len(curr))
	copy(next, curr)
	for _, wp := range old {
		if !present[wp.Whale.Address] {
			next = append(next, wp)
		}
	}
	p.prev = next

	return old
}

func (p *Poller) dispatchChanges(ctx context.Context, changes []model.PositionChange, at time.Time) {
	for _, c := range changes {
		a := alert.FromChange(c, at)
		p.logger.Info("position change detected",
			"kind", c.Kind,
			"whale", c.Whale.Name,
			"coin", c.Coin,
			"delta_notional_usd", c.DeltaNotionalUSD,
		)
		p.sendAlert(ctx, a)
	}
}

func (p *Poller) sendAlert(ctx context.Context, a alert.Alert) {
	if err := p.alerter.Send(ctx, a); err != nil {
		if errors.Is(err, alert.ErrSuppressed) {
			// Nothing was delivered, so nothing goes in the audit log.
			return
		}
		p.logger.Error("alert dispatch failed", "alert_type", a.Type, "error", err)
	}

	entry := &model.AlertLogEntry{
		AlertType:    string(a.Type),
		WhaleAddress: a.Whale.Address,
		Coin:         a.Coin,
		Message:      a.Message,
		SentAt:       a.At,
	}
	if err := p.store.AlertLog().Insert(ctx, entry); err != nil {
		p.logger.Error("alert log write failed", "alert_type", a.Type, "error", err)
	}
}

func (p *Poller) persistSnapshots(ctx context.Context, all []model.WhalePositions, takenAt time.Time) {
	var snapshots []*model.PositionSnapshot
	for _, wp := range all {
		for _, pos := range wp.Positions {
			snapshots = append(snapshots, &model.PositionSnapshot{
				WhaleAddress: wp.Whale.Address,
				WhaleName:    wp.Whale.Name,
				Coin:         pos.Coin,
				Side:         pos.Side,
				Size:         pos.Size,
				NotionalUSD:  pos.NotionalUSD,
				EntryPrice:   pos.EntryPrice,
				MarkPrice:    pos.MarkPrice,
				PnLUSD:       pos.PnLUSD,
				TakenAt:      takenAt,
			})
		}
	}
	if len(snapshots) == 0 {
		return
	}
	if err := p.store.Snapshots().BulkInsert(ctx, snapshots); err != nil {
		p.logger.Error("snapshot write failed", "count", len(snapshots), "error", err)
	}
}

func (p *Poller) maybePurge(ctx context.Context, now time.Time) {
	if p.retention <= 0 {
		return
	}

	p.mu.Lock()
	due := now.Sub(p.lastPurgeAt) >= purgeEvery
	if due {
		p.lastPurgeAt = now
	}
	p.mu.Unlock()
	if !due {
		return
	}

	cutoff := now.Add(-p.retention)
	purged, err := p.store.Snapshots().PurgeBefore(ctx, cutoff)
	if err != nil {
		p.logger.Error("snapshot purge failed", "cutoff", cutoff, "error", err)
		return
	}
	if purged > 0 {
		p.logger.Info("snapshots purged", "count", purged, "cutoff", cutoff)
	}
}
