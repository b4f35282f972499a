// Package positions turns raw clearinghouse state into whale position views.
package positions

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/cache"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/circuitbreaker"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/domain/model"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/hyperliquid"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/metrics"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/retry"
)

// Source is what report consumers (bot, poller, admin) need from the
// position layer.
type Source interface {
	// Refresh fetches fresh state for every whale. Per-whale failures are
	// logged and skipped; the error is non-nil only when every whale failed.
	Refresh(ctx context.Context) ([]model.WhalePositions, error)
	// Snapshot serves cached state where fresh enough, fetching only the
	// whales that are missing or stale.
	Snapshot(ctx context.Context) ([]model.WhalePositions, error)
	// Whales returns the configured whale list.
	Whales() []model.Whale
}

// MidsCache is an optional shared cache for mid prices, letting replicas
// reuse each other's allMids fetches.
type MidsCache interface {
	GetMids(ctx context.Context) (map[string]float64, bool, error)
	SetMids(ctx context.Context, mids map[string]float64) error
}

const (
	defaultRetryMaxAttempts = 3
	defaultBackoffInitial   = 500 * time.Millisecond
	defaultBackoffMax       = 5 * time.Second
	defaultCacheTTL         = 20 * time.Second
)

// Service implements Source against the Hyperliquid info API.
type Service struct {
	api    hyperliquid.API
	whales []model.Whale
	logger *slog.Logger

	breaker   *circuitbreaker.Breaker
	cache     *cache.LRU[string, model.WhalePositions]
	midsCache MidsCache

	retryMaxAttempts int
	backoffInitial   time.Duration
	backoffMax       time.Duration
	sleep            func(ctx context.Context, d time.Duration) error
}

type Option func(*Service)

// WithBreaker attaches a circuit breaker around clearinghouse calls.
func WithBreaker(b *circuitbreaker.Breaker) Option {
	return func(s *Service) { s.breaker = b }
}

// WithCacheTTL overrides how long a whale snapshot is served without refetch.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache.NewLRU[string, model.WhalePositions]("whale_positions", cacheCapacity(len(s.whales)), ttl)
	}
}

// WithMidsCache attaches a shared mid-price cache consulted before allMids.
func WithMidsCache(mc MidsCache) Option {
	return func(s *Service) { s.midsCache = mc }
}

// WithRetry overrides retry attempts and backoff bounds.
func WithRetry(maxAttempts int, initial, max time.Duration) Option {
	return func(s *Service) {
		s.retryMaxAttempts = maxAttempts
		s.backoffInitial = initial
		s.backoffMax = max
	}
}

func NewService(api hyperliquid.API, whales []model.Whale, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		api:              api,
		whales:           whales,
		logger:           logger.With("component", "positions"),
		retryMaxAttempts: defaultRetryMaxAttempts,
		backoffInitial:   defaultBackoffInitial,
		backoffMax:       defaultBackoffMax,
		sleep:            sleepCtx,
	}
	s.cache = cache.NewLRU[string, model.WhalePositions]("whale_positions", cacheCapacity(len(whales)), defaultCacheTTL)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cacheCapacity(whales int) int {
	if whales < 1 {
		return 1
	}
	return whales
}

func (s *Service) Whales() []model.Whale {
	out := make([]model.Whale, len(s.whales))
	copy(out, s.whales)
	return out
}

func (s *Service) Refresh(ctx context.Context) ([]model.WhalePositions, error) {
	return s.collect(ctx, nil)
}

func (s *Service) Snapshot(ctx context.Context) ([]model.WhalePositions, error) {
	cached := make(map[string]model.WhalePositions, len(s.whales))
	for _, w := range s.whales {
		if wp, ok := s.cache.Get(w.Address); ok {
			cached[w.Address] = wp
		}
	}
	return s.collect(ctx, cached)
}

// collect assembles the state of every whale, serving entries from cached
// (keyed by address) when present and fetching the rest.
func (s *Service) collect(ctx context.Context, cached map[string]model.WhalePositions) ([]model.WhalePositions, error) {
	mids := s.fetchMids(ctx)

	out := make([]model.WhalePositions, 0, len(s.whales))
	var lastErr error
	failures := 0

	for _, w := range s.whales {
		if wp, ok := cached[w.Address]; ok {
			out = append(out, wp)
			continue
		}

		wp, err := s.fetchWhale(ctx, w, mids)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failures++
			lastErr = err
			metrics.PollerWhaleFetchErrors.WithLabelValues(w.Name).Inc()
			s.logger.Warn("whale fetch failed; omitting from report",
				"whale", w.Name,
				"address", w.ShortAddress(),
				"error", err,
			)
			continue
		}

		s.cache.Put(w.Address, wp)
		metrics.PositionsTracked.WithLabelValues(w.Name).Set(float64(len(wp.Positions)))
		out = append(out, wp)
	}

	if failures > 0 && failures == len(s.whales) {
		return nil, fmt.Errorf("all %d whale fetches failed: %w", failures, lastErr)
	}
	return out, nil
}

// fetchMids grabs current mid prices as a mark-price fallback, consulting the
// shared cache first when one is attached. Best effort: a failure here only
// degrades mark prices to entry prices.
func (s *Service) fetchMids(ctx context.Context) map[string]float64 {
	if s.midsCache != nil {
		mids, ok, err := s.midsCache.GetMids(ctx)
		if err != nil {
			s.logger.Debug("mids cache read failed", "error", err)
		} else if ok {
			return mids
		}
	}

	mids, err := s.api.AllMids(ctx)
	if err != nil {
		s.logger.Debug("allMids fetch failed; falling back to entry prices", "error", err)
		return nil
	}

	if s.midsCache != nil {
		if err := s.midsCache.SetMids(ctx, mids); err != nil {
			s.logger.Debug("mids cache write failed", "error", err)
		}
	}
	return mids
}

func (s *Service) fetchWhale(ctx context.Context, w model.Whale, mids map[string]float64) (model.WhalePositions, error) {
	state, err := s.fetchState(ctx, w.Address)
	if err != nil {
		return model.WhalePositions{}, err
	}
	return buildWhalePositions(w, state, mids), nil
}

// fetchState calls clearinghouseState with retry/backoff behind the breaker.
func (s *Service) fetchState(ctx context.Context, address string) (*hyperliquid.ClearinghouseState, error) {
	const stage = "positions.fetch_state"

	var lastErr error
	lastDecision := retry.Decision{
		Class:  retry.ClassTerminal,
		Reason: "unset",
	}
	for attempt := 1; attempt <= s.retryMaxAttempts; attempt++ {
		var state *hyperliquid.ClearinghouseState
		call := func(ctx context.Context) error {
			var err error
			state, err = s.api.ClearinghouseState(ctx, address)
			return err
		}

		var err error
		if s.breaker != nil {
			err = s.breaker.Do(ctx, call)
		} else {
			err = call(ctx)
		}
		if err == nil {
			return state, nil
		}
		lastErr = err
		lastDecision = retry.Classify(err)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !lastDecision.IsTransient() {
			return nil, fmt.Errorf("terminal_failure stage=%s attempt=%d reason=%s: %w", stage, attempt, lastDecision.Reason, err)
		}
		if attempt == s.retryMaxAttempts {
			break
		}

		s.logger.Warn("clearinghouse fetch failed; retrying",
			"stage", stage,
			"classification", lastDecision.Class,
			"classification_reason", lastDecision.Reason,
			"attempt", attempt,
			"error", err,
		)

		if sleepErr := s.sleep(ctx, s.retryDelay(attempt)); sleepErr != nil {
			return nil, sleepErr
		}
	}

	return nil, fmt.Errorf("transient_recovery_exhausted stage=%s attempts=%d reason=%s: %w", stage, s.retryMaxAttempts, lastDecision.Reason, lastErr)
}

func (s *Service) retryDelay(attempt int) time.Duration {
	delay := s.backoffInitial << (attempt - 1)
	if delay > s.backoffMax {
		return s.backoffMax
	}
	return delay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// buildWhalePositions converts raw clearinghouse state into the whitelisted,
// notional-sorted view the rest of the system works with.
func buildWhalePositions(w model.Whale, state *hyperliquid.ClearinghouseState, mids map[string]float64) model.WhalePositions {
	wp := model.WhalePositions{Whale: w}

	for _, ap := range state.AssetPositions {
		raw := ap.Position
		if !model.IsTracked(raw.Coin) {
			continue
		}

		signedSize := hyperliquid.ParseDecimal(raw.Szi)
		if signedSize == 0 {
			continue
		}

		side := model.SideFromSize(signedSize)
		entry := hyperliquid.ParseDecimal(raw.EntryPx)
		mark := hyperliquid.ParseDecimal(raw.MarkPx)
		if mark == 0 {
			if mid, ok := mids[raw.Coin]; ok {
				mark = mid
			} else {
				mark = entry
			}
		}

		size := signedSize
		if size < 0 {
			size = -size
		}

		liq := 0.0
		if raw.LiquidationPx != nil {
			liq = hyperliquid.ParseDecimal(*raw.LiquidationPx)
		}

		notional := size * mark
		wp.Positions = append(wp.Positions, model.Position{
			Coin:             raw.Coin,
			Side:             side,
			Size:             size,
			NotionalUSD:      notional,
			EntryPrice:       entry,
			MarkPrice:        mark,
			PnLUSD:           hyperliquid.ParseDecimal(raw.UnrealizedPnl),
			PnLPct:           model.PnLPct(side, entry, mark),
			Leverage:         raw.Leverage.Value,
			LiquidationPrice: liq,
		})
		wp.TotalNotionalUSD += notional
	}

	sort.Slice(wp.Positions, func(i, j int) bool {
		return wp.Positions[i].NotionalUSD > wp.Positions[j].NotionalUSD
	})

	return wp
}
