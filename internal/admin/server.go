// Package admin exposes the read-only operational HTTP API: health, metrics
// and current tracker state.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/domain/model"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/metrics"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/poller"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/positions"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/store"
)

const (
	defaultAlertLogLimit = 50
	maxAlertLogLimit     = 500

	shutdownTimeout = 5 * time.Second
)

// HealthProvider reports polling loop health. Satisfied by *poller.Poller.
type HealthProvider interface {
	Health() poller.Health
}

// Server is the read-only admin API. All mutation happens through
// configuration, never through this surface.
type Server struct {
	source   positions.Source
	health   HealthProvider
	alertLog store.AlertLogRepository
	logger   *slog.Logger
}

// ServerOption configures optional dependencies for the admin server.
type ServerOption func(*Server)

// WithHealthProvider wires poller health into /healthz.
func WithHealthProvider(hp HealthProvider) ServerOption {
	return func(s *Server) { s.health = hp }
}

// WithAlertLog enables the /api/v1/alerts endpoint.
func WithAlertLog(repo store.AlertLogRepository) ServerOption {
	return func(s *Server) { s.alertLog = repo }
}

func NewServer(source positions.Source, logger *slog.Logger, opts ...ServerOption) *Server {
	s := &Server{
		source: source,
		logger: logger.With("component", "admin"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler with rate limiting and request metrics
// applied.
func (s *Server) Handler(rl *RateLimitMiddleware) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/v1/whales", s.handleWhales)
	mux.HandleFunc("GET /api/v1/positions", s.handlePositions)
	mux.HandleFunc("GET /api/v1/alerts", s.handleAlerts)

	var h http.Handler = mux
	if rl != nil {
		h = rl.Wrap(h)
	}
	return withRequestMetrics(h)
}

// Run serves the admin API on port until ctx is cancelled.
func (s *Server) Run(ctx context.Context, port int, rl *RateLimitMiddleware) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(rl),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("admin server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("admin server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("admin server shutdown: %w", err)
	}
	return ctx.Err()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	h := s.health.Health()
	if !h.Healthy {
		writeJSON(w, http.StatusServiceUnavailable, h)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

type whaleView struct {
	Address      string `json:"address"`
	ShortAddress string `json:"shortAddress"`
	Name         string `json:"name"`
}

func (s *Server) handleWhales(w http.ResponseWriter, r *http.Request) {
	whales := s.source.Whales()
	views := make([]whaleView, 0, len(whales))
	for _, wh := range whales {
		views = append(views, whaleView{
			Address:      wh.Address,
			ShortAddress: wh.ShortAddress(),
			Name:         wh.Name,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"whales": views})
}

type positionView struct {
	Coin             string  `json:"coin"`
	Side             string  `json:"side"`
	Size             float64 `json:"size"`
	NotionalUSD      float64 `json:"notionalUsd"`
	EntryPrice       float64 `json:"entryPrice"`
	MarkPrice        float64 `json:"markPrice"`
	PnLUSD           float64 `json:"pnlUsd"`
	PnLPct           float64 `json:"pnlPct"`
	Leverage         float64 `json:"leverage,omitempty"`
	LiquidationPrice float64 `json:"liquidationPrice,omitempty"`
}

type whalePositionsView struct {
	Whale            whaleView      `json:"whale"`
	Positions        []positionView `json:"positions"`
	TotalNotionalUSD float64        `json:"totalNotionalUsd"`
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	all, err := s.source.Snapshot(r.Context())
	if err != nil {
		s.logger.Error("positions endpoint fetch failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "position fetch failed"})
		return
	}

	views := make([]whalePositionsView, 0, len(all))
	for _, wp := range all {
		views = append(views, toWhalePositionsView(wp))
	}
	writeJSON(w, http.StatusOK, map[string]any{"whalePositions": views})
}

func toWhalePositionsView(wp model.WhalePositions) whalePositionsView {
	view := whalePositionsView{
		Whale: whaleView{
			Address:      wp.Whale.Address,
			ShortAddress: wp.Whale.ShortAddress(),
			Name:         wp.Whale.Name,
		},
		Positions:        make([]positionView, 0, len(wp.Positions)),
		TotalNotionalUSD: wp.TotalNotionalUSD,
	}
	for _, p := range wp.Positions {
		view.Positions = append(view.Positions, positionView{
			Coin:             p.Coin,
			Side:             string(p.Side),
			Size:             p.Size,
			NotionalUSD:      p.NotionalUSD,
			EntryPrice:       p.EntryPrice,
			MarkPrice:        p.MarkPrice,
			PnLUSD:           p.PnLUSD,
			PnLPct:           p.PnLPct,
			Leverage:         p.Leverage,
			LiquidationPrice: p.LiquidationPrice,
		})
	}
	return view
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if s.alertLog == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "alert log not configured"})
		return
	}

	limit := defaultAlertLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxAlertLogLimit {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("limit must be in [1, %d]", maxAlertLogLimit),
			})
			return
		}
		limit = parsed
	}

	entries, err := s.alertLog.GetRecent(r.Context(), limit)
	if err != nil {
		s.logger.Error("alert log read failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "alert log read failed"})
		return
	}
	if entries == nil {
		entries = []model.AlertLogEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": entries})
}

// writeJSON writes v as JSON with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && !errors.Is(err, context.Canceled) {
		slog.Debug("admin response encode failed", "error", err)
	}
}

// statusRecorder captures the response code for request metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withRequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.AdminRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.status)).Inc()
	})
}
