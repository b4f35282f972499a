package admin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/domain/model"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/poller"
)

type stubSource struct {
	state []model.WhalePositions
	err   error
}

func (s *stubSource) Refresh(ctx context.Context) ([]model.WhalePositions, error) {
	return s.state, s.err
}

func (s *stubSource) Snapshot(ctx context.Context) ([]model.WhalePositions, error) {
	return s.state, s.err
}

func (s *stubSource) Whales() []model.Whale {
	return []model.Whale{{Address: "0x1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b", Name: "Whale A"}}
}

type stubHealth struct {
	health poller.Health
}

func (s *stubHealth) Health() poller.Health { return s.health }

type stubAlertLog struct {
	entries []model.AlertLogEntry
	err     error
}

func (s *stubAlertLog) Insert(ctx context.Context, entry *model.AlertLogEntry) error { return nil }

func (s *stubAlertLog) GetRecent(ctx context.Context, limit int) ([]model.AlertLogEntry, error) {
	return s.entries, s.err
}

func testState() []model.WhalePositions {
	return []model.WhalePositions{{
		Whale: model.Whale{Address: "0x1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b", Name: "Whale A"},
		Positions: []model.Position{
			{Coin: "BTC", Side: model.SideLong, Size: 2, NotionalUSD: 200_000, EntryPrice: 95_000, MarkPrice: 100_000, PnLUSD: 10_000, PnLPct: 5.26},
		},
		TotalNotionalUSD: 200_000,
	}}
}

func doRequest(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Handler(nil).ServeHTTP(rec, req)
	return rec
}

func TestHealthz_NoProviderIsOK(t *testing.T) {
	s := NewServer(&stubSource{}, slog.Default())
	rec := doRequest(t, s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthz_ReflectsPollerHealth(t *testing.T) {
	healthy := &stubHealth{health: poller.Health{Healthy: true, LastTickAt: time.Now()}}
	s := NewServer(&stubSource{}, slog.Default(), WithHealthProvider(healthy))
	rec := doRequest(t, s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	sick := &stubHealth{health: poller.Health{Healthy: false, ConsecutiveFailures: 5, LastError: "api down"}}
	s = NewServer(&stubSource{}, slog.Default(), WithHealthProvider(sick))
	rec = doRequest(t, s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body poller.Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 5, body.ConsecutiveFailures)
	assert.Equal(t, "api down", body.LastError)
}

func TestWhalesEndpoint(t *testing.T) {
	s := NewServer(&stubSource{}, slog.Default())
	rec := doRequest(t, s, http.MethodGet, "/api/v1/whales")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Whales []whaleView `json:"whales"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Whales, 1)
	assert.Equal(t, "Whale A", body.Whales[0].Name)
	assert.Equal(t, "0x1a2b...9a0b", body.Whales[0].ShortAddress)
}

func TestPositionsEndpoint(t *testing.T) {
	s := NewServer(&stubSource{state: testState()}, slog.Default())
	rec := doRequest(t, s, http.MethodGet, "/api/v1/positions")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		WhalePositions []whalePositionsView `json:"whalePositions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.WhalePositions, 1)
	require.Len(t, body.WhalePositions[0].Positions, 1)
	assert.Equal(t, "BTC", body.WhalePositions[0].Positions[0].Coin)
	assert.Equal(t, "LONG", body.WhalePositions[0].Positions[0].Side)
	assert.InDelta(t, 200_000, body.WhalePositions[0].TotalNotionalUSD, 1e-6)
}

func TestPositionsEndpoint_UpstreamFailureIs502(t *testing.T) {
	s := NewServer(&stubSource{err: errors.New("api down")}, slog.Default())
	rec := doRequest(t, s, http.MethodGet, "/api/v1/positions")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAlertsEndpoint(t *testing.T) {
	log := &stubAlertLog{entries: []model.AlertLogEntry{
		{AlertType: "POSITION_OPENED", Coin: "BTC", Message: "opened", SentAt: time.Now()},
	}}
	s := NewServer(&stubSource{}, slog.Default(), WithAlertLog(log))

	rec := doRequest(t, s, http.MethodGet, "/api/v1/alerts")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Alerts []model.AlertLogEntry `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Alerts, 1)
	assert.Equal(t, "POSITION_OPENED", body.Alerts[0].AlertType)
}

func TestAlertsEndpoint_NotConfiguredIs404(t *testing.T) {
	s := NewServer(&stubSource{}, slog.Default())
	rec := doRequest(t, s, http.MethodGet, "/api/v1/alerts")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAlertsEndpoint_LimitValidation(t *testing.T) {
	s := NewServer(&stubSource{}, slog.Default(), WithAlertLog(&stubAlertLog{}))

	rec := doRequest(t, s, http.MethodGet, "/api/v1/alerts?limit=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/alerts?limit=9999")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/alerts?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/alerts?limit=10")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := NewServer(&stubSource{}, slog.Default())
	rec := doRequest(t, s, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
