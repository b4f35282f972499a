package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/metrics"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/ratelimit"
)

// API abstracts the Hyperliquid info endpoint for testing.
type API interface {
	AllMids(ctx context.Context) (map[string]float64, error)
	ClearinghouseState(ctx context.Context, user string) (*ClearinghouseState, error)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *ratelimit.Limiter
	logger     *slog.Logger
}

type Option func(*Client)

// WithTimeout overrides the default 30s HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimiter attaches a token-bucket limiter consulted before each call.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

func NewClient(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AllMids returns the current mid price for every listed coin. Spot index
// keys (prefixed "@") and unparseable values are dropped.
func (c *Client) AllMids(ctx context.Context) (map[string]float64, error) {
	raw, err := c.post(ctx, infoTypeAllMids, infoRequest{Type: infoTypeAllMids})
	ratelimit.RecordAPICall(infoTypeAllMids, err)
	if err != nil {
		return nil, err
	}

	var mids map[string]string
	if err := json.Unmarshal(raw, &mids); err != nil {
		return nil, fmt.Errorf("unmarshal allMids: %w", err)
	}

	out := make(map[string]float64, len(mids))
	for coin, px := range mids {
		if strings.HasPrefix(coin, "@") {
			continue
		}
		if v := ParseDecimal(px); v > 0 {
			out[coin] = v
		}
	}
	return out, nil
}

// ClearinghouseState returns the perp account state for one user address.
func (c *Client) ClearinghouseState(ctx context.Context, user string) (*ClearinghouseState, error) {
	raw, err := c.post(ctx, infoTypeClearinghouseState, infoRequest{Type: infoTypeClearinghouseState, User: user})
	ratelimit.RecordAPICall(infoTypeClearinghouseState, err)
	if err != nil {
		return nil, err
	}

	var state ClearinghouseState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("unmarshal clearinghouseState: %w", err)
	}
	return &state, nil
}

func (c *Client) post(ctx context.Context, method string, reqBody infoRequest) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	metrics.APICallLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	return respBody, nil
}
