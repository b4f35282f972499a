package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/hyperliquid"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantClass  Class
		wantReason string
	}{
		{
			name:       "nil error",
			err:        nil,
			wantClass:  ClassTerminal,
			wantReason: "nil_error",
		},
		{
			name:       "context canceled",
			err:        fmt.Errorf("fetch state: %w", context.Canceled),
			wantClass:  ClassTerminal,
			wantReason: "context_canceled",
		},
		{
			name:       "deadline exceeded",
			err:        fmt.Errorf("fetch state: %w", context.DeadlineExceeded),
			wantClass:  ClassTransient,
			wantReason: "context_deadline_exceeded",
		},
		{
			name:       "api 429",
			err:        &hyperliquid.APIError{Status: http.StatusTooManyRequests},
			wantClass:  ClassTransient,
			wantReason: "http_rate_limited",
		},
		{
			name:       "api 503",
			err:        fmt.Errorf("wrapped: %w", &hyperliquid.APIError{Status: http.StatusServiceUnavailable}),
			wantClass:  ClassTransient,
			wantReason: "http_server_error",
		},
		{
			name:       "api 422",
			err:        &hyperliquid.APIError{Status: http.StatusUnprocessableEntity},
			wantClass:  ClassTerminal,
			wantReason: "http_client_error",
		},
		{
			name:       "connection refused message",
			err:        errors.New("dial tcp: connection refused"),
			wantClass:  ClassTransient,
			wantReason: "message_transient",
		},
		{
			name:       "breaker open fails fast",
			err:        errors.New("circuit breaker is open"),
			wantClass:  ClassTerminal,
			wantReason: "message_terminal",
		},
		{
			name:       "unmarshal failure",
			err:        errors.New("unmarshal allMids: unexpected end of JSON input"),
			wantClass:  ClassTerminal,
			wantReason: "message_terminal",
		},
		{
			name:       "unknown defaults to terminal",
			err:        errors.New("something entirely new"),
			wantClass:  ClassTerminal,
			wantReason: "unknown_terminal_default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Classify(tt.err)
			assert.Equal(t, tt.wantClass, d.Class)
			assert.Equal(t, tt.wantReason, d.Reason)
		})
	}
}

func TestExplicitMarkersOverrideShape(t *testing.T) {
	// A 422 would normally be terminal, but an explicit mark wins.
	marked := Transient(&hyperliquid.APIError{Status: http.StatusUnprocessableEntity})
	d := Classify(marked)
	assert.True(t, d.IsTransient())
	assert.Equal(t, "explicit_transient", d.Reason)

	marked = Terminal(errors.New("dial tcp: connection refused"))
	d = Classify(fmt.Errorf("outer: %w", marked))
	assert.False(t, d.IsTransient(), "explicit terminal survives wrapping")
	assert.Equal(t, "explicit_terminal", d.Reason)
}

func TestMarkersPreserveErrorChain(t *testing.T) {
	base := &hyperliquid.APIError{Status: 500, Body: "boom"}
	marked := Terminal(base)

	var apiErr *hyperliquid.APIError
	assert.ErrorAs(t, marked, &apiErr, "marking must not break errors.As")
	assert.Equal(t, base.Error(), marked.Error())
	assert.Nil(t, Transient(nil))
	assert.Nil(t, Terminal(nil))
}
