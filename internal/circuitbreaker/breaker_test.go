package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := New(Config{FailureThreshold: 3, OpenTimeout: time.Minute})

	for i := 0; i < 2; i++ {
		b.RecordFailure()
		require.NoError(t, b.Allow(), "still closed after %d failures", i+1)
	}

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.GetState())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := New(Config{FailureThreshold: 3, OpenTimeout: time.Minute})

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()

	assert.Equal(t, StateClosed, b.GetState(), "interleaved success keeps the count below threshold")
}

func TestBreaker_HalfOpenAfterTimeoutThenCloses(t *testing.T) {
	b := New(Config{FailureThreshold: 1, SuccessThreshold: 2, OpenTimeout: 10 * time.Millisecond})

	b.RecordFailure()
	require.Equal(t, StateOpen, b.GetState())

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, b.Allow(), "open promotes to half-open after the timeout")
	require.Equal(t, StateHalfOpen, b.GetState())

	b.RecordSuccess()
	require.Equal(t, StateHalfOpen, b.GetState(), "one success is not enough")
	b.RecordSuccess()
	assert.Equal(t, StateClosed, b.GetState())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := New(Config{FailureThreshold: 1, OpenTimeout: 10 * time.Millisecond})

	b.RecordFailure()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, StateHalfOpen, b.GetState())

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.GetState())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestBreaker_DoRecordsOutcome(t *testing.T) {
	b := New(Config{FailureThreshold: 2, OpenTimeout: time.Minute})
	boom := errors.New("boom")

	fail := func(context.Context) error { return boom }
	require.ErrorIs(t, b.Do(context.Background(), fail), boom)
	require.ErrorIs(t, b.Do(context.Background(), fail), boom)

	err := b.Do(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen, "open breaker fails fast without running fn")
}

func TestBreaker_DoIgnoresContextCancellation(t *testing.T) {
	b := New(Config{FailureThreshold: 1, OpenTimeout: time.Minute})

	err := b.Do(context.Background(), func(context.Context) error {
		return context.Canceled
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, b.GetState(), "cancellation is not an endpoint failure")
}

func TestBreaker_StateChangeCallback(t *testing.T) {
	var transitions []string
	b := New(Config{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		OpenTimeout:      10 * time.Millisecond,
		OnStateChange: func(from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	b.RecordFailure()
	time.Sleep(20 * time.Millisecond)
	b.GetState()
	b.RecordSuccess()

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}
