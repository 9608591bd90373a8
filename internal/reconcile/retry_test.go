package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), RetryPolicy{Attempts: 3}, "push", func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestRetryRecoversAfterTransientFailure(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), RetryPolicy{Attempts: 3, Delay: time.Millisecond}, "push", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("connection reset")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), RetryPolicy{Attempts: 2, Delay: time.Millisecond}, "push", func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("denied")
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Contains(t, err.Error(), "failed after 2 attempts")
	assert.Contains(t, err.Error(), "denied")
}

func TestRetrySingleAttemptKeepsOriginalError(t *testing.T) {
	sentinel := errors.New("denied")
	_, err := Retry(context.Background(), RetryPolicy{Attempts: 1}, "push", func(ctx context.Context) (string, error) {
		return "", sentinel
	})

	assert.ErrorIs(t, err, sentinel)
}

func TestRetryStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := Retry(ctx, RetryPolicy{Attempts: 10, Delay: time.Hour}, "push", func(ctx context.Context) (string, error) {
		calls++
		cancel()
		return "", errors.New("transient")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "cancellation must win over further attempts")
}

func TestRetryTreatsZeroAttemptsAsOne(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), RetryPolicy{}, "push", func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("fail")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
