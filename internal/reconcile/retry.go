package reconcile

import (
	"context"
	"fmt"
	"time"

	"stevedore/pkg/logging"
)

// RetryPolicy bounds how often and how eagerly an operation is retried.
type RetryPolicy struct {
	// Attempts is the total number of tries, including the first.
	// Values below 1 are treated as 1.
	Attempts int

	// Delay is the pause between consecutive attempts.
	Delay time.Duration
}

// Retry wraps an operation with a bounded retry loop. It composes over
// the operation's result rather than being duplicated at call sites;
// the tool layer decides which operations get a policy (e.g. image
// pushes) and which do not (the reconcile protocol itself never
// retries).
//
// The context is checked before every retry pause; cancellation wins
// over further attempts.
func Retry[T any](ctx context.Context, policy RetryPolicy, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			logging.Warn(reconcileSubsystem, "Retrying %s (attempt %d/%d) after: %v", op, attempt, attempts, lastErr)
			select {
			case <-ctx.Done():
				return zero, fmt.Errorf("%s cancelled before retry: %w", op, ctx.Err())
			case <-time.After(policy.Delay):
			}
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}

	if attempts == 1 {
		return zero, lastErr
	}
	return zero, fmt.Errorf("%s failed after %d attempts: %w", op, attempts, lastErr)
}
