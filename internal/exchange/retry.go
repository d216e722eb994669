package exchange

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Retry runs fn up to attempts times with a fixed delay between attempts,
// stopping early if the context is cancelled. Exchange calls are wrapped
// in this uniformly by the market and execution gates.
func Retry[T any](ctx context.Context, attempts int, delay time.Duration, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if i == attempts {
			break
		}
		log.Printf("[WARN] %s failed (attempt %d/%d): %v, retrying in %s", op, i, attempts, err, delay)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}
	return zero, fmt.Errorf("%s: all %d attempts failed: %w", op, attempts, lastErr)
}
