package gplatform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/ktcloud-ops/snapguard/internal/cloud"
)

// isRetryable determines if an error is transient and warrants a retry.
//
// Rate limiting and server-side failures are worth another attempt; client
// errors (bad signature, unknown id) are not, and a malformed response body
// will not get better by asking again.
func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusRequestTimeout,
			http.StatusInternalServerError,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}

	var shapeErr *ResponseShapeError
	if errors.As(err, &shapeErr) {
		return false
	}

	// Anything else is a transport-level failure (DNS, connection reset, ...)
	// and assumed transient.
	return true
}

// ExecuteAction wraps a function with retry logic: exponential backoff, jitter
// and a context timeout covering all attempts.
//
// opName is used for logging. operation must honor its context so cancellation
// propagates into in-flight HTTP requests.
func ExecuteAction(ctx context.Context, cfg cloud.RetryConfig, opName string, operation func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.OperationTimeout)
	defer cancel()

	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("%s timed out before attempt %d: %w", opName, attempt+1, ctx.Err())
		}

		lastErr = operation(ctx)
		if lastErr == nil {
			return nil
		}

		if !isRetryable(lastErr) {
			return lastErr
		}

		if attempt == cfg.MaxRetries {
			break
		}

		slog.Warn("Transient error detected, scheduling retry",
			"operation", opName,
			"attempt", attempt+1,
			"max_retries", cfg.MaxRetries,
			"error", lastErr)

		backoff := float64(cfg.BaseDelay) * math.Pow(2, float64(attempt))

		// Jitter up to 50% of the backoff to avoid synchronized retries.
		jitter := time.Duration(rand.Int63n(int64(backoff) / 2))
		sleepDuration := min(time.Duration(backoff)+jitter, cfg.MaxDelay)

		select {
		case <-time.After(sleepDuration):
			continue
		case <-ctx.Done():
			return fmt.Errorf("%s context cancelled during backoff: %w", opName, ctx.Err())
		}
	}

	return fmt.Errorf("%s failed after %d retries: %w", opName, cfg.MaxRetries, lastErr)
}
