package cloud

import "time"

// RetryConfig defines the parameters for the exponential backoff and retry mechanism
// used when talking to the cloud API. Only transport-level transient failures are
// retried; orchestration-level per-item failures are never re-attempted inside a cycle.
type RetryConfig struct {
	// MaxRetries is the maximum number of additional attempts after the initial failure.
	MaxRetries int

	// BaseDelay is the initial wait time before the first retry.
	// The wait grows exponentially with each attempt (BaseDelay * 2^attempt).
	BaseDelay time.Duration

	// MaxDelay caps the sleep duration between retries.
	MaxDelay time.Duration

	// OperationTimeout is the total time limit for the operation including all retries.
	OperationTimeout time.Duration
}
