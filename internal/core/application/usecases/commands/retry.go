package commands

import (
	"context"
	"time"

	"catering/internal/pkg/errs"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds the exponential backoff applied to provider calls.
// Only retryable errors (see errs.IsRetryable) are repeated; anything else
// stops the loop immediately and is returned as is.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy returns the policy used when nothing is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

func (p RetryPolicy) run(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	b.MaxElapsedTime = 0

	return backoff.Retry(func() error {
		err := op()
		if err == nil || errs.IsRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx))
}

// PollingOptions configure the cooperative polling of the fulfilment workers.
type PollingOptions struct {
	// Interval is the delay before the next poll attempt is delivered.
	Interval time.Duration

	// MaxAttempts caps the number of tasks a single polling worker may take.
	MaxAttempts int

	// CASRetries caps compare-and-swap retries on a contended tracking record.
	CASRetries int

	// DeliveryLease is how long one delivery worker owns the creation of the
	// delivery order. It must outlast CreateOrder including its retries.
	DeliveryLease time.Duration

	Retry RetryPolicy
}

// DefaultPollingOptions polls once per second for up to ten minutes.
func DefaultPollingOptions() PollingOptions {
	return PollingOptions{
		Interval:      time.Second,
		MaxAttempts:   600,
		CASRetries:    5,
		DeliveryLease: 30 * time.Second,
		Retry:         DefaultRetryPolicy(),
	}
}
