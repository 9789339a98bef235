package retryutil

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/yourtyme-app/yourtyme/pkg/utils/logging"
)

// Policy controls how an operation is retried. Every external call in the
// home sync job goes through the same helper instead of ad hoc loops.
type Policy struct {
	Attempts uint
	Delay    time.Duration
	Backoff  bool // multiplicative backoff when true, fixed delay otherwise
}

// Exponential returns a policy with capped multiplicative backoff
func Exponential(attempts uint, base time.Duration) Policy {
	return Policy{Attempts: attempts, Delay: base, Backoff: true}
}

// Fixed returns a policy with a constant delay between attempts
func Fixed(attempts uint, delay time.Duration) Policy {
	return Policy{Attempts: attempts, Delay: delay, Backoff: false}
}

func (p Policy) options(ctx context.Context, name string) []retry.Option {
	delayType := retry.FixedDelay
	if p.Backoff {
		delayType = retry.BackOffDelay
	}

	return []retry.Option{
		retry.Attempts(p.Attempts),
		retry.Delay(p.Delay),
		retry.DelayType(delayType),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logging.From(ctx).Warn("retrying operation",
				"operation", name,
				"attempt", n+1,
				"error", err.Error(),
			)
		}),
	}
}

// Do invokes op, waiting per the policy between failures. It returns the last
// error once attempts are exhausted or the context is done.
func Do(ctx context.Context, name string, p Policy, op func() error) error {
	return retry.Do(op, p.options(ctx, name)...)
}

// DoWithData is Do for operations that return a value
func DoWithData[T any](ctx context.Context, name string, p Policy, op func() (T, error)) (T, error) {
	return retry.DoWithData(op, p.options(ctx, name)...)
}
