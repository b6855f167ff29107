package resilience

import (
	"context"
	"errors"
	"time"
)

// Backoff describes a bounded exponential retry schedule.
type Backoff struct {
	Attempts int           // total attempts including the first
	Base     time.Duration // delay before the second attempt
	Max      time.Duration // cap on any single delay, 0 means uncapped
}

// Delay returns the wait before attempt n (n >= 1 is the first retry).
func (b Backoff) Delay(n int) time.Duration {
	if n < 1 {
		return 0
	}
	d := b.Base << (n - 1)
	if b.Max > 0 && (d > b.Max || d <= 0) {
		d = b.Max
	}
	return d
}

// permanent marks an error that must not be retried.
type permanent struct{ err error }

func (p *permanent) Error() string { return p.err.Error() }
func (p *permanent) Unwrap() error { return p.err }

// Permanent wraps err so Retry returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanent{err: err}
}

// Retry calls fn until it succeeds, returns a Permanent error, the attempt
// budget is spent, or ctx is done. The last error is returned unwrapped.
func Retry(ctx context.Context, b Backoff, fn func(ctx context.Context) error) error {
	attempts := b.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			timer := time.NewTimer(b.Delay(i))
			select {
			case <-ctx.Done():
				timer.Stop()
				return errors.Join(err, ctx.Err())
			case <-timer.C:
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		var p *permanent
		if errors.As(err, &p) {
			return p.err
		}
	}
	return err
}
