package retry

import (
	"context"
	"time"
)

type stop struct {
	error
}

// Stop wraps err so For returns it immediately without further attempts.
func Stop(err error) error {
	return stop{err}
}

// For calls fn up to attempts times, doubling the pause between attempts.
// It gives up early when ctx is done.
func For(ctx context.Context, attempts int, sleep time.Duration, fn func() error) error {
	if err := fn(); err != nil {
		if s, ok := err.(stop); ok {
			// Return the original error for later checking
			return s.error
		}

		if attempts--; attempts > 0 {
			timer := time.NewTimer(sleep)
			select {
			case <-ctx.Done():
				timer.Stop()
				return err
			case <-timer.C:
			}
			return For(ctx, attempts, 2*sleep, fn)
		}

		return err
	}

	return nil
}
