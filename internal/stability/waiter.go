// Package stability provides readiness polling for pages whose rendering is
// asynchronous. It replaces the fixed pre-action sleeps of the original
// harness with bounded wait-until-condition loops.
package stability

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned when a condition does not hold before the deadline.
var ErrTimeout = errors.New("condition not met before deadline")

// Condition is polled until it reports true, fails, or the deadline passes.
type Condition func(ctx context.Context) (bool, error)

// Waiter polls conditions on a fixed interval.
type Waiter struct {
	Interval time.Duration
}

// Default polls every 250ms, matching a settled-UI observation cadence
// without hammering the browser.
func Default() Waiter {
	return Waiter{Interval: 250 * time.Millisecond}
}

// Poll runs cond every interval until it returns true, returns an error, or
// timeout elapses. A condition error aborts the poll immediately; ErrTimeout
// is returned at the deadline.
func (w Waiter) Poll(ctx context.Context, timeout time.Duration, cond Condition) error {
	interval := w.Interval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// First check without waiting for a tick.
	ok, err := cond(ctx)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrTimeout
			}
			return ctx.Err()
		case <-ticker.C:
			ok, err := cond(ctx)
			if err != nil {
				// A deadline hit inside the condition counts as a poll
				// timeout, not a condition failure.
				if errors.Is(err, context.DeadlineExceeded) {
					return ErrTimeout
				}
				return err
			}
			if ok {
				return nil
			}
		}
	}
}
