package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/mpdee/fleetprobe/internal/executor"
	"github.com/mpdee/fleetprobe/internal/scenario"
	"github.com/mpdee/fleetprobe/internal/stability"
)

// Session is one isolated browser tab context driving a single scenario. It
// implements executor.Driver.
type Session struct {
	id        string
	ctx       context.Context
	cancel    context.CancelFunc
	waiter    stability.Waiter
	closeOnce sync.Once
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Release closes the tab and cancels the session context. Idempotent;
// teardown errors are swallowed so the original verdict is never masked.
func (s *Session) Release() {
	s.closeOnce.Do(func() {
		if err := chromedp.Cancel(s.ctx); err != nil {
			slog.Debug("session tab close failed", "session_id", s.id, "error", err)
		}
		s.cancel()
		slog.Debug("session released", "session_id", s.id)
	})
}

// run executes chromedp actions under a step timeout derived from the
// session context.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stepCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(stepCtx, actions...)
}

// Navigate opens the given URL, waiting for the navigation to commit.
func (s *Session) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := s.run(ctx, timeout, chromedp.Navigate(url)); err != nil {
		if isDeadline(err) {
			return executor.NewError(executor.CodeNavigationTimeout,
				fmt.Sprintf("navigation to %s did not commit within %s", url, timeout), err)
		}
		return executor.NewError(executor.CodeSessionUnavailable, "navigate "+url, err)
	}
	return nil
}

// WaitFramesLoaded waits until the document and every reachable frame has
// left the loading state. Cross-origin frames are skipped; callers mark this
// step best-effort.
func (s *Session) WaitFramesLoaded(ctx context.Context, timeout time.Duration) error {
	const readyExpr = `(() => {
		if (document.readyState === 'loading') return false;
		for (const f of Array.from(window.frames)) {
			try {
				if (f.document.readyState === 'loading') return false;
			} catch (e) {
				// Cross-origin frame, not observable.
			}
		}
		return true;
	})()`

	err := s.waiter.Poll(ctx, timeout, func(pollCtx context.Context) (bool, error) {
		var ready bool
		if runErr := s.run(pollCtx, timeout, chromedp.Evaluate(readyExpr, &ready)); runErr != nil {
			return false, runErr
		}
		return ready, nil
	})
	if err != nil {
		if errors.Is(err, stability.ErrTimeout) || isDeadline(err) {
			return executor.NewError(executor.CodeLoadWaitTimeout,
				fmt.Sprintf("frames still loading after %s", timeout), err)
		}
		return executor.NewError(executor.CodeSessionUnavailable, "wait for frame load", err)
	}
	return nil
}

// Fill waits for the element and replaces its value with text.
func (s *Session) Fill(ctx context.Context, loc scenario.Locator, text string, timeout time.Duration) error {
	sel, opt, err := compileFillable(loc)
	if err != nil {
		return err
	}
	runErr := s.run(ctx, timeout,
		chromedp.WaitVisible(sel, opt),
		chromedp.Clear(sel, opt),
		chromedp.SendKeys(sel, text, opt),
	)
	if runErr != nil {
		if isDeadline(runErr) {
			return executor.NewError(executor.CodeElementNotFound,
				fmt.Sprintf("fill target %s not visible within %s", loc, timeout), runErr)
		}
		return executor.NewError(executor.CodeSessionUnavailable, "fill "+loc.String(), runErr)
	}
	return nil
}

// Click waits for the element and clicks it.
func (s *Session) Click(ctx context.Context, loc scenario.Locator, timeout time.Duration) error {
	sel, opt, err := compile(loc)
	if err != nil {
		return err
	}
	runErr := s.run(ctx, timeout,
		chromedp.WaitVisible(sel, opt),
		chromedp.Click(sel, opt),
	)
	if runErr != nil {
		if isDeadline(runErr) {
			return executor.NewError(executor.CodeElementNotFound,
				fmt.Sprintf("click target %s not visible within %s", loc, timeout), runErr)
		}
		return executor.NewError(executor.CodeSessionUnavailable, "click "+loc.String(), runErr)
	}
	return nil
}

// AssertVisible polls for the locator's visibility until timeout.
func (s *Session) AssertVisible(ctx context.Context, loc scenario.Locator, timeout time.Duration) error {
	expr, err := visibleExpr(loc)
	if err != nil {
		return err
	}

	pollErr := s.waiter.Poll(ctx, timeout, func(pollCtx context.Context) (bool, error) {
		var visible bool
		if runErr := s.run(pollCtx, timeout, chromedp.Evaluate(expr, &visible)); runErr != nil {
			return false, runErr
		}
		return visible, nil
	})
	if pollErr != nil {
		if errors.Is(pollErr, stability.ErrTimeout) || isDeadline(pollErr) {
			return executor.NewError(executor.CodeAssertionFailed,
				fmt.Sprintf("expected element %s not visible within %s", loc, timeout), pollErr)
		}
		return executor.NewError(executor.CodeSessionUnavailable, "assert visible "+loc.String(), pollErr)
	}
	return nil
}

// Settle waits for the page to reach a quiet ready state, with d as an upper
// bound. A zero duration is a no-op.
func (s *Session) Settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	// Reuse the frame-load condition; settling never fails a step.
	if err := s.WaitFramesLoaded(ctx, d); err != nil {
		slog.Debug("settle wait expired", "session_id", s.id, "error", err)
	}
	return nil
}

func isDeadline(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
