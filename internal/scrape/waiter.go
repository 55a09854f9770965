package scrape

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// WaitOutcome is the terminal state of a ready-wait.
type WaitOutcome int

// Ready-wait outcomes.
const (
	WaitReady WaitOutcome = iota
	WaitTimedOut
)

// PageState exposes the current rendered document and location of a live
// page, re-read on every poll.
type PageState interface {
	Snapshot(ctx context.Context) (html string, location string, err error)
}

// DefaultPollInterval is the tick between challenge re-checks.
const DefaultPollInterval = 2 * time.Second

// ReadyWaiter polls a page until its anti-bot challenge clears or a budget
// elapses. It does not solve challenges: it assumes a human or the vendor's
// own passive checks clear them out-of-band while the loop observes.
type ReadyWaiter struct {
	detector *ChallengeDetector
	clock    Clock
	pauser   Pauser
	tick     time.Duration
	logger   *zap.Logger
}

// NewReadyWaiter constructs a waiter. A non-positive tick falls back to
// DefaultPollInterval.
func NewReadyWaiter(detector *ChallengeDetector, clock Clock, pauser Pauser, tick time.Duration, logger *zap.Logger) *ReadyWaiter {
	if tick <= 0 {
		tick = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReadyWaiter{
		detector: detector,
		clock:    clock,
		pauser:   pauser,
		tick:     tick,
		logger:   logger,
	}
}

// Wait polls until the page is ready or the budget elapses. The page is ready
// when the challenge is gone and, if expectLocation is non-empty, the current
// location contains it. WaitTimedOut is returned at or after the budget
// elapses, never before.
func (w *ReadyWaiter) Wait(ctx context.Context, state PageState, expectLocation string, budget time.Duration) WaitOutcome {
	deadline := w.clock.Now().Add(budget)
	for {
		html, location, err := state.Snapshot(ctx)
		if err == nil && !w.detector.Blocked(html) && locationMatches(location, expectLocation) {
			return WaitReady
		}
		if err != nil {
			w.logger.Debug("page snapshot failed during ready wait", zap.Error(err))
		}
		if ctx.Err() != nil || !w.clock.Now().Before(deadline) {
			return WaitTimedOut
		}
		w.pauser.Pause(ctx, w.tick)
	}
}

func locationMatches(location, expect string) bool {
	return expect == "" || strings.Contains(location, expect)
}
