package scrape

import (
	"context"
	"time"
)

// TimerPauser implements Pauser with a real timer.
type TimerPauser struct{}

// Pause blocks until the delay elapses or the context finishes.
func (TimerPauser) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
