package scrape

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock advances only when its pauser sleeps.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0).UTC()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// clockPauser records pauses and moves the fake clock instead of sleeping.
type clockPauser struct {
	clock  *fakeClock
	pauses []time.Duration
}

func (p *clockPauser) Pause(_ context.Context, d time.Duration) {
	p.pauses = append(p.pauses, d)
	p.clock.advance(d)
}

// scriptedPage yields a blocked document for the first n snapshots.
type scriptedPage struct {
	blockedFor int
	calls      int
	location   string
}

func (s *scriptedPage) Snapshot(context.Context) (string, string, error) {
	s.calls++
	if s.calls <= s.blockedFor {
		return "<html><body>Checking your browser before accessing</body></html>", s.location, nil
	}
	return "<html><body><div class=\"reviews\">content</div></body></html>", s.location, nil
}

func TestReadyWaiterClears(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	pauser := &clockPauser{clock: clock}
	w := NewReadyWaiter(NewChallengeDetector(nil, nil), clock, pauser, 2*time.Second, nil)

	page := &scriptedPage{blockedFor: 3, location: "https://example.com/acme/reviews"}
	got := w.Wait(context.Background(), page, "", time.Minute)
	if got != WaitReady {
		t.Fatalf("expected WaitReady got %v", got)
	}
	if len(pauser.pauses) != 3 {
		t.Fatalf("expected 3 poll pauses got %d", len(pauser.pauses))
	}
}

func TestReadyWaiterTimesOutAtOrAfterBudget(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	pauser := &clockPauser{clock: clock}
	w := NewReadyWaiter(NewChallengeDetector(nil, nil), clock, pauser, 2*time.Second, nil)

	start := clock.Now()
	budget := 7 * time.Second
	page := &scriptedPage{blockedFor: 1 << 30}
	if got := w.Wait(context.Background(), page, "", budget); got != WaitTimedOut {
		t.Fatalf("expected WaitTimedOut got %v", got)
	}
	if elapsed := clock.Now().Sub(start); elapsed < budget {
		t.Fatalf("waiter gave up after %v, before the %v budget", elapsed, budget)
	}
}

func TestReadyWaiterHonorsExpectedLocation(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	pauser := &clockPauser{clock: clock}
	w := NewReadyWaiter(NewChallengeDetector(nil, nil), clock, pauser, time.Second, nil)

	// Challenge clears immediately but the page never reaches the listing.
	page := &scriptedPage{blockedFor: 0, location: "https://example.com/interstitial"}
	if got := w.Wait(context.Background(), page, "/acme/reviews", 5*time.Second); got != WaitTimedOut {
		t.Fatalf("expected WaitTimedOut for wrong location, got %v", got)
	}

	page = &scriptedPage{blockedFor: 0, location: "https://example.com/products/acme/reviews?page=2"}
	if got := w.Wait(context.Background(), page, "/acme/reviews", 5*time.Second); got != WaitReady {
		t.Fatalf("expected WaitReady for matching location, got %v", got)
	}
}
