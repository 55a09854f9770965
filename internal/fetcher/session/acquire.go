package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/arnadev/SaaS-review-Scraper/internal/scrape"
)

const snapshotTimeout = 10 * time.Second

// Acquire navigates the reused tab to the target URL, waits briefly for the
// initial render, and runs the challenge detector. A blocked page enters the
// ready-wait with the request's expected-location substring; a wait that
// times out fails the page with the blocked reason. The call advances the
// shared tab's location; callers must not assume prior page state survives.
func (m *Manager) Acquire(ctx context.Context, req scrape.Request) (scrape.Page, error) {
	if err := m.Ensure(ctx); err != nil {
		return scrape.Page{}, err
	}

	if err := m.navigate(req.URL); err != nil {
		// Challenges routinely abort the navigation itself; fall through to
		// detection and let the waiter or the snapshot decide.
		m.logger.Debug("navigation did not complete cleanly",
			zap.String("url", req.URL),
			zap.Error(err),
		)
	}
	m.pauser.Pause(ctx, m.cfg.SettleDelay)

	html, location, err := m.Snapshot(ctx)
	if err == nil && !m.detector.Blocked(html) {
		scrape.TotalAcquisitions.Inc()
		return scrape.Page{Content: html, FinalURL: location}, nil
	}
	if err == nil {
		scrape.TotalChallenges.Inc()
		m.logger.Info("challenge detected, waiting for it to clear",
			zap.String("url", req.URL),
			zap.String("location", location),
		)
	}

	budget := req.Timeout
	if budget <= 0 {
		budget = m.cfg.ChallengeBudget
	}
	if m.waiter.Wait(ctx, m, req.ExpectLocation, budget) == scrape.WaitTimedOut {
		scrape.TotalChallengeTimeouts.Inc()
		return scrape.Page{}, fmt.Errorf("%s: challenge did not clear within %s: %w", req.URL, budget, scrape.ErrBlocked)
	}

	html, location, err = m.Snapshot(ctx)
	if err != nil {
		return scrape.Page{}, fmt.Errorf("%s: read page after challenge cleared: %v: %w", req.URL, err, scrape.ErrTransport)
	}
	scrape.TotalAcquisitions.Inc()
	return scrape.Page{Content: html, FinalURL: location}, nil
}

func (m *Manager) navigate(rawURL string) error {
	tab := m.Tab()
	if tab == nil {
		return fmt.Errorf("navigate %s: %w", rawURL, scrape.ErrSessionUnavailable)
	}
	navCtx, cancel := context.WithTimeout(tab, m.cfg.NavTimeout)
	defer cancel()
	if err := chromedp.Run(navCtx, chromedp.Navigate(rawURL)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("navigate %s: %v: %w", rawURL, err, scrape.ErrTimeout)
		}
		return fmt.Errorf("navigate %s: %w", rawURL, err)
	}
	return nil
}

// Snapshot re-reads the tab's rendered document and current location. It
// implements scrape.PageState for the ready waiter.
func (m *Manager) Snapshot(ctx context.Context) (string, string, error) {
	tab := m.Tab()
	if tab == nil {
		return "", "", fmt.Errorf("snapshot: %w", scrape.ErrSessionUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	snapCtx, cancel := context.WithTimeout(tab, snapshotTimeout)
	defer cancel()

	var html, location string
	err := chromedp.Run(snapCtx,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", "", fmt.Errorf("snapshot page: %w", err)
	}
	return html, location, nil
}
