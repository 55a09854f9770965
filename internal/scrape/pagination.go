package scrape

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/arnadev/SaaS-review-Scraper/internal/review"
)

// DefaultEmptyPageThreshold bounds consecutive pages that produced nothing
// before pagination gives up on an HTTP-backed listing.
const DefaultEmptyPageThreshold = 3

// PaginatorConfig controls one listing's page-by-page loop.
type PaginatorConfig struct {
	// Window is the inclusive date range items must fall within.
	Window DateWindow
	// MaxPages bounds the number of pages fetched; negative means unbounded.
	MaxPages int
	// EmptyPageThreshold is the number of consecutive empty or failed pages
	// tolerated before the loop stops. Non-positive values fall back to
	// DefaultEmptyPageThreshold.
	EmptyPageThreshold int
	// Delay is an optional courtesy pause between page fetches.
	Delay time.Duration
}

// Paginator drives the page-by-page loop for a listing: acquire a page, hand
// it to extraction, filter items against the date window, and decide whether
// to continue, stop normally, or abort.
type Paginator struct {
	acquirer Acquirer
	extract  ExtractFunc
	pageURL  PageURLFunc
	cfg      PaginatorConfig
	pauser   Pauser
	logger   *zap.Logger
}

// NewPaginator constructs a Paginator.
func NewPaginator(acquirer Acquirer, extract ExtractFunc, pageURL PageURLFunc, cfg PaginatorConfig, pauser Pauser, logger *zap.Logger) *Paginator {
	if cfg.EmptyPageThreshold <= 0 {
		cfg.EmptyPageThreshold = DefaultEmptyPageThreshold
	}
	if pauser == nil {
		pauser = TimerPauser{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Paginator{
		acquirer: acquirer,
		extract:  extract,
		pageURL:  pageURL,
		cfg:      cfg,
		pauser:   pauser,
		logger:   logger,
	}
}

// paginationState is mutated once per page iteration and discarded when the
// loop ends.
type paginationState struct {
	page             int
	fetched          int
	consecutiveEmpty int
	collected        []review.Review
}

// Run executes the loop and returns every in-window item, newest pages first
// in listing order. Items whose parsed date lies outside the window, or whose
// date never parsed, are never returned. The error is non-nil only for
// source-fatal conditions; ordinary page failures advance the loop instead.
func (p *Paginator) Run(ctx context.Context) ([]review.Review, error) {
	state := paginationState{page: 1}

	for p.morePagesRequested(state) && state.consecutiveEmpty < p.cfg.EmptyPageThreshold {
		if err := ctx.Err(); err != nil {
			return state.collected, err
		}
		if state.fetched > 0 {
			p.pauser.Pause(ctx, p.cfg.Delay)
		}

		url := p.pageURL(state.page)
		page, err := p.acquirer.Acquire(ctx, Request{URL: url})
		state.fetched++
		if err != nil {
			if errors.Is(err, ErrSessionUnavailable) {
				return state.collected, err
			}
			TotalAcquisitionFailures.Inc()
			p.logger.Warn("page acquisition failed",
				zap.String("url", url),
				zap.Int("page", state.page),
				zap.Error(err),
			)
			state.consecutiveEmpty++
			state.page++
			continue
		}
		TotalAcquisitions.Inc()
		TotalPages.Inc()

		extraction := p.extract(page)
		inWindow, beforeWindow := p.partition(extraction.Items)
		state.collected = append(state.collected, inWindow...)
		TotalReviewsInWindow.Add(float64(len(inWindow)))

		if len(extraction.Items) == 0 {
			state.consecutiveEmpty++
		} else {
			state.consecutiveEmpty = 0
		}

		p.logger.Debug("page consumed",
			zap.Int("page", state.page),
			zap.Int("items", len(extraction.Items)),
			zap.Int("in_window", len(inWindow)),
			zap.Int("before_window", beforeWindow),
		)

		// The sources list newest-first, so a page dominated by items older
		// than the window start signals the tail of relevant history. The
		// heuristic may over- or under-run by one page; it guarantees
		// termination, not precision.
		if state.page > 2 && beforeWindow > len(inWindow) {
			p.logger.Info("stopping: page majority predates window",
				zap.Int("page", state.page),
				zap.Int("before_window", beforeWindow),
				zap.Int("in_window", len(inWindow)),
			)
			break
		}
		if !extraction.HasNext {
			p.logger.Debug("stopping: listing reports no further pages", zap.Int("page", state.page))
			break
		}
		state.page++
	}

	return state.collected, nil
}

func (p *Paginator) morePagesRequested(state paginationState) bool {
	return p.cfg.MaxPages < 0 || state.fetched < p.cfg.MaxPages
}

// partition splits extracted items into those inside the window and a count
// of those strictly before it. Items with unparsable dates belong to neither:
// they count toward page existence but are never yielded.
func (p *Paginator) partition(items []review.Review) ([]review.Review, int) {
	var inWindow []review.Review
	before := 0
	for _, item := range items {
		if item.Date == nil {
			continue
		}
		switch {
		case p.cfg.Window.Contains(*item.Date):
			inWindow = append(inWindow, item)
		case p.cfg.Window.BeforeStart(*item.Date):
			before++
		}
	}
	return inWindow, before
}
