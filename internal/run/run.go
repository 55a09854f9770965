// Package run sequences scrapes across review sources and assembles the
// final report for a company and date window.
package run

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arnadev/SaaS-review-Scraper/internal/hash/sha256"
	"github.com/arnadev/SaaS-review-Scraper/internal/id/uuid"
	"github.com/arnadev/SaaS-review-Scraper/internal/review"
	"github.com/arnadev/SaaS-review-Scraper/internal/scrape"
	"github.com/arnadev/SaaS-review-Scraper/internal/sources"
)

// ErrNoReviews indicates a run that finished without yielding a single
// review from any source.
var ErrNoReviews = errors.New("run produced no reviews")

// SourceResult records how one source fared during a run.
type SourceResult struct {
	Source  string `json:"source"`
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Error   string `json:"error,omitempty"`
}

// Report is the outcome of a full run across all requested sources.
type Report struct {
	RunID      string          `json:"run_id"`
	Company    string          `json:"company"`
	Window     string          `json:"window"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Sources    []SourceResult  `json:"sources"`
	Reviews    []review.Review `json:"reviews"`
}

// SourceScraper runs the pagination loop for a single source and returns the
// in-window reviews it found.
type SourceScraper func(ctx context.Context, src sources.Source) ([]review.Review, error)

// Recorder persists finished run reports. Implementations may be absent
// entirely when no database is configured.
type Recorder interface {
	StoreRun(ctx context.Context, report Report) error
}

// Orchestrator drives one scrape run end to end.
type Orchestrator struct {
	company  string
	window   scrape.DateWindow
	kinds    []sources.Kind
	scrape   SourceScraper
	recorder Recorder
	clock    scrape.Clock
	ids      *uuid.Generator
	hasher   *sha256.Hasher
	logger   *zap.Logger
}

// Config carries the orchestrator's collaborators.
type Config struct {
	Company  string
	Window   scrape.DateWindow
	Kinds    []sources.Kind
	Scraper  SourceScraper
	Recorder Recorder
	Clock    scrape.Clock
	Logger   *zap.Logger
}

// New validates the config and builds an Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Company == "" {
		return nil, fmt.Errorf("company is required")
	}
	if cfg.Scraper == nil {
		return nil, fmt.Errorf("source scraper is required")
	}
	if cfg.Clock == nil {
		return nil, fmt.Errorf("clock is required")
	}
	if len(cfg.Kinds) == 0 {
		cfg.Kinds = sources.AllKinds()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		company:  cfg.Company,
		window:   cfg.Window,
		kinds:    cfg.Kinds,
		scrape:   cfg.Scraper,
		recorder: cfg.Recorder,
		clock:    cfg.Clock,
		ids:      uuid.NewUUIDGenerator(),
		hasher:   sha256.New(),
		logger:   logger,
	}, nil
}

// Run scrapes every configured source in order. A source failure is recorded
// and the run continues with the remaining sources. The returned error is
// ErrNoReviews when every source came back empty; the report is still valid
// in that case so callers can inspect per-source errors.
func (o *Orchestrator) Run(ctx context.Context) (Report, error) {
	runID, err := o.ids.NewID()
	if err != nil {
		return Report{}, fmt.Errorf("generate run id: %w", err)
	}
	report := Report{
		RunID:     runID,
		Company:   o.company,
		Window:    o.window.String(),
		StartedAt: o.clock.Now().UTC(),
		Reviews:   []review.Review{},
	}

	for _, kind := range o.kinds {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		src, err := sources.ForCompany(kind, o.company)
		if err != nil {
			report.Sources = append(report.Sources, SourceResult{
				Source: string(kind),
				Error:  err.Error(),
			})
			continue
		}
		o.logger.Info("scraping source",
			zap.String("run_id", report.RunID),
			zap.String("source", string(kind)),
			zap.String("company", o.company))

		reviews, err := o.scrape(ctx, src)
		result := SourceResult{Source: string(kind), Count: len(reviews)}
		if err != nil {
			result.Error = err.Error()
			scrape.TotalSourceFailures.Inc()
			o.logger.Warn("source failed",
				zap.String("source", string(kind)),
				zap.Error(err))
		} else {
			result.Success = true
		}
		report.Sources = append(report.Sources, result)
		report.Reviews = append(report.Reviews, reviews...)
	}

	report.Reviews = o.dedupe(report.Reviews)
	review.SortNewestFirst(report.Reviews)
	report.FinishedAt = o.clock.Now().UTC()

	if o.recorder != nil {
		if err := o.recorder.StoreRun(ctx, report); err != nil {
			o.logger.Warn("failed to persist run", zap.Error(err))
		}
	}

	if len(report.Reviews) == 0 {
		return report, ErrNoReviews
	}
	return report, nil
}

// dedupe drops repeated reviews. Listings can shift under pagination so the
// same review may appear on two consecutive pages; identity is the digest of
// the fields a site renders verbatim.
func (o *Orchestrator) dedupe(reviews []review.Review) []review.Review {
	seen := make(map[string]struct{}, len(reviews))
	out := reviews[:0]
	for _, r := range reviews {
		key := o.hasher.Hash([]byte(r.Source + "\x00" + r.Author + "\x00" + r.RawDate + "\x00" + r.Title + "\x00" + r.Body))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
