package scrape

import (
	"context"
	"time"

	"github.com/arnadev/SaaS-review-Scraper/internal/review"
)

// Request describes a single document acquisition. It is constructed per call
// and never mutated.
type Request struct {
	// URL is the target document.
	URL string
	// ExpectLocation, when non-empty, is a substring the final page location
	// must contain before the document counts as ready. Only meaningful for
	// session-backed acquisition.
	ExpectLocation string
	// Timeout overrides the backend's per-request timeout when positive.
	Timeout time.Duration
}

// Page is a successfully acquired document. A Page is never partially
// populated: acquisition either yields content plus the final URL or an error.
type Page struct {
	Content  string
	FinalURL string
}

// Acquirer obtains a ready document for a URL.
type Acquirer interface {
	Acquire(ctx context.Context, req Request) (Page, error)
}

// Extraction is the outcome of handing one listing page to an extractor.
type Extraction struct {
	Items []review.Review
	// HasNext is false when the page signals the listing is exhausted
	// (no further pages linked).
	HasNext bool
}

// ExtractFunc locates review records inside a ready document. Implementations
// are pure; errors for individual items must be swallowed and surface only as
// missing records.
type ExtractFunc func(p Page) Extraction

// PageURLFunc renders the listing URL for a given 1-based page number.
type PageURLFunc func(page int) string

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Pauser suspends the caller for a duration, honoring context cancellation.
type Pauser interface {
	Pause(ctx context.Context, delay time.Duration)
}
