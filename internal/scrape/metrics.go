package scrape

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalAcquisitions tracks documents successfully acquired.
	TotalAcquisitions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewscraper_acquisitions_total",
		Help: "The total number of documents successfully acquired.",
	})
	// TotalAcquisitionFailures tracks acquisitions that ended in a failure.
	TotalAcquisitionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewscraper_acquisition_failures_total",
		Help: "The total number of failed document acquisitions.",
	})
	// TotalRetries tracks retried attempts on the direct HTTP backend.
	TotalRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewscraper_retries_total",
		Help: "The total number of retried HTTP attempts.",
	})
	// TotalRateLimitHits tracks 429 responses.
	TotalRateLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewscraper_rate_limit_hits_total",
		Help: "The total number of rate-limited responses.",
	})
	// TotalForbiddenHits tracks 403 responses.
	TotalForbiddenHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewscraper_forbidden_hits_total",
		Help: "The total number of forbidden responses.",
	})
	// TotalChallenges tracks pages that loaded behind an anti-bot challenge.
	TotalChallenges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewscraper_challenges_total",
		Help: "The total number of anti-bot challenges encountered.",
	})
	// TotalChallengeTimeouts tracks challenges that never cleared in budget.
	TotalChallengeTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewscraper_challenge_timeouts_total",
		Help: "The total number of challenges that outlived the wait budget.",
	})
	// TotalSourceFailures tracks sources that aborted before finishing.
	TotalSourceFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewscraper_source_failures_total",
		Help: "The total number of sources that aborted before finishing.",
	})
	// TotalPages tracks listing pages handed to extraction.
	TotalPages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewscraper_pages_total",
		Help: "The total number of listing pages handed to extraction.",
	})
	// TotalReviewsInWindow tracks reviews accepted by the date-window filter.
	TotalReviewsInWindow = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewscraper_reviews_in_window_total",
		Help: "The total number of reviews accepted by the date-window filter.",
	})
)
