// Package direct implements scrape.Acquirer over plain HTTP using the Colly
// collector, wrapped in a retry/backoff policy with user-agent rotation.
package direct

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/arnadev/SaaS-review-Scraper/internal/ratelimit"
	"github.com/arnadev/SaaS-review-Scraper/internal/scrape"
)

// DefaultUserAgents is the fixed pool rotated through on forbidden responses.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:127.0) Gecko/20100101 Firefox/127.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
}

// Config controls fetcher behavior.
type Config struct {
	UserAgents []string
	// MaxRetries bounds total attempts per Acquire call.
	MaxRetries int
	// BaseDelay seeds the exponential (429) and linear (transient) backoff.
	BaseDelay time.Duration
	// ForbiddenCooldown is the fixed wait after rotating identity on a 403.
	ForbiddenCooldown time.Duration
	// CourtesyDelay plus jitter is slept before every attempt. Anti-burst
	// courtesy, not a correctness requirement; zero disables it.
	CourtesyDelay  time.Duration
	RequestTimeout time.Duration
	MaxRedirects   int
	// HostQPS caps request rate per host; zero disables the limiter.
	HostQPS float64
	// Transport overrides the HTTP transport (primarily for testing).
	Transport http.RoundTripper
}

func (c *Config) applyDefaults() {
	if len(c.UserAgents) == 0 {
		c.UserAgents = DefaultUserAgents
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 500 * time.Millisecond
	}
	if c.ForbiddenCooldown <= 0 {
		c.ForbiddenCooldown = 10 * time.Second
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 15 * time.Second
	}
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = 5
	}
}

// Fetcher is a scrape.Acquirer for sites that permit plain HTTP retrieval.
// Rotation state persists across calls on the same instance so consecutive
// forbidden responses do not re-select the same agent. A Fetcher must not be
// shared across concurrent Acquire calls.
type Fetcher struct {
	cfg       Config
	transport http.RoundTripper
	pauser    scrape.Pauser
	logger    *zap.Logger
	limiter   *ratelimit.Limiter

	mu      sync.Mutex
	uaIndex int
}

// New constructs a Fetcher.
func New(cfg Config, pauser scrape.Pauser, logger *zap.Logger) *Fetcher {
	cfg.applyDefaults()
	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          32,
			MaxIdleConnsPerHost:   8,
			IdleConnTimeout:       30 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: cfg.RequestTimeout,
			ForceAttemptHTTP2:     true,
		}
	}
	if pauser == nil {
		pauser = scrape.TimerPauser{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		cfg:       cfg,
		transport: transport,
		pauser:    pauser,
		logger:    logger,
		limiter:   ratelimit.New(ratelimit.Config{DefaultQPS: cfg.HostQPS}),
	}
}

type outcome int

const (
	outcomeReady outcome = iota
	outcomeNotFound
	outcomeRateLimited
	outcomeForbidden
	outcomeTransient
)

// Acquire fetches the URL, retrying per the backoff policy: 2xx returns
// immediately, 404 fails immediately, 429 backs off exponentially, 403
// rotates the user agent and cools down, anything else backs off linearly
// until attempts are exhausted.
func (f *Fetcher) Acquire(ctx context.Context, req scrape.Request) (scrape.Page, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = f.cfg.RequestTimeout
	}

	for attempt := 0; ; attempt++ {
		f.courtesy(ctx, req.URL)
		if err := ctx.Err(); err != nil {
			return scrape.Page{}, fmt.Errorf("%s: %w", req.URL, scrape.ErrTimeout)
		}

		page, status, err := f.fetchOnce(req.URL, timeout)
		last := attempt+1 >= f.cfg.MaxRetries

		switch classify(status, err) {
		case outcomeReady:
			return page, nil

		case outcomeNotFound:
			return scrape.Page{}, fmt.Errorf("%s: %w", req.URL, scrape.ErrNotFound)

		case outcomeRateLimited:
			scrape.TotalRateLimitHits.Inc()
			if last {
				return scrape.Page{}, fmt.Errorf("%s: rate limited after %d attempts: %w", req.URL, f.cfg.MaxRetries, scrape.ErrTransport)
			}
			scrape.TotalRetries.Inc()
			f.pauser.Pause(ctx, f.cfg.BaseDelay<<attempt)

		case outcomeForbidden:
			scrape.TotalForbiddenHits.Inc()
			if last {
				return scrape.Page{}, fmt.Errorf("%s: forbidden after %d attempts: %w", req.URL, f.cfg.MaxRetries, scrape.ErrBlocked)
			}
			f.rotateAgent()
			scrape.TotalRetries.Inc()
			f.pauser.Pause(ctx, f.cfg.ForbiddenCooldown)

		default:
			if last {
				if isTimeout(err) {
					return scrape.Page{}, fmt.Errorf("%s: %v: %w", req.URL, err, scrape.ErrTimeout)
				}
				return scrape.Page{}, fmt.Errorf("%s: %d attempts exhausted (last: %v, status %d): %w", req.URL, f.cfg.MaxRetries, err, status, scrape.ErrTransport)
			}
			f.logger.Debug("transient fetch failure",
				zap.String("url", req.URL),
				zap.Int("status", status),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			scrape.TotalRetries.Inc()
			f.pauser.Pause(ctx, f.cfg.BaseDelay*time.Duration(attempt+1))
		}
	}
}

func (f *Fetcher) fetchOnce(rawURL string, timeout time.Duration) (scrape.Page, int, error) {
	collector := f.newCollector(timeout)

	var (
		page     scrape.Page
		status   int
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		page = scrape.Page{
			Content:  string(r.Body),
			FinalURL: r.Request.URL.String(),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	if err := collector.Visit(rawURL); err != nil {
		return scrape.Page{}, status, err
	}
	collector.Wait()

	if fetchErr != nil {
		return scrape.Page{}, status, fetchErr
	}
	if page.FinalURL == "" && status == 0 {
		return scrape.Page{}, 0, errors.New("fetch produced no result")
	}
	return page, status, nil
}

func (f *Fetcher) newCollector(timeout time.Duration) *colly.Collector {
	c := colly.NewCollector(
		colly.Async(false),
		colly.UserAgent(f.currentAgent()),
	)
	c.AllowURLRevisit = true
	c.IgnoreRobotsTxt = true
	c.WithTransport(f.transport)
	c.SetRequestTimeout(timeout)
	maxRedirects := f.cfg.MaxRedirects
	c.SetRedirectHandler(func(_ *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	})
	return c
}

func classify(status int, err error) outcome {
	switch status {
	case http.StatusNotFound:
		return outcomeNotFound
	case http.StatusTooManyRequests:
		return outcomeRateLimited
	case http.StatusForbidden:
		return outcomeForbidden
	}
	if err == nil && status >= 200 && status < 300 {
		return outcomeReady
	}
	return outcomeTransient
}

// courtesy applies the anti-burst delay and the per-host limiter.
func (f *Fetcher) courtesy(ctx context.Context, rawURL string) {
	if f.cfg.CourtesyDelay > 0 {
		f.pauser.Pause(ctx, f.cfg.CourtesyDelay+randomJitter(f.cfg.CourtesyDelay/2))
	}
	_ = f.limiter.Wait(ctx, rawURL)
}

func (f *Fetcher) currentAgent() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg.UserAgents[f.uaIndex%len(f.cfg.UserAgents)]
}

func (f *Fetcher) rotateAgent() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uaIndex = (f.uaIndex + 1) % len(f.cfg.UserAgents)
	f.logger.Debug("rotated user agent", zap.Int("index", f.uaIndex))
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	bound := big.NewInt(int64(limit))
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
