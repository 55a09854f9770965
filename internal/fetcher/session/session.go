// Package session implements scrape.Acquirer on top of a semi-persistent
// browser session driven over the Chrome DevTools protocol. One manager owns
// one browser connection and one tab, reused for every navigation of a
// scraping run; the browser itself is deliberately left running across and
// beyond the run so anti-bot trust state survives.
package session

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/arnadev/SaaS-review-Scraper/internal/scrape"
)

// Config controls session bootstrap and acquisition behavior.
type Config struct {
	// DebugURL is the well-known local DevTools endpoint tried first.
	DebugURL string
	// Executables overrides the platform search list for launching a browser
	// when no endpoint is reachable.
	Executables []string
	// UserDataDir is the persistent profile directory passed at launch so
	// cookies and fingerprint state survive across runs.
	UserDataDir string
	// AttachRetries and AttachDelay bound the re-attach loop after a launch.
	AttachRetries int
	AttachDelay   time.Duration
	// NavTimeout bounds a single navigation.
	NavTimeout time.Duration
	// SettleDelay is the post-navigation pause before the first challenge
	// check.
	SettleDelay time.Duration
	// ChallengeBudget bounds the ready-wait when a challenge is interposed.
	ChallengeBudget time.Duration
	// PollInterval is the tick between challenge re-checks.
	PollInterval time.Duration
}

func (c *Config) applyDefaults() {
	if c.DebugURL == "" {
		c.DebugURL = "http://127.0.0.1:9222"
	}
	if len(c.Executables) == 0 {
		c.Executables = defaultExecutables()
	}
	if c.UserDataDir == "" {
		c.UserDataDir = ".reviewscraper-profile"
	}
	if c.AttachRetries <= 0 {
		c.AttachRetries = 5
	}
	if c.AttachDelay <= 0 {
		c.AttachDelay = 2 * time.Second
	}
	if c.NavTimeout <= 0 {
		c.NavTimeout = 45 * time.Second
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 2 * time.Second
	}
	if c.ChallengeBudget <= 0 {
		c.ChallengeBudget = 60 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = scrape.DefaultPollInterval
	}
}

func defaultExecutables() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	case "windows":
		return []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		}
	default:
		return []string{
			"google-chrome",
			"google-chrome-stable",
			"chromium",
			"chromium-browser",
		}
	}
}

// attachFunc connects to a running browser and returns a ready tab context.
type attachFunc func(ctx context.Context) (context.Context, context.CancelFunc, error)

// Manager owns one browser session for one source scraper. It is created
// lazily on first acquisition and never torn down by this subsystem.
type Manager struct {
	cfg      Config
	logger   *zap.Logger
	detector *scrape.ChallengeDetector
	waiter   *scrape.ReadyWaiter
	pauser   scrape.Pauser

	attach attachFunc
	launch func() error

	mu        sync.Mutex
	tabCtx    context.Context
	tabCancel context.CancelFunc
}

// New constructs a Manager. The session itself is not created until Ensure
// or the first Acquire.
func New(cfg Config, detector *scrape.ChallengeDetector, clock scrape.Clock, pauser scrape.Pauser, logger *zap.Logger) *Manager {
	cfg.applyDefaults()
	if pauser == nil {
		pauser = scrape.TimerPauser{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		cfg:      cfg,
		logger:   logger,
		detector: detector,
		waiter:   scrape.NewReadyWaiter(detector, clock, pauser, cfg.PollInterval, logger),
		pauser:   pauser,
	}
	m.attach = m.attachOnce
	m.launch = m.launchBrowser
	return m
}

// Ensure makes the session usable, idempotently: an existing live tab is
// returned unchanged. Acquisition order: attach to an already-running browser
// on the debug endpoint; on failure launch one with the persistent profile
// and re-attach with bounded retries.
func (m *Manager) Ensure(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureLocked(ctx)
}

func (m *Manager) ensureLocked(ctx context.Context) error {
	if m.tabCtx != nil && m.tabCtx.Err() == nil {
		return nil
	}

	if tab, cancel, err := m.attach(ctx); err == nil {
		m.logger.Info("attached to running browser", zap.String("endpoint", m.cfg.DebugURL))
		m.tabCtx, m.tabCancel = tab, cancel
		return nil
	} else {
		m.logger.Debug("no browser reachable, launching one", zap.Error(err))
	}

	if err := m.launch(); err != nil {
		return fmt.Errorf("no browser reachable at %s and none could be launched (%v); start one manually with --remote-debugging-port: %w",
			m.cfg.DebugURL, err, scrape.ErrSessionUnavailable)
	}

	var lastErr error
	for i := 0; i < m.cfg.AttachRetries; i++ {
		m.pauser.Pause(ctx, m.cfg.AttachDelay)
		tab, cancel, err := m.attach(ctx)
		if err == nil {
			m.logger.Info("attached to launched browser", zap.String("endpoint", m.cfg.DebugURL))
			m.tabCtx, m.tabCancel = tab, cancel
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("browser launched but %s never became reachable (%v): %w",
		m.cfg.DebugURL, lastErr, scrape.ErrSessionUnavailable)
}

// Reconnect drops the current tab and re-runs the acquisition order. The
// browser process is left alone.
func (m *Manager) Reconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tabCancel != nil {
		m.tabCancel()
	}
	m.tabCtx, m.tabCancel = nil, nil
	return m.ensureLocked(ctx)
}

// Close drops the DevTools connection. The browser process stays up so its
// trust state carries into the next run.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tabCancel != nil {
		m.tabCancel()
	}
	m.tabCtx, m.tabCancel = nil, nil
}

// Tab returns the session's single reused tab context, nil before Ensure.
func (m *Manager) Tab() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tabCtx
}

func (m *Manager) attachOnce(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), m.cfg.DebugURL)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	cancelAll := func() {
		tabCancel()
		allocCancel()
	}

	probeCtx, probeCancel := context.WithTimeout(tabCtx, 5*time.Second)
	defer probeCancel()
	if err := chromedp.Run(probeCtx); err != nil {
		cancelAll()
		return nil, nil, fmt.Errorf("attach %s: %w", m.cfg.DebugURL, err)
	}
	return tabCtx, cancelAll, nil
}

func (m *Manager) launchBrowser() error {
	port := debugPort(m.cfg.DebugURL)
	args := []string{
		"--remote-debugging-port=" + port,
		"--user-data-dir=" + m.cfg.UserDataDir,
		"--no-first-run",
		"--no-default-browser-check",
		"about:blank",
	}

	var lastErr error
	for _, candidate := range m.cfg.Executables {
		bin, err := exec.LookPath(candidate)
		if err != nil {
			lastErr = err
			continue
		}
		cmd := exec.Command(bin, args...)
		if err := cmd.Start(); err != nil {
			lastErr = err
			continue
		}
		// The process is deliberately not awaited or killed: the browser
		// outlives the run to preserve anti-bot trust state.
		if err := cmd.Process.Release(); err != nil {
			m.logger.Warn("failed to release browser process handle", zap.Error(err))
		}
		m.logger.Info("launched browser",
			zap.String("executable", bin),
			zap.String("user_data_dir", m.cfg.UserDataDir),
			zap.String("debug_port", port),
		)
		return nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no browser executable configured")
	}
	return lastErr
}

func debugPort(debugURL string) string {
	if u, err := url.Parse(debugURL); err == nil {
		if p := u.Port(); p != "" {
			return p
		}
	}
	return "9222"
}
