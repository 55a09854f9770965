package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/arnadev/SaaS-review-Scraper/internal/clock/system"
	"github.com/arnadev/SaaS-review-Scraper/internal/config"
	"github.com/arnadev/SaaS-review-Scraper/internal/fetcher/direct"
	"github.com/arnadev/SaaS-review-Scraper/internal/fetcher/session"
	"github.com/arnadev/SaaS-review-Scraper/internal/logging"
	"github.com/arnadev/SaaS-review-Scraper/internal/metrics"
	"github.com/arnadev/SaaS-review-Scraper/internal/review"
	"github.com/arnadev/SaaS-review-Scraper/internal/run"
	"github.com/arnadev/SaaS-review-Scraper/internal/scrape"
	"github.com/arnadev/SaaS-review-Scraper/internal/sources"
	storepg "github.com/arnadev/SaaS-review-Scraper/internal/store/postgres"
)

const dateLayout = "2006-01-02"

type scrapeFlags struct {
	company  string
	start    string
	end      string
	source   string
	output   string
	delay    time.Duration
	maxPages int
}

// newScrapeCmd creates and configures the 'scrape' subcommand.
func newScrapeCmd() *cobra.Command {
	flags := &scrapeFlags{}
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape reviews for one company within a date window",
		Long: `Scrapes the configured review sites for a company and keeps only
reviews dated inside the inclusive start/end window. The command exits
non-zero when no reviews were found or a source aborted fatally.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrape(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.company, "company", "", "company name as listed on the review sites (required)")
	cmd.Flags().StringVar(&flags.start, "start", "", "window start date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&flags.end, "end", "", "window end date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&flags.source, "source", "all", "review site to scrape: g2, capterra, trustpilot, or all")
	cmd.Flags().StringVar(&flags.output, "output", "-", "output file path, or - for stdout")
	cmd.Flags().DurationVar(&flags.delay, "delay", 0, "override the courtesy delay between page fetches")
	cmd.Flags().IntVar(&flags.maxPages, "max-pages", -1, "cap pages fetched per source, negative for unbounded")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

// parseWindow validates the date flags before any network activity.
func parseWindow(startRaw, endRaw string, now time.Time) (scrape.DateWindow, error) {
	start, err := time.Parse(dateLayout, startRaw)
	if err != nil {
		return scrape.DateWindow{}, fmt.Errorf("invalid --start %q: want YYYY-MM-DD", startRaw)
	}
	end, err := time.Parse(dateLayout, endRaw)
	if err != nil {
		return scrape.DateWindow{}, fmt.Errorf("invalid --end %q: want YYYY-MM-DD", endRaw)
	}
	window, err := scrape.NewDateWindow(start, end)
	if err != nil {
		return scrape.DateWindow{}, err
	}
	if start.After(now) {
		return scrape.DateWindow{}, fmt.Errorf("--start %s is in the future", startRaw)
	}
	return window, nil
}

func parseKinds(raw string) ([]sources.Kind, error) {
	if raw == "" || raw == "all" {
		return sources.AllKinds(), nil
	}
	kind, err := sources.ParseKind(raw)
	if err != nil {
		return nil, err
	}
	return []sources.Kind{kind}, nil
}

// expectingAcquirer stamps the source's expected location onto every request
// so the session backend knows when a challenged page has really cleared.
type expectingAcquirer struct {
	inner          scrape.Acquirer
	expectLocation string
}

func (a expectingAcquirer) Acquire(ctx context.Context, req scrape.Request) (scrape.Page, error) {
	req.ExpectLocation = a.expectLocation
	return a.inner.Acquire(ctx, req)
}

func runScrape(parent context.Context, flags *scrapeFlags) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	clock := system.New()
	window, err := parseWindow(flags.start, flags.end, clock.Now())
	if err != nil {
		return err
	}
	kinds, err := parseKinds(flags.source)
	if err != nil {
		return err
	}
	if flags.delay > 0 {
		cfg.InterPageDelay = flags.delay
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsSrv *metrics.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = metrics.Start(cfg.MetricsAddr, logger.Named("metrics"))
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	var recorder run.Recorder
	if cfg.DatabaseDSN != "" {
		store, err := storepg.NewRunStore(ctx, storepg.RunStoreConfig{DSN: cfg.DatabaseDSN})
		if err != nil {
			logger.Warn("run history disabled", zap.Error(err))
		} else {
			defer store.Close()
			recorder = store
		}
	}

	pauser := scrape.TimerPauser{}
	detector := scrape.NewChallengeDetector(cfg.ChallengeSelectors, cfg.ChallengePhrases)

	httpFetcher := direct.New(direct.Config{
		UserAgents:        cfg.UserAgents,
		MaxRetries:        cfg.MaxRetries,
		BaseDelay:         cfg.BaseDelay,
		ForbiddenCooldown: cfg.ForbiddenCooldown,
		CourtesyDelay:     cfg.CourtesyDelay,
		RequestTimeout:    cfg.RequestTimeout,
		MaxRedirects:      cfg.MaxRedirects,
		HostQPS:           cfg.HostQPS,
	}, pauser, logger.Named("http"))

	// The browser session is shared across browser-backed sources and only
	// bootstrapped when the first one needs it.
	var browser *session.Manager
	browserFor := func() *session.Manager {
		if browser == nil {
			browser = session.New(session.Config{
				DebugURL:        cfg.BrowserDebugURL,
				Executables:     cfg.BrowserExecutables,
				UserDataDir:     cfg.BrowserUserDataDir,
				AttachRetries:   cfg.AttachRetries,
				AttachDelay:     cfg.AttachDelay,
				NavTimeout:      cfg.NavTimeout,
				SettleDelay:     cfg.SettleDelay,
				ChallengeBudget: cfg.ChallengeBudget,
				PollInterval:    cfg.PollInterval,
			}, detector, clock, pauser, logger.Named("browser"))
		}
		return browser
	}
	defer func() {
		if browser != nil {
			browser.Close()
		}
	}()

	scraper := func(ctx context.Context, src sources.Source) ([]review.Review, error) {
		var acquirer scrape.Acquirer = httpFetcher
		if src.NeedsBrowser {
			acquirer = browserFor()
		}
		if src.ExpectLocation != "" {
			acquirer = expectingAcquirer{inner: acquirer, expectLocation: src.ExpectLocation}
		}
		paginator := scrape.NewPaginator(acquirer, src.Extract, src.PageURL, scrape.PaginatorConfig{
			Window:             window,
			MaxPages:           flags.maxPages,
			EmptyPageThreshold: src.EmptyPageThreshold,
			Delay:              cfg.InterPageDelay,
		}, pauser, logger.Named(string(src.Kind)))
		return paginator.Run(ctx)
	}

	orch, err := run.New(run.Config{
		Company:  flags.company,
		Window:   window,
		Kinds:    kinds,
		Scraper:  scraper,
		Recorder: recorder,
		Clock:    clock,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	report, runErr := orch.Run(ctx)
	if writeErr := run.WriteReportFile(flags.output, report); writeErr != nil {
		return writeErr
	}
	if runErr != nil {
		if errors.Is(runErr, run.ErrNoReviews) {
			fmt.Fprintln(os.Stderr, "no reviews found in the requested window")
		}
		return runErr
	}
	logger.Info("scrape finished",
		zap.String("run_id", report.RunID),
		zap.Int("reviews", len(report.Reviews)))
	return nil
}
