// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures every configuration knob that influences a scrape run.
// All values originate from Viper so the scraper can be configured via files,
// env vars, or CLI flags.
type Config struct {
	// Direct HTTP backend.
	UserAgents        []string
	MaxRetries        int
	BaseDelay         time.Duration
	ForbiddenCooldown time.Duration
	CourtesyDelay     time.Duration
	RequestTimeout    time.Duration
	MaxRedirects      int
	HostQPS           float64

	// Browser session backend.
	BrowserDebugURL    string
	BrowserExecutables []string
	BrowserUserDataDir string
	AttachRetries      int
	AttachDelay        time.Duration
	NavTimeout         time.Duration
	SettleDelay        time.Duration
	ChallengeBudget    time.Duration
	PollInterval       time.Duration

	// Challenge detector overrides; empty uses the built-in sets.
	ChallengeSelectors []string
	ChallengePhrases   []string

	// Pagination.
	InterPageDelay time.Duration

	// Optional integrations.
	DatabaseDSN string
	MetricsAddr string

	Development bool
}

// InitDefaults registers defaults, environment bindings, and config file
// search paths on the global Viper. Designed to be called once at startup.
func InitDefaults() {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.reviewscraper")

	viper.SetDefault("http.max_retries", 3)
	viper.SetDefault("http.base_delay", "500ms")
	viper.SetDefault("http.forbidden_cooldown", "10s")
	viper.SetDefault("http.courtesy_delay", "500ms")
	viper.SetDefault("http.request_timeout", "15s")
	viper.SetDefault("http.max_redirects", 5)
	viper.SetDefault("http.host_qps", 1.0)
	viper.SetDefault("http.user_agents", []string{})

	viper.SetDefault("browser.debug_url", "http://127.0.0.1:9222")
	viper.SetDefault("browser.executables", []string{})
	viper.SetDefault("browser.user_data_dir", ".reviewscraper-profile")
	viper.SetDefault("browser.attach_retries", 5)
	viper.SetDefault("browser.attach_delay", "2s")
	viper.SetDefault("browser.nav_timeout", "45s")
	viper.SetDefault("browser.settle_delay", "2s")
	viper.SetDefault("browser.challenge_budget", "60s")
	viper.SetDefault("browser.poll_interval", "2s")

	viper.SetDefault("detector.selectors", []string{})
	viper.SetDefault("detector.phrases", []string{})

	viper.SetDefault("scrape.inter_page_delay", "1s")

	viper.SetDefault("database.dsn", "")
	viper.SetDefault("metrics.addr", "")
	viper.SetDefault("logging.development", true)

	viper.SetEnvPrefix("REVIEWSCRAPER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

// Load constructs a Config by reading from Viper.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		UserAgents:        v.GetStringSlice("http.user_agents"),
		MaxRetries:        v.GetInt("http.max_retries"),
		BaseDelay:         v.GetDuration("http.base_delay"),
		ForbiddenCooldown: v.GetDuration("http.forbidden_cooldown"),
		CourtesyDelay:     v.GetDuration("http.courtesy_delay"),
		RequestTimeout:    v.GetDuration("http.request_timeout"),
		MaxRedirects:      v.GetInt("http.max_redirects"),
		HostQPS:           v.GetFloat64("http.host_qps"),

		BrowserDebugURL:    v.GetString("browser.debug_url"),
		BrowserExecutables: v.GetStringSlice("browser.executables"),
		BrowserUserDataDir: v.GetString("browser.user_data_dir"),
		AttachRetries:      v.GetInt("browser.attach_retries"),
		AttachDelay:        v.GetDuration("browser.attach_delay"),
		NavTimeout:         v.GetDuration("browser.nav_timeout"),
		SettleDelay:        v.GetDuration("browser.settle_delay"),
		ChallengeBudget:    v.GetDuration("browser.challenge_budget"),
		PollInterval:       v.GetDuration("browser.poll_interval"),

		ChallengeSelectors: v.GetStringSlice("detector.selectors"),
		ChallengePhrases:   v.GetStringSlice("detector.phrases"),

		InterPageDelay: v.GetDuration("scrape.inter_page_delay"),

		DatabaseDSN: v.GetString("database.dsn"),
		MetricsAddr: v.GetString("metrics.addr"),
		Development: v.GetBool("logging.development"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.MaxRetries <= 0 {
		return fmt.Errorf("http.max_retries must be > 0")
	}
	if c.BaseDelay < 0 {
		return fmt.Errorf("http.base_delay must be >= 0")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("http.request_timeout must be > 0")
	}
	if c.HostQPS < 0 {
		return fmt.Errorf("http.host_qps must be >= 0")
	}
	if c.BrowserDebugURL == "" {
		return fmt.Errorf("browser.debug_url must be set")
	}
	if c.NavTimeout <= 0 {
		return fmt.Errorf("browser.nav_timeout must be > 0")
	}
	if c.ChallengeBudget <= 0 {
		return fmt.Errorf("browser.challenge_budget must be > 0")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("browser.poll_interval must be > 0")
	}
	if c.InterPageDelay < 0 {
		return fmt.Errorf("scrape.inter_page_delay must be >= 0")
	}
	return nil
}
