package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultChallengeSelectors are structural markers of known challenge widgets.
var DefaultChallengeSelectors = []string{
	"#challenge-form",
	"#challenge-stage",
	"#challenge-running",
	"div.cf-browser-verification",
	"iframe[src*='challenges.cloudflare.com']",
	"iframe[src*='challenge']",
	"#px-captcha",
	"div.g-recaptcha",
	"div.h-captcha",
}

// DefaultChallengePhrases are textual signals of an interposed verification
// page, matched case-insensitively as substrings.
var DefaultChallengePhrases = []string{
	"verify you are human",
	"checking your browser",
	"just a moment",
	"please complete the security check",
	"enable javascript and cookies to continue",
	"access to this page has been denied",
	"pardon our interruption",
}

// ChallengeDetector decides whether an anti-bot challenge is currently
// blocking a document. Two independent signals, either sufficient: a fixed
// set of structural markers, and a fixed set of challenge phrasings.
type ChallengeDetector struct {
	selectors []string
	phrases   []string
}

// NewChallengeDetector constructs a detector. Empty slices fall back to the
// package defaults.
func NewChallengeDetector(selectors, phrases []string) *ChallengeDetector {
	if len(selectors) == 0 {
		selectors = DefaultChallengeSelectors
	}
	normalized := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			normalized = append(normalized, p)
		}
	}
	if len(normalized) == 0 {
		for _, p := range DefaultChallengePhrases {
			normalized = append(normalized, strings.ToLower(p))
		}
	}
	return &ChallengeDetector{selectors: selectors, phrases: normalized}
}

// Blocked inspects the rendered document. Detector failures are treated as
// "not blocked" (fail open): a broken detector must not itself halt
// acquisition.
func (d *ChallengeDetector) Blocked(html string) bool {
	if d == nil || html == "" {
		return false
	}
	if d.containsPhrase(html) {
		return true
	}
	return d.matchesSelector(html)
}

func (d *ChallengeDetector) containsPhrase(html string) bool {
	lower := strings.ToLower(html)
	for _, p := range d.phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func (d *ChallengeDetector) matchesSelector(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	for _, sel := range d.selectors {
		if sel == "" {
			continue
		}
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}
