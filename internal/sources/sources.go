// Package sources defines the per-site listing and extraction logic for each
// supported review site. Sites are selected by a tagged Kind, not by
// subclassing; extraction is a pure function per site.
package sources

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/arnadev/SaaS-review-Scraper/internal/scrape"
)

// Kind tags a supported review site.
type Kind string

// Supported review sites.
const (
	KindG2         Kind = "g2"
	KindCapterra   Kind = "capterra"
	KindTrustPilot Kind = "trustpilot"
)

// AllKinds returns every supported site in scrape order.
func AllKinds() []Kind {
	return []Kind{KindG2, KindCapterra, KindTrustPilot}
}

// ParseKind maps a CLI source value to a Kind.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindG2:
		return KindG2, nil
	case KindCapterra:
		return KindCapterra, nil
	case KindTrustPilot:
		return KindTrustPilot, nil
	default:
		return "", fmt.Errorf("unknown source %q (want g2, capterra, trustpilot or all)", raw)
	}
}

// Source bundles everything the pagination controller needs to walk one
// site's listing for one company.
type Source struct {
	Kind Kind
	// NeedsBrowser selects the session backend over plain HTTP.
	NeedsBrowser bool
	// EmptyPageThreshold reflects the backend's per-page cost: browser-backed
	// sources give up after a single empty page.
	EmptyPageThreshold int
	// PageURL renders the listing URL for a 1-based page number.
	PageURL scrape.PageURLFunc
	// ExpectLocation is the substring the final location must contain before
	// a challenged page counts as ready.
	ExpectLocation string
	// Extract locates review records inside a ready listing document.
	Extract scrape.ExtractFunc
}

// ForCompany builds the Source for one site/company pair.
func ForCompany(kind Kind, company string) (Source, error) {
	slug := Slugify(company)
	if slug == "" {
		return Source{}, fmt.Errorf("company name %q produces an empty slug", company)
	}
	switch kind {
	case KindG2:
		return g2Source(slug), nil
	case KindCapterra:
		return capterraSource(slug), nil
	case KindTrustPilot:
		return trustpilotSource(slug), nil
	default:
		return Source{}, fmt.Errorf("unknown source kind %q", kind)
	}
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a company name into the URL slug the review sites use.
func Slugify(company string) string {
	s := strings.ToLower(strings.TrimSpace(company))
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
