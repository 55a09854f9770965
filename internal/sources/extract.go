package sources

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/arnadev/SaaS-review-Scraper/internal/review"
	"github.com/arnadev/SaaS-review-Scraper/internal/scrape"
)

func parseDoc(p scrape.Page) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(p.Content))
}

// collect walks every node matching itemSel and applies one. A failure while
// extracting a single item never aborts the page: it just produces no record
// for that item.
func collect(doc *goquery.Document, itemSel string, one func(s *goquery.Selection) (review.Review, bool)) []review.Review {
	var items []review.Review
	doc.Find(itemSel).Each(func(_ int, s *goquery.Selection) {
		defer func() {
			_ = recover()
		}()
		if r, ok := one(s); ok {
			items = append(items, r)
		}
	})
	return items
}

// hasNext reports whether any of the given selectors matches, i.e. the page
// links a further page.
func hasNext(doc *goquery.Document, selectors ...string) bool {
	for _, sel := range selectors {
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}

func text(s *goquery.Selection, selector string) string {
	return strings.TrimSpace(s.Find(selector).First().Text())
}

func attrOr(s *goquery.Selection, selector, attr, fallback string) string {
	if v, ok := s.Find(selector).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func ratingFrom(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	// Some sites render "4.5 out of 5"; keep the leading number.
	if i := strings.IndexByte(raw, ' '); i > 0 {
		raw = raw[:i]
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
