package sources

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/arnadev/SaaS-review-Scraper/internal/dates"
	"github.com/arnadev/SaaS-review-Scraper/internal/review"
	"github.com/arnadev/SaaS-review-Scraper/internal/scrape"
)

func capterraSource(slug string) Source {
	base := "https://www.capterra.com/p/" + slug + "/reviews/"
	return Source{
		Kind:               KindCapterra,
		NeedsBrowser:       true,
		EmptyPageThreshold: 1,
		ExpectLocation:     "/p/" + slug + "/reviews",
		PageURL: func(page int) string {
			if page <= 1 {
				return base
			}
			return fmt.Sprintf("%s?page=%d", base, page)
		},
		Extract: extractCapterra,
	}
}

func extractCapterra(p scrape.Page) scrape.Extraction {
	doc, err := parseDoc(p)
	if err != nil {
		return scrape.Extraction{}
	}
	items := collect(doc, `div[data-testid="review-card"]`, func(s *goquery.Selection) (review.Review, bool) {
		title := text(s, `h3[data-testid="review-title"]`)
		body := text(s, `p[data-testid="review-text"]`)
		if title == "" && body == "" {
			return review.Review{}, false
		}
		raw := attrOr(s, "time", "datetime", text(s, `span[data-testid="review-written-on"]`))
		r := review.Review{
			Source:  string(KindCapterra),
			Title:   title,
			Body:    body,
			Author:  text(s, `span[data-testid="reviewer-name"]`),
			Rating:  ratingFrom(text(s, `span[data-testid="rating-value"]`)),
			RawDate: raw,
		}
		if t, err := dates.Parse(raw); err == nil {
			r.Date = &t
		}
		return r, true
	})
	return scrape.Extraction{
		Items:   items,
		HasNext: hasNext(doc, `a[rel="next"]`, `a[data-testid="next-page"]`),
	}
}
