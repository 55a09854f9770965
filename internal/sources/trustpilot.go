package sources

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/arnadev/SaaS-review-Scraper/internal/dates"
	"github.com/arnadev/SaaS-review-Scraper/internal/review"
	"github.com/arnadev/SaaS-review-Scraper/internal/scrape"
)

func trustpilotSource(slug string) Source {
	base := "https://www.trustpilot.com/review/" + slug
	return Source{
		Kind:               KindTrustPilot,
		NeedsBrowser:       false,
		EmptyPageThreshold: scrape.DefaultEmptyPageThreshold,
		ExpectLocation:     "/review/" + slug,
		PageURL: func(page int) string {
			if page <= 1 {
				return base
			}
			return fmt.Sprintf("%s?page=%d", base, page)
		},
		Extract: extractTrustPilot,
	}
}

func extractTrustPilot(p scrape.Page) scrape.Extraction {
	doc, err := parseDoc(p)
	if err != nil {
		return scrape.Extraction{}
	}
	items := collect(doc, `article[data-service-review-card-paper]`, func(s *goquery.Selection) (review.Review, bool) {
		title := text(s, `h2[data-service-review-title-typography]`)
		body := text(s, `p[data-service-review-text-typography]`)
		if title == "" && body == "" {
			return review.Review{}, false
		}
		raw := attrOr(s, "time", "datetime", text(s, "time"))
		r := review.Review{
			Source:  string(KindTrustPilot),
			Title:   title,
			Body:    body,
			Author:  text(s, `span[data-consumer-name-typography]`),
			Rating:  ratingFrom(attrOr(s, `div[data-service-review-rating]`, "data-service-review-rating", "")),
			RawDate: raw,
		}
		if t, err := dates.Parse(raw); err == nil {
			r.Date = &t
		}
		return r, true
	})
	return scrape.Extraction{
		Items:   items,
		HasNext: hasNext(doc, `a[name="pagination-button-next"]`, `a[rel="next"]`),
	}
}
