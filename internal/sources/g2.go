package sources

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/arnadev/SaaS-review-Scraper/internal/dates"
	"github.com/arnadev/SaaS-review-Scraper/internal/review"
	"github.com/arnadev/SaaS-review-Scraper/internal/scrape"
)

func g2Source(slug string) Source {
	base := "https://www.g2.com/products/" + slug + "/reviews"
	return Source{
		Kind:               KindG2,
		NeedsBrowser:       true,
		EmptyPageThreshold: 1,
		ExpectLocation:     "/products/" + slug + "/reviews",
		PageURL: func(page int) string {
			if page <= 1 {
				return base
			}
			return fmt.Sprintf("%s?page=%d", base, page)
		},
		Extract: extractG2,
	}
}

func extractG2(p scrape.Page) scrape.Extraction {
	doc, err := parseDoc(p)
	if err != nil {
		return scrape.Extraction{}
	}
	items := collect(doc, `div[itemprop="review"]`, func(s *goquery.Selection) (review.Review, bool) {
		title := text(s, `[itemprop="name"]`)
		body := text(s, `[itemprop="reviewBody"]`)
		if title == "" && body == "" {
			return review.Review{}, false
		}
		raw := attrOr(s, `meta[itemprop="datePublished"]`, "content", text(s, "time"))
		r := review.Review{
			Source:  string(KindG2),
			Title:   title,
			Body:    body,
			Author:  text(s, `[itemprop="author"]`),
			Rating:  ratingFrom(attrOr(s, `meta[itemprop="ratingValue"]`, "content", "")),
			RawDate: raw,
		}
		if t, err := dates.Parse(raw); err == nil {
			r.Date = &t
		}
		return r, true
	})
	return scrape.Extraction{
		Items:   items,
		HasNext: hasNext(doc, `a[rel="next"]`, `li.pagination__named-action--next a`),
	}
}
