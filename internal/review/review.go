// Package review defines the domain records emitted by a scrape run.
package review

import (
	"sort"
	"time"
)

// Review is a single user-submitted product review extracted from a listing
// page. Date is nil when the raw date string could not be parsed.
type Review struct {
	Source  string     `json:"source"`
	Title   string     `json:"title,omitempty"`
	Body    string     `json:"body,omitempty"`
	Author  string     `json:"author,omitempty"`
	Rating  float64    `json:"rating,omitempty"`
	RawDate string     `json:"raw_date,omitempty"`
	Date    *time.Time `json:"date,omitempty"`
}

// SortNewestFirst orders reviews by parsed date descending. Reviews without a
// parsed date sort after every dated review; the sort is stable so their
// relative order is preserved.
func SortNewestFirst(reviews []Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		a, b := reviews[i].Date, reviews[j].Date
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
