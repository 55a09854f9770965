package review

import (
	"testing"
	"time"
)

func TestSortNewestFirst(t *testing.T) {
	t.Parallel()

	day := func(d int) *time.Time {
		ts := time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
		return &ts
	}

	reviews := []Review{
		{Title: "old", Date: day(1)},
		{Title: "undated-a"},
		{Title: "new", Date: day(20)},
		{Title: "undated-b"},
		{Title: "mid", Date: day(10)},
	}
	SortNewestFirst(reviews)

	wantOrder := []string{"new", "mid", "old", "undated-a", "undated-b"}
	for i, want := range wantOrder {
		if reviews[i].Title != want {
			t.Fatalf("position %d: expected %q got %q", i, want, reviews[i].Title)
		}
	}
}
