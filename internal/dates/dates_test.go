package dates

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "iso", raw: "2024-03-15"},
		{name: "long form", raw: "March 15, 2024"},
		{name: "short month", raw: "Mar 15, 2024"},
		{name: "rfc3339 keeps date only", raw: "2024-03-15T18:30:00Z"},
		{name: "surrounding whitespace", raw: "  2024-03-15  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(want) {
				t.Fatalf("expected %v got %v", want, got)
			}
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "not a date", "review of the year"} {
		if _, err := Parse(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
