package scrape

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewDateWindowValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewDateWindow(day(2024, 3, 1), day(2024, 1, 1)); err == nil {
		t.Fatal("expected error when start is after end")
	}
	if _, err := NewDateWindow(time.Time{}, day(2024, 1, 1)); err == nil {
		t.Fatal("expected error for zero start")
	}
	if _, err := NewDateWindow(day(2024, 1, 1), day(2024, 1, 1)); err != nil {
		t.Fatalf("single-day window should be valid: %v", err)
	}
}

func TestDateWindowMembership(t *testing.T) {
	t.Parallel()

	w, err := NewDateWindow(day(2024, 1, 1), day(2024, 3, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name       string
		t          time.Time
		contains   bool
		beforeMark bool
	}{
		{name: "start boundary", t: day(2024, 1, 1), contains: true},
		{name: "end boundary", t: day(2024, 3, 31), contains: true},
		{name: "inside with time of day", t: time.Date(2024, 2, 15, 23, 30, 0, 0, time.UTC), contains: true},
		{name: "before start", t: day(2023, 12, 31), beforeMark: true},
		{name: "after end", t: day(2024, 4, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Contains(tt.t); got != tt.contains {
				t.Fatalf("Contains(%v) = %v, want %v", tt.t, got, tt.contains)
			}
			if got := w.BeforeStart(tt.t); got != tt.beforeMark {
				t.Fatalf("BeforeStart(%v) = %v, want %v", tt.t, got, tt.beforeMark)
			}
		})
	}
}
