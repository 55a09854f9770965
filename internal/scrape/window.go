package scrape

import (
	"fmt"
	"time"
)

// DateWindow is the inclusive calendar-date range reviews must fall within.
// Both ends are resolved before any fetch begins; the zero value is invalid.
type DateWindow struct {
	start time.Time
	end   time.Time
}

// NewDateWindow validates and constructs a window. Both times are truncated
// to midnight UTC so membership is a pure date comparison.
func NewDateWindow(start, end time.Time) (DateWindow, error) {
	if start.IsZero() || end.IsZero() {
		return DateWindow{}, fmt.Errorf("date window requires both start and end")
	}
	s := truncateToDay(start)
	e := truncateToDay(end)
	if s.After(e) {
		return DateWindow{}, fmt.Errorf("date window start %s is after end %s",
			s.Format(time.DateOnly), e.Format(time.DateOnly))
	}
	return DateWindow{start: s, end: e}, nil
}

// Start returns the inclusive lower bound.
func (w DateWindow) Start() time.Time { return w.start }

// End returns the inclusive upper bound.
func (w DateWindow) End() time.Time { return w.end }

// Contains reports whether t falls within [start, end].
func (w DateWindow) Contains(t time.Time) bool {
	d := truncateToDay(t)
	return !d.Before(w.start) && !d.After(w.end)
}

// BeforeStart reports whether t falls strictly before the window start.
func (w DateWindow) BeforeStart(t time.Time) bool {
	return truncateToDay(t).Before(w.start)
}

func (w DateWindow) String() string {
	return fmt.Sprintf("%s..%s", w.start.Format(time.DateOnly), w.end.Format(time.DateOnly))
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
