// Package term models the academic calendar: term windows with nested
// half-term breaks, and the teaching-day predicate that gates event
// generation.
package term

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date returns the given civil date as midnight UTC. All calendar dates
// are normalized this way so equality and ordering are plain time
// comparisons.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Midnight truncates t to its civil date at midnight UTC.
func Midnight(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// Span is an inclusive date range.
type Span struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls within the span, inclusive on both ends.
func (s Span) Contains(d time.Time) bool {
	return !d.Before(s.Start) && !d.After(s.End)
}

// Window is one teaching term: an inclusive date range plus zero or more
// excluded break spans nested within it.
type Window struct {
	Span
	Breaks []Span
}

// Calendar is a full academic year: ordered term windows bounded by a
// global anchor and end date. The anchor is always a Monday belonging to
// Week A; it seeds the week-parity state machine in the compiler.
type Calendar struct {
	Anchor  time.Time
	End     time.Time
	Windows []Window
}

// Validate checks the calendar for configuration errors. Overlapping term
// windows are rejected here rather than resolved silently at query time.
func (c Calendar) Validate() error {
	if c.Anchor.IsZero() || c.End.IsZero() {
		return errors.New("term: anchor and end dates are required")
	}
	if c.Anchor.Weekday() != time.Monday {
		return fmt.Errorf("term: anchor %s must be a Monday", c.Anchor.Format(dateLayout))
	}
	if c.End.Before(c.Anchor) {
		return fmt.Errorf("term: end %s is before anchor %s",
			c.End.Format(dateLayout), c.Anchor.Format(dateLayout))
	}

	for i, w := range c.Windows {
		if w.End.Before(w.Start) {
			return fmt.Errorf("term: window %d ends %s before it starts %s",
				i, w.End.Format(dateLayout), w.Start.Format(dateLayout))
		}
		if i > 0 {
			prev := c.Windows[i-1]
			if !w.Start.After(prev.End) {
				return fmt.Errorf("term: window %d starting %s does not come after window %d ending %s (windows must be listed chronologically and must not overlap)",
					i, w.Start.Format(dateLayout), i-1, prev.End.Format(dateLayout))
			}
		}
		for j, b := range w.Breaks {
			if b.End.Before(b.Start) {
				return fmt.Errorf("term: window %d break %d ends %s before it starts %s",
					i, j, b.End.Format(dateLayout), b.Start.Format(dateLayout))
			}
			if !w.Contains(b.Start) || !w.Contains(b.End) {
				return fmt.Errorf("term: window %d break %d (%s..%s) is not nested within the window",
					i, j, b.Start.Format(dateLayout), b.End.Format(dateLayout))
			}
		}
	}
	return nil
}

// IsTeachingDay reports whether d is a teaching day: inside a term window
// and outside all of that window's break spans. Dates matching no window
// are not teaching days. Total over all dates.
func (c Calendar) IsTeachingDay(d time.Time) bool {
	d = Midnight(d)
	for _, w := range c.Windows {
		if !w.Contains(d) {
			continue
		}
		for _, b := range w.Breaks {
			if b.Contains(d) {
				return false
			}
		}
		return true
	}
	return false
}
