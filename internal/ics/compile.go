package ics

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	appLog "ttcal/internal/log"
	"ttcal/internal/model"
	"ttcal/internal/term"
	"ttcal/internal/timetable"
)

// Compiler expands a two-week timetable into a dated calendar document
// across one academic year. All state (week parity, output buffer) is local
// to a single Compile call, so one Compiler may serve concurrent
// invocations for independent timetables.
type Compiler struct {
	cal  term.Calendar
	loc  *time.Location
	tzid string
	name string
}

// NewCompiler validates the academic calendar and resolves the IANA zone
// used for DTSTART/DTEND. name is the calendar display name used in PRODID.
func NewCompiler(cal term.Calendar, timezone, name string) (*Compiler, error) {
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("ics: unknown timezone %q: %w", timezone, err)
	}
	if name == "" {
		name = "School Timetable"
	}
	return &Compiler{cal: cal, loc: loc, tzid: timezone, name: name}, nil
}

// Compile walks every date from the anchor to the end date in ascending
// order, flipping week parity on teaching-day Mondays after the anchor,
// and emits one event block per surviving merged lesson. The timetable is
// assumed pre-validated; generatedAt becomes the DTSTAMP of every block.
func (c *Compiler) Compile(tt model.Timetable, generatedAt time.Time) (string, error) {
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: c.cal.Anchor,
		Until:   c.cal.End,
	})
	if err != nil {
		return "", fmt.Errorf("ics: build date rule: %w", err)
	}

	var b strings.Builder
	for _, line := range []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"PRODID:-//" + Escape(c.name) + "//ttcal//EN",
	} {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	week := model.WeekA
	eventCount := 0

	for _, d := range rule.All() {
		d = term.Midnight(d)
		teaching := c.cal.IsTeachingDay(d)

		// Parity flips at the start of a Monday, but only for teaching
		// Mondays strictly after the anchor.
		if d.Weekday() == time.Monday && !d.Equal(c.cal.Anchor) && teaching {
			if week == model.WeekA {
				week = model.WeekB
			} else {
				week = model.WeekA
			}
		}

		if !teaching {
			continue
		}

		entries := tt[week][model.DayName(d)]
		if len(entries) == 0 {
			continue
		}

		for _, entry := range timetable.MergeDoubles(entries) {
			if ShouldSkip(entry) {
				continue
			}
			ev, err := BuildEvent(entry, d, c.loc)
			if err != nil {
				// Pre-validated input should never reach here; skip the
				// entry rather than abort the whole document.
				appLog.Warn("skipping entry with unparsable time",
					"date", d.Format(dateLayout), "period", entry.Period, "lesson", entry.Lesson)
				continue
			}
			renderEvent(&b, ev, c.tzid, generatedAt)
			eventCount++
		}
	}

	b.WriteString("END:VCALENDAR\n")

	appLog.Info("calendar compiled",
		"events", eventCount,
		"anchor", c.cal.Anchor.Format(dateLayout),
		"end", c.cal.End.Format(dateLayout),
		"timezone", c.tzid,
	)
	return b.String(), nil
}
