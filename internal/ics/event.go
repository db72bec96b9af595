package ics

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"ttcal/internal/model"
	"ttcal/internal/timetable"
)

const (
	// stampLayout is the iCalendar local date-time form used with TZID
	// parameters; DTSTAMP appends a Z and is always UTC.
	stampLayout = "20060102T150405"
	dateLayout  = "2006-01-02"

	// uidDomain suffixes every generated UID.
	uidDomain = "timetable"

	// skipMarker marks lessons that must not produce events
	// (case-insensitive substring match on the lesson name).
	skipMarker = "IGNORE"
)

// ShouldSkip reports whether a normalized entry is filtered out before
// encoding: a lesson name that is blank, the not-available sentinel, or
// contains the skip marker produces no event.
func ShouldSkip(e model.Entry) bool {
	name := strings.TrimSpace(e.Lesson)
	if name == "" || strings.EqualFold(name, model.NotAvailable) {
		return true
	}
	return strings.Contains(strings.ToUpper(name), skipMarker)
}

// BuildEvent combines a dated occurrence with an entry's wall-clock times
// in loc, producing an immutable event with a content-derived identifier.
func BuildEvent(e model.Entry, date time.Time, loc *time.Location) (model.Event, error) {
	startMin, ok := timetable.ClockMinutes(e.Start)
	if !ok {
		return model.Event{}, fmt.Errorf("ics: entry has unparsable start time %q", e.Start)
	}
	endMin, ok := timetable.ClockMinutes(e.End)
	if !ok {
		return model.Event{}, fmt.Errorf("ics: entry has unparsable end time %q", e.End)
	}

	return model.Event{
		UID:      eventUID(e, date),
		Summary:  e.Lesson + " (" + e.Teacher + ")",
		Location: e.Room,
		Start:    time.Date(date.Year(), date.Month(), date.Day(), startMin/60, startMin%60, 0, 0, loc),
		End:      time.Date(date.Year(), date.Month(), date.Day(), endMin/60, endMin%60, 0, 0, loc),
	}, nil
}

// eventUID derives a stable identifier from the event's content, so
// regenerating the same logical occurrence always yields the same UID.
func eventUID(e model.Entry, date time.Time) string {
	src := strings.Join([]string{e.Lesson, e.Teacher, e.Start, e.End, date.Format(dateLayout)}, "|")
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:16]) + "@" + uidDomain
}

// EncodeEvent renders one (entry, date) pair as a complete VEVENT block.
func EncodeEvent(e model.Entry, date time.Time, loc *time.Location, tzid string, generatedAt time.Time) (string, error) {
	ev, err := BuildEvent(e, date, loc)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	renderEvent(&b, ev, tzid, generatedAt)
	return b.String(), nil
}

// renderEvent writes one VEVENT block. Every block carries the same field
// set in the same order.
func renderEvent(b *strings.Builder, ev model.Event, tzid string, generatedAt time.Time) {
	lines := []string{
		"BEGIN:VEVENT",
		"UID:" + ev.UID,
		"SUMMARY:" + Escape(ev.Summary),
		"LOCATION:" + Escape(ev.Location),
		"DTSTART;TZID=" + tzid + ":" + ev.Start.Format(stampLayout),
		"DTEND;TZID=" + tzid + ":" + ev.End.Format(stampLayout),
		"DTSTAMP:" + generatedAt.UTC().Format(stampLayout) + "Z",
		"END:VEVENT",
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
}
