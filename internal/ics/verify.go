package ics

import (
	"fmt"
	"strings"

	ical "github.com/arran4/golang-ical"
)

// Verify parses a compiled calendar document back and returns the number
// of event blocks it contains. It is a cheap self-check run after
// compilation: a document that the parser rejects is never published.
func Verify(doc string) (int, error) {
	cal, err := ical.ParseCalendar(strings.NewReader(doc))
	if err != nil {
		return 0, fmt.Errorf("ics: verify: %w", err)
	}
	return len(cal.Events()), nil
}
