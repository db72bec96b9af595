package model

import "time"

// NotAvailable is the sentinel used for absent or blank timetable fields.
// Fields are never omitted; a missing value is always this string.
const NotAvailable = "N/A"

// Week keys of the two alternating timetable weeks.
const (
	WeekA = "Week A"
	WeekB = "Week B"
)

// DayNames lists the canonical weekday names in timetable order
// (Monday first).
var DayNames = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// IsCanonicalDay reports whether name is one of the seven canonical
// weekday names.
func IsCanonicalDay(name string) bool {
	for _, d := range DayNames {
		if d == name {
			return true
		}
	}
	return false
}

// DayName returns the canonical name for the weekday of t.
func DayName(t time.Time) string {
	return DayNames[(int(t.Weekday())+6)%7]
}

// Entry is one scheduled timetable item. Start and End are wall-clock
// "HH:MM" strings with no date attached; blank fields carry NotAvailable.
type Entry struct {
	Period  string `json:"period"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Lesson  string `json:"lesson"`
	Teacher string `json:"teacher"`
	Room    string `json:"room"`
}

// Week maps a canonical day name to that day's ordered lesson entries.
// Order is chronological only after sorting by start time.
type Week map[string][]Entry

// Timetable is the combined two-week schedule keyed by WeekA / WeekB.
type Timetable map[string]Week

// Event is one emitted calendar event. Events are immutable once built;
// the compiler never mutates an event after encoding.
type Event struct {
	UID      string
	Summary  string
	Location string

	// Start / End are absolute timestamps in the configured zone.
	Start time.Time
	End   time.Time
}
