package timetable

import (
	"regexp"
	"strings"

	"ttcal/internal/model"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// NormalizeTeacher repairs a raw teacher-name string as extracted from a
// PDF grid:
//
//   - carriage returns and newlines are unified to spaces
//   - runs of whitespace collapse to a single space
//   - a lone "on" token (case-insensitive) following a non-empty token is
//     joined onto the previous token without a separator, repairing
//     surnames the extractor split across a line break
//     ("MacMah" + "on" -> "MacMahon")
//
// The repair rules live here, isolated from merge and encode logic, so
// further extraction-artifact corrections can be added in one place.
func NormalizeTeacher(raw string) string {
	s := strings.ReplaceAll(raw, "\r", "\n")
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	s = whitespaceRE.ReplaceAllString(s, " ")
	if s == "" {
		return ""
	}

	tokens := strings.Split(s, " ")
	fixed := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if strings.EqualFold(tok, "on") && len(fixed) > 0 {
			fixed[len(fixed)-1] += "on"
			continue
		}
		fixed = append(fixed, tok)
	}
	return strings.TrimSpace(strings.Join(fixed, " "))
}

// NormalizeEntry trims every field of a raw lesson entry into canonical
// comparable form, applies the teacher-name repair, and replaces blank
// fields with the not-available sentinel.
func NormalizeEntry(e model.Entry) model.Entry {
	return model.Entry{
		Period:  orSentinel(strings.TrimSpace(e.Period)),
		Start:   orSentinel(strings.TrimSpace(e.Start)),
		End:     orSentinel(strings.TrimSpace(e.End)),
		Lesson:  orSentinel(strings.TrimSpace(e.Lesson)),
		Teacher: orSentinel(NormalizeTeacher(e.Teacher)),
		Room:    orSentinel(strings.TrimSpace(e.Room)),
	}
}

func orSentinel(s string) string {
	if s == "" {
		return model.NotAvailable
	}
	return s
}
