// Package ics turns a validated weekly timetable plus an academic calendar
// into an iCalendar document: escaping, event encoding, the week-parity
// compiler, and a read-back verification helper.
package ics

import "strings"

// Escape applies RFC 5545 text escaping to a property value. Backslash is
// escaped first so the escape sequences inserted for the remaining
// characters are not themselves re-escaped.
func Escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	return s
}

// Unescape is the inverse of Escape. Unknown escape sequences are kept
// verbatim.
func Unescape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		case '\\', ';', ',':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
