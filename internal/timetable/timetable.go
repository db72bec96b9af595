// Package timetable holds the weekly-schedule side of the compiler: JSON
// decoding, schema validation, lesson normalization and double-lesson
// merging. Everything here is pure; file and network I/O belong to the
// caller.
package timetable

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"ttcal/internal/model"
)

// clockRE is the strict HH:MM 24-hour pattern accepted for start/end times.
var clockRE = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// ClockMinutes parses a strict HH:MM time into minutes since midnight.
// The second return is false for anything that does not match the pattern.
func ClockMinutes(s string) (int, bool) {
	m := clockRE.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return h*60 + mm, true
}

// Decode unmarshals a timetable JSON document, validates its shape and
// converts it into the typed model. If validation finds any error-class
// issue the typed timetable is nil and the caller must not generate output;
// the returned issues always carry every violation found, not just the
// first.
func Decode(data []byte) (model.Timetable, Issues, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("timetable: decode: %w", err)
	}

	issues := Validate(raw)
	if issues.HasErrors() {
		return nil, issues, nil
	}
	return fromRaw(raw), issues, nil
}

// fromRaw converts a validated generic structure into the typed timetable.
// Non-canonical day keys are retained; the compiler simply never selects
// them.
func fromRaw(raw any) model.Timetable {
	top, ok := raw.(map[string]any)
	if !ok {
		return model.Timetable{}
	}

	tt := make(model.Timetable, 2)
	for _, weekKey := range []string{model.WeekA, model.WeekB} {
		weekRaw, ok := top[weekKey].(map[string]any)
		if !ok {
			continue
		}
		week := make(model.Week, len(weekRaw))
		for day, entriesRaw := range weekRaw {
			list, ok := entriesRaw.([]any)
			if !ok {
				continue
			}
			entries := make([]model.Entry, 0, len(list))
			for _, item := range list {
				rec, ok := item.(map[string]any)
				if !ok {
					continue
				}
				entries = append(entries, model.Entry{
					Period:  stringField(rec, "period"),
					Start:   stringField(rec, "start"),
					End:     stringField(rec, "end"),
					Lesson:  stringField(rec, "lesson"),
					Teacher: stringField(rec, "teacher"),
					Room:    stringField(rec, "room"),
				})
			}
			week[day] = entries
		}
		tt[weekKey] = week
	}
	return tt
}

func stringField(rec map[string]any, key string) string {
	s, _ := rec[key].(string)
	return s
}
