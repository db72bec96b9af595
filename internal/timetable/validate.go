package timetable

import (
	"fmt"
	"sort"

	"ttcal/internal/model"
)

// Severity classifies a validation issue. Error-class issues block
// generation entirely; warning-class issues are reported but the caller
// may proceed with the otherwise-valid days.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Issue is a single validation finding with the location it refers to,
// e.g. context "Week A/Monday[2]".
type Issue struct {
	Severity Severity
	Context  string
	Message  string
}

func (i Issue) String() string {
	if i.Context == "" {
		return i.Message
	}
	return i.Context + ": " + i.Message
}

// Issues is the full set of findings for one timetable.
type Issues []Issue

// HasErrors reports whether any error-class issue is present.
func (is Issues) HasErrors() bool {
	for _, i := range is {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// requiredFields lists the six fields every lesson record must carry,
// in reporting order.
var requiredFields = []string{"period", "start", "end", "lesson", "teacher", "room"}

// Validate checks a decoded timetable structure against the expected shape:
//
//	{ "Week A": { "Monday": [ { period, start, end, lesson, teacher, room }, ... ], ... },
//	  "Week B": { ... } }
//
// All violations are collected; nothing short-circuits. Unrecognized day
// names are warning-class, everything else is error-class.
func Validate(raw any) Issues {
	var issues Issues

	errf := func(ctx, format string, args ...any) {
		issues = append(issues, Issue{Severity: SeverityError, Context: ctx, Message: fmt.Sprintf(format, args...)})
	}
	warnf := func(ctx, format string, args ...any) {
		issues = append(issues, Issue{Severity: SeverityWarning, Context: ctx, Message: fmt.Sprintf(format, args...)})
	}

	top, ok := raw.(map[string]any)
	if !ok {
		errf("", "top-level document must be an object")
		return issues
	}

	for _, weekKey := range []string{model.WeekA, model.WeekB} {
		weekRaw, present := top[weekKey]
		if !present {
			errf("", "missing top-level key: %s", weekKey)
			continue
		}
		week, ok := weekRaw.(map[string]any)
		if !ok {
			errf(weekKey, "must be an object mapping day to entry list")
			continue
		}

		// Sort day keys so repeated runs report in a stable order.
		days := make([]string, 0, len(week))
		for day := range week {
			days = append(days, day)
		}
		sort.Strings(days)

		for _, day := range days {
			dayCtx := weekKey + "/" + day
			if !model.IsCanonicalDay(day) {
				warnf(weekKey, "unexpected day name: %q", day)
			}
			entries, ok := week[day].([]any)
			if !ok {
				errf(dayCtx, "must be a list of lesson records")
				continue
			}
			for idx, item := range entries {
				validateRecord(fmt.Sprintf("%s[%d]", dayCtx, idx), item, errf)
			}
		}
	}

	return issues
}

func validateRecord(ctx string, item any, errf func(ctx, format string, args ...any)) {
	rec, ok := item.(map[string]any)
	if !ok {
		errf(ctx, "is not an object")
		return
	}

	for _, field := range requiredFields {
		v, present := rec[field]
		if !present {
			errf(ctx, "missing required field %q", field)
			continue
		}
		if _, ok := v.(string); !ok {
			errf(ctx, "field %q must be a string", field)
		}
	}

	start, hasStart := rec["start"].(string)
	end, hasEnd := rec["end"].(string)

	startMin, startOK := ClockMinutes(start)
	endMin, endOK := ClockMinutes(end)

	if hasStart && !startOK {
		errf(ctx, "has invalid start time: %q", start)
	}
	if hasEnd && !endOK {
		errf(ctx, "has invalid end time: %q", end)
	}
	if startOK && endOK && endMin <= startMin {
		errf(ctx, "end time %s is not after start time %s", end, start)
	}
}
