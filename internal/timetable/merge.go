package timetable

import (
	"regexp"
	"sort"
	"strings"

	"ttcal/internal/model"
)

// periodRE matches "Period N" labels, and nothing else. Only these are
// eligible for double-lesson merging; lunches, registration and other
// non-numbered slots never merge, even with an identical neighbour.
var periodRE = regexp.MustCompile(`(?i)^Period\s+\d+$`)

// IsNumberedPeriod reports whether the period label names an ordinal
// teaching period.
func IsNumberedPeriod(label string) bool {
	return periodRE.MatchString(strings.TrimSpace(label))
}

// MergeDoubles normalizes one day's lesson entries, sorts them by start
// time (entries with an unparsable start sort as midnight) and collapses
// back-to-back identical lessons into single double-period entries.
//
// Two consecutive entries merge iff both carry numbered period labels,
// lesson, teacher and room match exactly after normalization, and the next
// entry starts exactly when the accumulated one ends. A merge extends the
// accumulator's end time and combines the labels as "<current> + <next>".
func MergeDoubles(entries []model.Entry) []model.Entry {
	if len(entries) == 0 {
		return nil
	}

	normed := make([]model.Entry, len(entries))
	for i, e := range entries {
		normed[i] = NormalizeEntry(e)
	}

	sort.SliceStable(normed, func(i, j int) bool {
		return startMinutes(normed[i]) < startMinutes(normed[j])
	})

	// The accumulator's numbered status is taken from its original label;
	// a combined label like "Period 1 + Period 2" no longer matches the
	// pattern but the accumulator stays eligible for further merging.
	merged := make([]model.Entry, 0, len(normed))
	current := normed[0]
	currentNumbered := IsNumberedPeriod(current.Period)

	for _, next := range normed[1:] {
		nextNumbered := IsNumberedPeriod(next.Period)
		if currentNumbered && nextNumbered && canMerge(current, next) {
			current.End = next.End
			current.Period = current.Period + " + " + next.Period
			continue
		}
		merged = append(merged, current)
		current = next
		currentNumbered = nextNumbered
	}
	merged = append(merged, current)

	return merged
}

func canMerge(current, next model.Entry) bool {
	return next.Lesson == current.Lesson &&
		next.Teacher == current.Teacher &&
		next.Room == current.Room &&
		next.Start == current.End
}

func startMinutes(e model.Entry) int {
	m, ok := ClockMinutes(e.Start)
	if !ok {
		return 0
	}
	return m
}
