// Package ingest merges the raw Week A/B CSV exports into the combined
// timetable JSON that the validator and compiler consume.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	appLog "ttcal/internal/log"
	"ttcal/internal/model"
	"ttcal/internal/store"
)

// csvHeader is the exact header row every week CSV must carry.
var csvHeader = []string{"Day", "Period", "Start", "End", "Lesson", "Teacher", "Room"}

// LoadWeekCSV reads one week's CSV into a day-keyed entry map. Blank cells
// become the not-available sentinel; rows with a blank day land under
// "Unknown" so the validator surfaces them instead of dropping them.
func LoadWeekCSV(path string) (model.Week, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("ingest: %s is empty", path)
		}
		return nil, fmt.Errorf("ingest: read header of %s: %w", path, err)
	}
	if !equalHeader(header) {
		return nil, fmt.Errorf("ingest: %s has unexpected headers %v, expected %v", path, header, csvHeader)
	}

	week := make(model.Week)
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read %s: %w", path, err)
		}

		day := strings.TrimSpace(row[0])
		if day == "" {
			day = "Unknown"
		}
		week[day] = append(week[day], model.Entry{
			Period:  cell(row[1]),
			Start:   cell(row[2]),
			End:     cell(row[3]),
			Lesson:  cell(row[4]),
			Teacher: cell(row[5]),
			Room:    cell(row[6]),
		})
	}
	return week, nil
}

// MergeWeeks combines the two week maps under their canonical week keys.
func MergeWeeks(a, b model.Week) model.Timetable {
	return model.Timetable{
		model.WeekA: a,
		model.WeekB: b,
	}
}

// BuildTimetable reads both week CSVs for the user and writes the merged
// timetable JSON into the store.
func BuildTimetable(st *store.Store, user string) error {
	weekA, err := LoadWeekCSV(st.WeekCSVPath(user, "a"))
	if err != nil {
		return err
	}
	weekB, err := LoadWeekCSV(st.WeekCSVPath(user, "b"))
	if err != nil {
		return err
	}

	tt := MergeWeeks(weekA, weekB)
	data, err := json.MarshalIndent(tt, "", "  ")
	if err != nil {
		return fmt.Errorf("ingest: encode timetable: %w", err)
	}
	if err := st.WriteTimetable(user, data); err != nil {
		return err
	}

	appLog.Info("merged week CSVs into timetable", "user", user,
		"week_a_days", len(weekA), "week_b_days", len(weekB))
	return nil
}

func cell(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.NotAvailable
	}
	return s
}

func equalHeader(h []string) bool {
	if len(h) != len(csvHeader) {
		return false
	}
	for i := range h {
		if strings.TrimSpace(h[i]) != csvHeader[i] {
			return false
		}
	}
	return true
}
