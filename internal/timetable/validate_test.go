package timetable

import (
	"encoding/json"
	"strings"
	"testing"
)

func decodeRaw(t *testing.T, doc string) any {
	t.Helper()
	var raw any
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		t.Fatalf("test fixture is not valid JSON: %v", err)
	}
	return raw
}

func issueStrings(is Issues) []string {
	out := make([]string, 0, len(is))
	for _, i := range is {
		out = append(out, i.String())
	}
	return out
}

func containsIssue(is Issues, substr string) bool {
	for _, i := range is {
		if strings.Contains(i.String(), substr) {
			return true
		}
	}
	return false
}

const validDoc = `{
  "Week A": {
    "Monday": [
      {"period": "Period 1", "start": "09:00", "end": "10:00",
       "lesson": "Maths", "teacher": "Mr Smith", "room": "Rm1"}
    ]
  },
  "Week B": {
    "Monday": []
  }
}`

func TestValidate_ValidDocument(t *testing.T) {
	t.Parallel()

	issues := Validate(decodeRaw(t, validDoc))
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issueStrings(issues))
	}
}

func TestValidate_TopLevelNotObject(t *testing.T) {
	t.Parallel()

	issues := Validate(decodeRaw(t, `[1, 2]`))
	if !issues.HasErrors() {
		t.Fatal("expected an error for non-object top level")
	}
}

func TestValidate_MissingWeekKey(t *testing.T) {
	t.Parallel()

	issues := Validate(decodeRaw(t, `{"Week A": {}}`))
	if !containsIssue(issues, "missing top-level key: Week B") {
		t.Fatalf("expected missing Week B error, got %v", issueStrings(issues))
	}
	if !issues.HasErrors() {
		t.Fatal("missing week key must be error-class")
	}
}

func TestValidate_UnknownDayNameIsWarning(t *testing.T) {
	t.Parallel()

	doc := `{"Week A": {"Funday": []}, "Week B": {}}`
	issues := Validate(decodeRaw(t, doc))
	if len(issues) != 1 {
		t.Fatalf("expected exactly one issue, got %v", issueStrings(issues))
	}
	if issues[0].Severity != SeverityWarning {
		t.Fatalf("unknown day name must be warning-class, got %v", issues[0].Severity)
	}
	if issues.HasErrors() {
		t.Fatal("a lone day-name warning must not block generation")
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	t.Parallel()

	doc := `{
	  "Week A": {
	    "Monday": [
	      {"period": "Period 1", "start": "9:00", "end": "10:00",
	       "lesson": "Maths", "teacher": "Mr Smith", "room": "Rm1"},
	      {"period": "Period 2", "start": "10:00", "end": "10:00",
	       "lesson": "Maths", "teacher": "Mr Smith", "room": "Rm1"},
	      {"start": "11:00", "end": "12:00",
	       "lesson": "Maths", "teacher": "Mr Smith"}
	    ],
	    "Tuesday": "not a list"
	  },
	  "Week B": {}
	}`
	issues := Validate(decodeRaw(t, doc))

	for _, want := range []string{
		`invalid start time: "9:00"`,
		"end time 10:00 is not after start time 10:00",
		`missing required field "period"`,
		`missing required field "room"`,
		"must be a list of lesson records",
	} {
		if !containsIssue(issues, want) {
			t.Errorf("expected an issue containing %q, got %v", want, issueStrings(issues))
		}
	}
}

func TestValidate_NonStringField(t *testing.T) {
	t.Parallel()

	doc := `{
	  "Week A": {"Monday": [
	    {"period": 3, "start": "09:00", "end": "10:00",
	     "lesson": "Maths", "teacher": "Mr Smith", "room": "Rm1"}
	  ]},
	  "Week B": {}
	}`
	issues := Validate(decodeRaw(t, doc))
	if !containsIssue(issues, `field "period" must be a string`) {
		t.Fatalf("expected a non-string field error, got %v", issueStrings(issues))
	}
}

func TestClockMinutes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{in: "00:00", want: 0, ok: true},
		{in: "09:05", want: 545, ok: true},
		{in: "23:59", want: 1439, ok: true},
		{in: "24:00", ok: false},
		{in: "9:00", ok: false},
		{in: "09:60", ok: false},
		{in: "N/A", ok: false},
		{in: "", ok: false},
	}

	for _, tc := range tests {
		got, ok := ClockMinutes(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("ClockMinutes(%q) = (%d, %v), want (%d, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDecode_BlocksOnErrors(t *testing.T) {
	t.Parallel()

	tt, issues, err := Decode([]byte(`{"Week A": {}}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if tt != nil {
		t.Fatal("expected nil timetable when validation errors are present")
	}
	if !issues.HasErrors() {
		t.Fatal("expected error-class issues")
	}
}

func TestDecode_ValidDocument(t *testing.T) {
	t.Parallel()

	tt, issues, err := Decode([]byte(validDoc))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if issues.HasErrors() {
		t.Fatalf("unexpected issues: %v", issueStrings(issues))
	}
	entries := tt["Week A"]["Monday"]
	if len(entries) != 1 || entries[0].Lesson != "Maths" || entries[0].Start != "09:00" {
		t.Fatalf("unexpected decoded entries: %+v", entries)
	}
}
