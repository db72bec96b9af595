package timetable

import (
	"testing"

	"ttcal/internal/model"
)

func TestNormalizeTeacher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Mr J Smith", want: "Mr J Smith"},
		{name: "split_surname", in: "Mrs MacMah\non", want: "Mrs MacMahon"},
		{name: "split_surname_crlf", in: "Mrs MacMah\r\non", want: "Mrs MacMahon"},
		{name: "case_insensitive_on", in: "Mrs MacMah ON", want: "Mrs MacMahon"},
		{name: "leading_on_kept", in: "on duty", want: "on duty"},
		{name: "collapse_whitespace", in: "Mr   J \t Smith", want: "Mr J Smith"},
		{name: "newlines_to_spaces", in: "Mr\nJ\nSmith", want: "Mr J Smith"},
		{name: "blank", in: "   ", want: ""},
		{name: "empty", in: "", want: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeTeacher(tc.in); got != tc.want {
				t.Fatalf("NormalizeTeacher(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeEntry(t *testing.T) {
	t.Parallel()

	in := model.Entry{
		Period:  "  Period 1 ",
		Start:   " 09:00",
		End:     "10:00 ",
		Lesson:  "  Maths ",
		Teacher: "Mrs MacMah\non",
		Room:    "",
	}
	got := NormalizeEntry(in)
	want := model.Entry{
		Period:  "Period 1",
		Start:   "09:00",
		End:     "10:00",
		Lesson:  "Maths",
		Teacher: "Mrs MacMahon",
		Room:    model.NotAvailable,
	}
	if got != want {
		t.Fatalf("NormalizeEntry() = %+v, want %+v", got, want)
	}
}

func TestNormalizeEntry_AllBlank(t *testing.T) {
	t.Parallel()

	got := NormalizeEntry(model.Entry{})
	if got.Period != model.NotAvailable || got.Start != model.NotAvailable ||
		got.End != model.NotAvailable || got.Lesson != model.NotAvailable ||
		got.Teacher != model.NotAvailable || got.Room != model.NotAvailable {
		t.Fatalf("blank fields must become the sentinel, got %+v", got)
	}
}
