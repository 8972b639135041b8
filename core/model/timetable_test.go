package model

import (
	"testing"
	"time"
)

func TestBlockLabel(t *testing.T) {
	b := Block{Start: 1, End: 5, Vehicle: "MH12"}
	if b.Label() != "MH12" {
		t.Fatalf("unexpected label %q", b.Label())
	}
	b.Holiday = true
	if b.Label() != "MH12 (H)" {
		t.Fatalf("unexpected holiday label %q", b.Label())
	}
	if b.Days() != 5 {
		t.Fatalf("expected 5 days got %d", b.Days())
	}
}

func TestDaysIn(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.January, 31},
		{2025, time.February, 28},
		{2024, time.February, 29},
		{2100, time.February, 28},
		{2000, time.February, 29},
		{2025, time.April, 30},
		{2025, time.December, 31},
	}
	for _, c := range cases {
		if got := DaysIn(c.year, c.month); got != c.want {
			t.Errorf("%d-%02d: expected %d got %d", c.year, c.month, c.want, got)
		}
	}
}

func TestTimetableValidate(t *testing.T) {
	tt := Timetable{Year: 2025, Month: time.April, Days: 30, Routes: []RouteBlocks{{
		Route:  "R1",
		Blocks: []Block{{Start: 1, End: 5, Vehicle: "A"}, {Start: 6, End: 6, Vehicle: "B", Holiday: true}, {Start: 7, End: 30, Vehicle: "A"}},
	}}}
	if err := tt.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tt.MonthName() != "April" {
		t.Fatalf("unexpected month name %s", tt.MonthName())
	}

	gap := tt
	gap.Routes = []RouteBlocks{{Route: "R1", Blocks: []Block{{Start: 1, End: 5}, {Start: 7, End: 30}}}}
	if err := gap.Validate(); err == nil {
		t.Fatal("expected gap error")
	}

	short := tt
	short.Routes = []RouteBlocks{{Route: "R1", Blocks: []Block{{Start: 1, End: 29}}}}
	if err := short.Validate(); err == nil {
		t.Fatal("expected short coverage error")
	}
}

func TestParseMonth(t *testing.T) {
	valid := map[string]time.Month{"1": time.January, " 12 ": time.December, "March": time.March, "sep": time.September}
	for in, want := range valid {
		got, err := ParseMonth(in)
		if err != nil || got != want {
			t.Errorf("ParseMonth(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, in := range []string{"", "0", "13", "ma", "foo"} {
		if _, err := ParseMonth(in); err == nil {
			t.Errorf("ParseMonth(%q): expected error", in)
		}
	}
}
