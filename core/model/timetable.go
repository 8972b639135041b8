package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// HolidaySuffix marks a block served by a backup vehicle on a holiday.
const HolidaySuffix = " (H)"

// Roster is the raw input read from a spreadsheet: route names and vehicle
// identifiers in sheet order.
type Roster struct {
	Routes   []string
	Vehicles []string
}

// Block is a contiguous run of days on which a route is served by the same
// vehicle. Start and End are 1-based days of the month, both inclusive.
type Block struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Vehicle string `json:"vehicle"`
	// Holiday is set when Vehicle is a backup standing in for the route's
	// fixed vehicle.
	Holiday bool `json:"holiday"`
}

// Label returns the vehicle label shown to users, e.g. "MH12 (H)".
func (b Block) Label() string {
	if b.Holiday {
		return b.Vehicle + HolidaySuffix
	}
	return b.Vehicle
}

// Days returns the number of days covered by the block.
func (b Block) Days() int { return b.End - b.Start + 1 }

// RouteBlocks holds the blocks of a single route in day order.
type RouteBlocks struct {
	Route  string  `json:"route"`
	Blocks []Block `json:"blocks"`
}

// Timetable is the block schedule of every route for one calendar month.
type Timetable struct {
	Year   int           `json:"year"`
	Month  time.Month    `json:"month"`
	Days   int           `json:"days"`
	Routes []RouteBlocks `json:"routes"`
}

// MonthName returns the English month name, e.g. "March".
func (t Timetable) MonthName() string { return t.Month.String() }

// Validate checks that every route is covered day by day without gaps.
func (t Timetable) Validate() error {
	for _, r := range t.Routes {
		next := 1
		for _, b := range r.Blocks {
			if b.Start != next {
				return fmt.Errorf("route %s: block starts on day %d, expected %d", r.Route, b.Start, next)
			}
			if b.End < b.Start {
				return fmt.Errorf("route %s: block %d-%d is reversed", r.Route, b.Start, b.End)
			}
			next = b.End + 1
		}
		if next != t.Days+1 {
			return fmt.Errorf("route %s: covered up to day %d of %d", r.Route, next-1, t.Days)
		}
	}
	return nil
}

// SummaryRow counts working and holiday days of a fixed vehicle.
type SummaryRow struct {
	Vehicle     string `json:"vehicle"`
	WorkingDays int    `json:"working_days"`
	Holidays    int    `json:"holidays"`
}

// DaysIn returns the number of days of month in year.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseMonth accepts a month number ("3") or an English name, full or
// abbreviated to at least three letters ("March", "mar").
func ParseMonth(s string) (time.Month, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("invalid month %d", n)
		}
		return time.Month(n), nil
	}
	if len(s) >= 3 {
		lower := strings.ToLower(s)
		for m := time.January; m <= time.December; m++ {
			if strings.HasPrefix(strings.ToLower(m.String()), lower) {
				return m, nil
			}
		}
	}
	return 0, fmt.Errorf("invalid month %q", s)
}
