package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/timetable/core/model"
)

// Supported planning years.
const (
	MinYear = 2000
	MaxYear = 2100
)

var (
	// ErrInvalidPeriod is returned for a year or month outside the supported range.
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrNoRoutes is returned when the roster lists no route.
	ErrNoRoutes = errors.New("no routes")
	// ErrNotEnoughVehicles is returned when there are fewer vehicles than routes.
	ErrNotEnoughVehicles = errors.New("not enough vehicles")
	// ErrNoBackupVehicles is returned when a holiday falls in the month but
	// every vehicle is already fixed to a route.
	ErrNoBackupVehicles = errors.New("no backup vehicles")
	// ErrDuplicateVehicle is returned when a vehicle identifier appears twice.
	ErrDuplicateVehicle = errors.New("duplicate vehicle")
)

// Scheduler generates monthly block timetables.
type Scheduler struct {
	Holidays HolidayPolicy
}

// New returns a Scheduler using the given holiday policy.
func New(p HolidayPolicy) *Scheduler { return &Scheduler{Holidays: p} }

// Plan is a generated timetable together with the vehicle split it was
// built from.
type Plan struct {
	Timetable model.Timetable
	// Fixed holds one vehicle per route, in route order.
	Fixed []string
	// Backup holds the vehicles used on holidays, in rotation order.
	Backup []string
	// Holidays maps each fixed vehicle to its holidays in the month.
	Holidays map[string][]int
}

// Generate builds the block timetable of roster for the given month.
//
// The first len(Routes) vehicles are fixed, one per route in order; the
// remaining ones are backups. A single backup cursor rotates across all
// routes and advances on every holiday served.
func (s *Scheduler) Generate(roster model.Roster, year int, month time.Month) (*Plan, error) {
	if year < MinYear || year > MaxYear || month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: %d-%02d", ErrInvalidPeriod, year, int(month))
	}
	if err := s.Holidays.Validate(); err != nil {
		return nil, err
	}
	if len(roster.Routes) == 0 {
		return nil, ErrNoRoutes
	}
	if len(roster.Vehicles) < len(roster.Routes) {
		return nil, fmt.Errorf("%w: %d vehicles for %d routes", ErrNotEnoughVehicles, len(roster.Vehicles), len(roster.Routes))
	}
	seen := make(map[string]struct{}, len(roster.Vehicles))
	for _, v := range roster.Vehicles {
		if _, ok := seen[v]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVehicle, v)
		}
		seen[v] = struct{}{}
	}

	days := model.DaysIn(year, month)
	fixed := roster.Vehicles[:len(roster.Routes)]
	backup := roster.Vehicles[len(roster.Routes):]

	holidays := make(map[string][]int, len(fixed))
	anyHoliday := false
	for i, v := range fixed {
		holidays[v] = s.Holidays.Days(i, days)
		anyHoliday = anyHoliday || len(holidays[v]) > 0
	}
	if anyHoliday && len(backup) == 0 {
		return nil, ErrNoBackupVehicles
	}

	tt := model.Timetable{Year: year, Month: month, Days: days, Routes: make([]model.RouteBlocks, 0, len(roster.Routes))}
	cursor := 0
	for r, route := range roster.Routes {
		vehicle := fixed[r]
		off := make(map[int]bool, len(holidays[vehicle]))
		for _, d := range holidays[vehicle] {
			off[d] = true
		}
		var blocks []model.Block
		var cur model.Block
		for day := 1; day <= days; day++ {
			assigned := model.Block{Vehicle: vehicle}
			if off[day] {
				assigned = model.Block{Vehicle: backup[cursor], Holiday: true}
				cursor = (cursor + 1) % len(backup)
			}
			switch {
			case day == 1:
				cur = assigned
				cur.Start = day
			case assigned.Vehicle != cur.Vehicle || assigned.Holiday != cur.Holiday:
				cur.End = day - 1
				blocks = append(blocks, cur)
				cur = assigned
				cur.Start = day
			}
		}
		cur.End = days
		blocks = append(blocks, cur)
		tt.Routes = append(tt.Routes, model.RouteBlocks{Route: route, Blocks: blocks})
	}

	return &Plan{
		Timetable: tt,
		Fixed:     append([]string(nil), fixed...),
		Backup:    append([]string(nil), backup...),
		Holidays:  holidays,
	}, nil
}

// HolidayBlocks counts the blocks served by backup vehicles.
func (p *Plan) HolidayBlocks() int {
	n := 0
	for _, r := range p.Timetable.Routes {
		for _, b := range r.Blocks {
			if b.Holiday {
				n++
			}
		}
	}
	return n
}
