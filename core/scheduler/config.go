package scheduler

import "fmt"

// HolidayPolicy places the periodic holidays of fixed vehicles.
//
// The i-th fixed vehicle rests first on FirstDay + i%Stagger, then every
// Interval days, at most MaxPerVehicle times in a month.
type HolidayPolicy struct {
	FirstDay      int `json:"first_day"`
	Stagger       int `json:"stagger"`
	Interval      int `json:"interval"`
	MaxPerVehicle int `json:"max_per_vehicle"`
}

// DefaultHolidayPolicy rests each vehicle once every six days starting on the
// 6th to the 10th of the month.
func DefaultHolidayPolicy() HolidayPolicy {
	return HolidayPolicy{FirstDay: 6, Stagger: 5, Interval: 6, MaxPerVehicle: 5}
}

// SetDefaults fills zero fields from DefaultHolidayPolicy.
func (p *HolidayPolicy) SetDefaults() {
	def := DefaultHolidayPolicy()
	if p.FirstDay == 0 {
		p.FirstDay = def.FirstDay
	}
	if p.Stagger == 0 {
		p.Stagger = def.Stagger
	}
	if p.Interval == 0 {
		p.Interval = def.Interval
	}
	if p.MaxPerVehicle == 0 {
		p.MaxPerVehicle = def.MaxPerVehicle
	}
}

// Validate checks that every field is positive.
func (p HolidayPolicy) Validate() error {
	switch {
	case p.FirstDay <= 0:
		return fmt.Errorf("holidays.first_day must be positive")
	case p.Stagger <= 0:
		return fmt.Errorf("holidays.stagger must be positive")
	case p.Interval <= 0:
		return fmt.Errorf("holidays.interval must be positive")
	case p.MaxPerVehicle <= 0:
		return fmt.Errorf("holidays.max_per_vehicle must be positive")
	}
	return nil
}

// Days returns the holidays of the fixed vehicle at index in a month of
// daysInMonth days, in increasing order.
func (p HolidayPolicy) Days(index, daysInMonth int) []int {
	var days []int
	for day := p.FirstDay + index%p.Stagger; len(days) < p.MaxPerVehicle && day <= daysInMonth; day += p.Interval {
		days = append(days, day)
	}
	return days
}
