package config

import (
	"github.com/kilianp07/timetable/core/scheduler"
	"github.com/kilianp07/timetable/infra/pdf"
	"github.com/kilianp07/timetable/infra/sheet"
)

// TimetableConfig defines how rosters are read and timetables built and drawn.
type TimetableConfig struct {
	RouteColumn   string                  `json:"route_column"`
	VehicleColumn string                  `json:"vehicle_column"`
	Holidays      scheduler.HolidayPolicy `json:"holidays"`
	PDF           pdf.Options             `json:"pdf"`
}

// SetDefaults applies the spreadsheet headers, holiday policy and layout
// used by the depot.
func (c *TimetableConfig) SetDefaults() {
	if c.RouteColumn == "" {
		c.RouteColumn = sheet.DefaultRouteColumn
	}
	if c.VehicleColumn == "" {
		c.VehicleColumn = sheet.DefaultVehicleColumn
	}
	c.Holidays.SetDefaults()
	c.PDF.SetDefaults()
}

// Validate checks the column headers, the holiday policy and the PDF layout.
func (c TimetableConfig) Validate() error {
	if err := c.Columns().Validate(); err != nil {
		return err
	}
	if err := c.Holidays.Validate(); err != nil {
		return err
	}
	return c.PDF.Validate()
}

// Columns returns the spreadsheet headers to look up.
func (c TimetableConfig) Columns() sheet.Columns {
	return sheet.Columns{Route: c.RouteColumn, Vehicle: c.VehicleColumn}
}
