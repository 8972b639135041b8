package events

import "time"

// GenerationEvent is published after every timetable generation.
type GenerationEvent struct {
	RunID         string
	Source        string
	Year          int
	Month         time.Month
	Routes        int
	Vehicles      int
	HolidayBlocks int
	Duration      time.Duration
	// InvalidInput is set when Err was caused by the request rather than
	// by the service.
	InvalidInput bool
	Err          error
	Time         time.Time
}
