package metrics

import (
	"errors"
	"time"
)

// GenerationRecord describes one timetable generation.
type GenerationRecord struct {
	RunID         string
	Year          int
	Month         time.Month
	Routes        int
	Vehicles      int
	HolidayBlocks int
	Duration      time.Duration
	// Outcome is "success", "invalid_input" or "error".
	Outcome string
	Time    time.Time
}

// Generation outcomes.
const (
	OutcomeSuccess      = "success"
	OutcomeInvalidInput = "invalid_input"
	OutcomeError        = "error"
)

// MetricsSink records timetable generations for observability purposes.
type MetricsSink interface {
	RecordGeneration(rec GenerationRecord) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordGeneration(GenerationRecord) error { return nil }

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordGeneration forwards the record to every sink. A failing sink does not
// prevent the others from recording; all errors are joined.
func (m *MultiSink) RecordGeneration(rec GenerationRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordGeneration(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
