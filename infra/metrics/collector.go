package metrics

import (
	"context"

	"github.com/kilianp07/timetable/core/events"
	coremetrics "github.com/kilianp07/timetable/core/metrics"
	"github.com/kilianp07/timetable/infra/logger"
	"github.com/kilianp07/timetable/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records a metric for
// every generation event. It stops when the context is canceled or the bus
// is closed; the returned channel is closed once it has stopped.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.GenerationEvent], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := sink.RecordGeneration(ToRecord(ev)); err != nil {
					log.Warnf("record generation %s: %v", ev.RunID, err)
				}
			}
		}
	}()
	return done
}

// ToRecord converts a bus event to a sink record.
func ToRecord(ev events.GenerationEvent) coremetrics.GenerationRecord {
	outcome := coremetrics.OutcomeSuccess
	switch {
	case ev.Err != nil && ev.InvalidInput:
		outcome = coremetrics.OutcomeInvalidInput
	case ev.Err != nil:
		outcome = coremetrics.OutcomeError
	}
	return coremetrics.GenerationRecord{
		RunID:         ev.RunID,
		Year:          ev.Year,
		Month:         ev.Month,
		Routes:        ev.Routes,
		Vehicles:      ev.Vehicles,
		HolidayBlocks: ev.HolidayBlocks,
		Duration:      ev.Duration,
		Outcome:       outcome,
		Time:          ev.Time,
	}
}
