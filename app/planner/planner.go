// Package planner runs the timetable pipeline for one request: read the
// roster spreadsheet, build the monthly block schedule and summarize it.
package planner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/timetable/core/events"
	"github.com/kilianp07/timetable/core/model"
	"github.com/kilianp07/timetable/core/monitoring"
	"github.com/kilianp07/timetable/core/scheduler"
	"github.com/kilianp07/timetable/infra/logger"
	"github.com/kilianp07/timetable/internal/eventbus"
)

// RosterReader decodes an uploaded spreadsheet.
type RosterReader interface {
	Read(r io.Reader, name string) (model.Roster, error)
}

// Request is one generation request.
type Request struct {
	// Source identifies the caller in logs and events, e.g. "web" or "cli".
	Source   string
	FileName string
	File     io.Reader
	Year     int
	Month    time.Month
}

// Result is a generated timetable with its per-vehicle summary.
type Result struct {
	RunID   string
	Plan    *scheduler.Plan
	Summary []model.SummaryRow
}

// Timetable is a shortcut for r.Plan.Timetable.
func (r *Result) Timetable() model.Timetable { return r.Plan.Timetable }

// InputError marks a failure caused by the request content rather than by
// the service.
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return e.Err.Error() }
func (e *InputError) Unwrap() error { return e.Err }

// IsInputError reports whether err was caused by the request.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

var inputErrors = []error{
	scheduler.ErrInvalidPeriod,
	scheduler.ErrNoRoutes,
	scheduler.ErrNotEnoughVehicles,
	scheduler.ErrNoBackupVehicles,
	scheduler.ErrDuplicateVehicle,
}

// Planner runs generation requests.
type Planner struct {
	reader RosterReader
	sched  *scheduler.Scheduler
	bus    *eventbus.TypedBus[events.GenerationEvent]
	log    logger.Logger
	now    func() time.Time
}

// New creates a Planner. bus may be nil when no one listens for events.
func New(reader RosterReader, sched *scheduler.Scheduler, bus *eventbus.TypedBus[events.GenerationEvent], log logger.Logger) *Planner {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Planner{reader: reader, sched: sched, bus: bus, log: log, now: time.Now}
}

// Generate reads the roster in req and builds its timetable.
// Errors caused by the request are returned as *InputError.
func (p *Planner) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	start := p.now()
	ev := events.GenerationEvent{RunID: runID, Source: req.Source, Year: req.Year, Month: req.Month}

	res, err := p.generate(req, &ev)
	ev.Duration = p.now().Sub(start)
	ev.Time = p.now()
	if err != nil {
		ev.Err = err
		ev.InvalidInput = IsInputError(err)
		p.publish(ev)
		if ev.InvalidInput {
			p.log.Warnf("run %s rejected: %v", runID, err)
		} else {
			p.log.Errorf("run %s failed: %v", runID, err)
			monitoring.CaptureException(err, map[string]string{"run_id": runID, "source": req.Source})
		}
		return nil, err
	}
	res.RunID = runID
	p.publish(ev)
	p.log.Infow("timetable generated", map[string]any{
		"run_id":         runID,
		"source":         req.Source,
		"file":           req.FileName,
		"period":         fmt.Sprintf("%04d-%02d", req.Year, int(req.Month)),
		"routes":         ev.Routes,
		"vehicles":       ev.Vehicles,
		"holiday_blocks": ev.HolidayBlocks,
		"duration_ms":    ev.Duration.Milliseconds(),
	})
	return res, nil
}

func (p *Planner) generate(req Request, ev *events.GenerationEvent) (*Result, error) {
	if req.File == nil {
		return nil, &InputError{Err: errors.New("no spreadsheet uploaded")}
	}
	roster, err := p.reader.Read(req.File, req.FileName)
	if err != nil {
		return nil, &InputError{Err: err}
	}
	ev.Routes = len(roster.Routes)
	ev.Vehicles = len(roster.Vehicles)

	plan, err := p.sched.Generate(roster, req.Year, req.Month)
	if err != nil {
		for _, target := range inputErrors {
			if errors.Is(err, target) {
				return nil, &InputError{Err: err}
			}
		}
		return nil, err
	}
	ev.HolidayBlocks = plan.HolidayBlocks()
	return &Result{Plan: plan, Summary: plan.Summary()}, nil
}

func (p *Planner) publish(ev events.GenerationEvent) {
	if p.bus != nil {
		p.bus.Publish(ev)
	}
}
