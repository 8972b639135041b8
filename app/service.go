package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/timetable/api/timetable"
	"github.com/kilianp07/timetable/app/planner"
	"github.com/kilianp07/timetable/config"
	"github.com/kilianp07/timetable/core/events"
	coremetrics "github.com/kilianp07/timetable/core/metrics"
	"github.com/kilianp07/timetable/core/monitoring"
	"github.com/kilianp07/timetable/core/scheduler"
	"github.com/kilianp07/timetable/infra/logger"
	"github.com/kilianp07/timetable/infra/metrics"
	inframon "github.com/kilianp07/timetable/infra/monitoring"
	"github.com/kilianp07/timetable/infra/pdf"
	"github.com/kilianp07/timetable/infra/sheet"
	"github.com/kilianp07/timetable/internal/eventbus"
)

// Service wires the timetable pipeline to the web UI and the metrics sinks.
type Service struct {
	Planner  *planner.Planner
	Renderer *pdf.Renderer

	cfg     *config.Config
	bus     *eventbus.TypedBus[events.GenerationEvent]
	sink    coremetrics.MetricsSink
	handler http.Handler
	log     logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	logg := logger.New("service")

	mon, err := inframon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	monitoring.Init(mon)

	renderer, err := pdf.NewRenderer(cfg.Timetable.PDF)
	if err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	bus := eventbus.NewTyped[events.GenerationEvent]()
	p := planner.New(
		sheet.NewReader(cfg.Timetable.Columns()),
		scheduler.New(cfg.Timetable.Holidays),
		bus,
		logger.New("planner"),
	)

	mux := http.NewServeMux()
	timetable.Register(mux, timetable.Deps{
		Generator:      p,
		Renderer:       renderer,
		Title:          cfg.Timetable.PDF.Title,
		RouteColumn:    cfg.Timetable.RouteColumn,
		VehicleColumn:  cfg.Timetable.VehicleColumn,
		DefaultYear:    cfg.Server.DefaultYear,
		MaxUploadBytes: cfg.Server.MaxUploadBytes(),
		Log:            logger.New("http"),
	})

	return &Service{
		Planner:  p,
		Renderer: renderer,
		cfg:      cfg,
		bus:      bus,
		sink:     sink,
		handler:  monitoring.RecoverHTTP(mux),
		log:      logg,
	}, nil
}

// Handler returns the HTTP handler serving the web UI and the API.
func (s *Service) Handler() http.Handler { return s.handler }

// StartCollector forwards generation events to the metrics sink until ctx
// is canceled.
func (s *Service) StartCollector(ctx context.Context) <-chan struct{} {
	return metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("collector"))
}

// Run serves HTTP and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	collectorDone := s.StartCollector(ctx)

	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		g.Go(func() error {
			// Metrics server failures are logged, not returned.
			if err := metrics.StartPromServer(ctx, addr, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
			return nil
		})
	}

	srv := &http.Server{
		Addr:              s.cfg.Server.Address,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		s.log.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("http shutdown: %v", err)
		}
		return nil
	})

	err := g.Wait()
	s.bus.Close()
	<-collectorDone
	return err
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	monitoring.Flush(2 * time.Second)
	return nil
}
