package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/timetable/core/metrics"
)

// PromSink records timetable generations in Prometheus metrics.
type PromSink struct {
	generations   *prometheus.CounterVec
	duration      prometheus.Histogram
	routes        prometheus.Gauge
	holidayBlocks prometheus.Gauge
}

// NewPromSink registers generation metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	generations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_generations_total",
		Help: "Total number of timetable generations",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_generation_duration_seconds",
		Help:    "Time spent reading the roster and building the timetable",
		Buckets: prometheus.DefBuckets,
	})
	routes := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_routes",
		Help: "Number of routes in the last successful generation",
	})
	holidayBlocks := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_holiday_blocks",
		Help: "Number of backup blocks in the last successful generation",
	})

	var err error
	if generations, err = register(reg, generations); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if routes, err = register(reg, routes); err != nil {
		return nil, err
	}
	if holidayBlocks, err = register(reg, holidayBlocks); err != nil {
		return nil, err
	}
	return &PromSink{generations: generations, duration: duration, routes: routes, holidayBlocks: holidayBlocks}, nil
}

// register adds c to reg, reusing an identical collector registered earlier.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordGeneration updates counters, latency and the last-run gauges.
func (s *PromSink) RecordGeneration(rec coremetrics.GenerationRecord) error {
	s.generations.WithLabelValues(rec.Outcome).Inc()
	s.duration.Observe(rec.Duration.Seconds())
	if rec.Outcome == coremetrics.OutcomeSuccess {
		s.routes.Set(float64(rec.Routes))
		s.holidayBlocks.Set(float64(rec.HolidayBlocks))
	}
	return nil
}
