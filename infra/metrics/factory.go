package metrics

import (
	"github.com/kilianp07/timetable/core/factory"
	coremetrics "github.com/kilianp07/timetable/core/metrics"
)

func init() {
	coremetrics.MustRegisterMetricsSink("nop", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		if err := factory.NoSettings(conf); err != nil {
			return nil, err
		}
		return coremetrics.NopSink{}, nil
	})

	coremetrics.MustRegisterMetricsSink("prometheus", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		if err := factory.NoSettings(conf); err != nil {
			return nil, err
		}
		return NewPromSink()
	})

	coremetrics.MustRegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c), nil
	})
}
