// Package factory builds pluggable components, such as the metrics sinks a
// generation run reports to, from the "type" and "conf" entries of the
// configuration file.
//
// Type names are matched case-insensitively. Settings are decoded strictly:
// a key the component does not declare is an error, so a misspelled setting
// fails at startup instead of being ignored.
//
//	var sinks = factory.NewRegistry[metrics.MetricsSink]()
//
//	func init() {
//		sinks.MustRegister("influx", func(conf map[string]any) (metrics.MetricsSink, error) {
//			var c InfluxConfig
//			if err := factory.Decode(conf, &c); err != nil {
//				return nil, err
//			}
//			return NewInfluxSinkWithFallback(c), nil
//		})
//	}
//
//	sink, err := sinks.Create(factory.ModuleConfig{Type: "influx", Conf: map[string]any{"bucket": "timetable"}})
package factory
