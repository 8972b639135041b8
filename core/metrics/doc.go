// Package metrics defines the sinks recording timetable generations. Sinks
// like the Prometheus and InfluxDB ones in infra/metrics are registered by
// type name and built from configuration; NewMetricsSink returns a MultiSink
// automatically when several sinks are configured.
package metrics
