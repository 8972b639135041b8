package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/timetable/core/metrics"
)

func TestPromSink_RecordGeneration(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	sink, ok := sinkIf.(*PromSink)
	require.True(t, ok, "expected PromSink")

	require.NoError(t, sink.RecordGeneration(coremetrics.GenerationRecord{
		Outcome: coremetrics.OutcomeSuccess, Routes: 14, HolidayBlocks: 68, Duration: 20 * time.Millisecond,
	}))
	require.NoError(t, sink.RecordGeneration(coremetrics.GenerationRecord{
		Outcome: coremetrics.OutcomeInvalidInput, Routes: 3, Duration: time.Millisecond,
	}))

	expected := `
# HELP timetable_generations_total Total number of timetable generations
# TYPE timetable_generations_total counter
timetable_generations_total{outcome="invalid_input"} 1
timetable_generations_total{outcome="success"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(sink.generations, strings.NewReader(expected)))
	assert.Equal(t, 14.0, testutil.ToFloat64(sink.routes), "failed runs must not overwrite the gauge")
	assert.Equal(t, 68.0, testutil.ToFloat64(sink.holidayBlocks))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.duration))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, first.RecordGeneration(coremetrics.GenerationRecord{Outcome: coremetrics.OutcomeSuccess}))
	require.NoError(t, second.RecordGeneration(coremetrics.GenerationRecord{Outcome: coremetrics.OutcomeSuccess}))
	assert.Equal(t, 2.0, testutil.ToFloat64(second.(*PromSink).generations.WithLabelValues(coremetrics.OutcomeSuccess)))
}
