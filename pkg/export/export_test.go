package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/timetable/core/model"
)

func TestWriteSummaryCSV(t *testing.T) {
	var buf bytes.Buffer
	rows := []model.SummaryRow{
		{Vehicle: "MH09-1001", WorkingDays: 26, Holidays: 5},
		{Vehicle: "MH09, 1002", WorkingDays: 27, Holidays: 4},
	}
	require.NoError(t, WriteSummaryCSV(&buf, rows))
	want := "Vehicle,Working Days,Holidays\nMH09-1001,26,5\n\"MH09, 1002\",27,4\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteSummaryCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummaryCSV(&buf, nil))
	assert.Equal(t, "Vehicle,Working Days,Holidays\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	doc := Document{
		RunID: "r1",
		Timetable: model.Timetable{Year: 2025, Month: time.February, Days: 28, Routes: []model.RouteBlocks{
			{Route: "R1", Blocks: []model.Block{{Start: 1, End: 28, Vehicle: "A"}}},
		}},
		Summary: []model.SummaryRow{{Vehicle: "A", WorkingDays: 28}},
	}
	require.NoError(t, WriteJSON(&buf, doc))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "r1", out["run_id"])
	tt := out["timetable"].(map[string]any)
	assert.EqualValues(t, 2, tt["month"])
	assert.EqualValues(t, 28, tt["days"])
}

func TestSummaryFileName(t *testing.T) {
	assert.Equal(t, "summary_2025_11.csv", SummaryFileName(2025, 11))
}
