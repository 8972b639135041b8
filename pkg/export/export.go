package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/timetable/core/model"
)

// SummaryHeader is the first line of the summary CSV.
var SummaryHeader = []string{"Vehicle", "Working Days", "Holidays"}

// SummaryFileName returns the download name of the summary CSV.
func SummaryFileName(year, month int) string {
	return "summary_" + strconv.Itoa(year) + "_" + strconv.Itoa(month) + ".csv"
}

// WriteSummaryCSV writes the per-vehicle summary to w in CSV format.
func WriteSummaryCSV(w io.Writer, rows []model.SummaryRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SummaryHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Vehicle,
			strconv.Itoa(r.WorkingDays),
			strconv.Itoa(r.Holidays),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Document is the JSON representation of a generated timetable.
type Document struct {
	RunID     string             `json:"run_id,omitempty"`
	Timetable model.Timetable    `json:"timetable"`
	Summary   []model.SummaryRow `json:"summary"`
}

// WriteJSON writes the timetable and its summary to w in JSON format.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
