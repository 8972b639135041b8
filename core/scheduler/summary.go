package scheduler

import (
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/timetable/core/model"
)

// Summarize counts, for every fixed vehicle, the days it works across all
// routes. Days it does not work are reported as holidays.
func Summarize(tt model.Timetable, fixed []string) []model.SummaryRow {
	rows := make([]model.SummaryRow, 0, len(fixed))
	for _, v := range fixed {
		work := 0
		for _, r := range tt.Routes {
			for _, b := range r.Blocks {
				if !b.Holiday && b.Vehicle == v {
					work += b.Days()
				}
			}
		}
		rows = append(rows, model.SummaryRow{Vehicle: v, WorkingDays: work, Holidays: tt.Days - work})
	}
	return rows
}

// Summary is Summarize applied to the plan's own timetable.
func (p *Plan) Summary() []model.SummaryRow { return Summarize(p.Timetable, p.Fixed) }

// FormatRange renders a block's day range, e.g. "6-6 March".
func FormatRange(b model.Block, month time.Month) string {
	return strconv.Itoa(b.Start) + "-" + strconv.Itoa(b.End) + " " + month.String()
}

// PreviewLine renders the blocks of a route on one line:
// "1-5 March: MH12 | 6-6 March: MH20 (H) | 7-31 March: MH12".
func PreviewLine(rb model.RouteBlocks, month time.Month) string {
	parts := make([]string, len(rb.Blocks))
	for i, b := range rb.Blocks {
		parts[i] = FormatRange(b, month) + ": " + b.Label()
	}
	return strings.Join(parts, " | ")
}
