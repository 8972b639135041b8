// Package scheduler builds the monthly vehicle-to-route block schedule.
// Each route keeps its fixed vehicle except on that vehicle's holidays,
// when a backup vehicle taken from a shared rotation stands in. The result
// is a list of contiguous day ranges per route plus a per-vehicle summary.
package scheduler
