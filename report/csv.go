// Package report renders persisted entries for downstream consumers.
// The column layout mirrors the timesheet export: date, times, break,
// hours, extra hours, earnings, then the free-text labels.
package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/worktrack/earnings-engine/engine"
)

var csvHeader = []string{
	"Date", "Start", "End", "Break (min)", "Total Hours",
	"Extra Hours", "Earnings", "Project", "Task", "Description", "Type", "Status",
}

// WriteCSV streams the entries to w in export column order. The caller
// controls ordering and filtering; rows are written as given.
func WriteCSV(w io.Writer, entries []engine.TimeEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			e.Date,
			e.StartTime,
			e.EndTime,
			strconv.Itoa(e.BreakMinutes),
			engine.RoundHours(e.TotalHours).StringFixed(2),
			engine.RoundHours(e.ExtraHours).StringFixed(2),
			engine.RoundMoney(e.Earnings).StringFixed(2),
			e.Project,
			e.Task,
			e.Description,
			string(e.Type),
			string(e.Status),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
