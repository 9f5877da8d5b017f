package report_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/worktrack/earnings-engine/engine"
	"github.com/worktrack/earnings-engine/report"
)

func TestWriteCSV_ColumnsAlwaysPresent(t *testing.T) {
	entries := []engine.TimeEntry{
		{
			Date:         "2024-03-01",
			StartTime:    "09:00",
			EndTime:      "17:30",
			BreakMinutes: 30,
			TotalHours:   decimal.NewFromInt(8),
			Earnings:     decimal.NewFromInt(200),
			Type:         engine.TypeWork,
			Project:      "Ops",
			Status:       engine.StatusCompleted,
		},
		// A sparse entry still renders every column.
		{Date: "2024-03-02", StartTime: "10:00", EndTime: "12:00"},
	}

	var sb strings.Builder
	if err := report.WriteCSV(&sb, entries); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows", len(lines))
	}

	header := strings.Split(lines[0], ",")
	for _, line := range lines[1:] {
		if got := len(strings.Split(line, ",")); got != len(header) {
			t.Errorf("row has %d fields, header has %d", got, len(header))
		}
	}

	if !strings.Contains(lines[1], "8.00") || !strings.Contains(lines[1], "200.00") {
		t.Errorf("row 1 missing fixed-point values: %s", lines[1])
	}
	if !strings.Contains(lines[2], "0.00") {
		t.Errorf("sparse row should render zeros: %s", lines[2])
	}
}
