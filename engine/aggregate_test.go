package engine_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/worktrack/earnings-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func workEntry(date, start string, hours float64) engine.TimeEntry {
	return engine.TimeEntry{
		Date:       date,
		StartTime:  start,
		TotalHours: decimal.NewFromFloat(hours),
		Type:       engine.TypeWork,
	}
}

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// =============================================================================
// EARNINGS
// =============================================================================

func TestEarnings_StandardDay(t *testing.T) {
	// GIVEN: 8 working hours at rate 20
	// THEN: 160.00

	got := engine.RoundMoney(engine.Earnings(d(8), d(20)))
	if got.StringFixed(2) != "160.00" {
		t.Errorf("Earnings = %s, want 160.00", got)
	}
}

func TestEarnings_GuardsInvalidInput(t *testing.T) {
	if !engine.Earnings(d(-1), d(20)).IsZero() {
		t.Error("negative hours should earn zero")
	}
	if !engine.Earnings(d(8), d(0)).IsZero() {
		t.Error("zero rate should earn zero")
	}
}

// =============================================================================
// PERIOD AGGREGATION
// =============================================================================

func TestAggregate_FiltersByPeriodInclusive(t *testing.T) {
	entries := []engine.TimeEntry{
		workEntry("2024-03-01", "09:00", 8),
		workEntry("2024-03-15", "09:00", 6),
		workEntry("2024-03-31", "09:00", 4),
		workEntry("2024-04-01", "09:00", 8),
	}
	period := engine.Period{Start: "2024-03-01", End: "2024-03-31"}

	stat := engine.Aggregate(entries, period, d(25))
	if stat.Entries != 3 {
		t.Errorf("Entries = %d, want 3", stat.Entries)
	}
	if stat.Hours.StringFixed(2) != "18.00" {
		t.Errorf("Hours = %s, want 18.00", stat.Hours)
	}
	if stat.Earnings.StringFixed(2) != "450.00" {
		t.Errorf("Earnings = %s, want 450.00", stat.Earnings)
	}
}

func TestAggregate_OnlyWorkEarns(t *testing.T) {
	// Sick and leave hours count toward totals but never toward earnings.
	sick := workEntry("2024-03-02", "09:00", 8)
	sick.Type = engine.TypeSick

	entries := []engine.TimeEntry{
		workEntry("2024-03-01", "09:00", 8),
		sick,
	}
	period := engine.Period{Start: "2024-03-01", End: "2024-03-31"}

	stat := engine.Aggregate(entries, period, d(25))
	if stat.Hours.StringFixed(2) != "16.00" {
		t.Errorf("Hours = %s, want 16.00", stat.Hours)
	}
	if stat.Earnings.StringFixed(2) != "200.00" {
		t.Errorf("Earnings = %s, want 200.00 (work hours only)", stat.Earnings)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	// Re-running over the same list must produce identical output; there
	// is no internal accumulation between calls.
	entries := []engine.TimeEntry{
		workEntry("2024-03-01", "09:00", 7.5),
		workEntry("2024-03-02", "10:00", 6.25),
	}
	period := engine.Period{Start: "2024-03-01", End: "2024-03-31"}

	first := engine.Aggregate(entries, period, d(25))
	second := engine.Aggregate(entries, period, d(25))
	if !first.Hours.Equal(second.Hours) || !first.Earnings.Equal(second.Earnings) || first.Entries != second.Entries {
		t.Errorf("repeated aggregation diverged: %+v vs %+v", first, second)
	}
}

// =============================================================================
// TREND
// =============================================================================

func TestTrend_ZeroPrevious(t *testing.T) {
	if got := engine.Trend(d(10), d(0)); !got.Equal(d(100)) {
		t.Errorf("Trend(10, 0) = %s, want 100", got)
	}
	if got := engine.Trend(d(0), d(0)); !got.IsZero() {
		t.Errorf("Trend(0, 0) = %s, want 0", got)
	}
}

func TestTrend_PercentChange(t *testing.T) {
	if got := engine.Trend(d(104), d(100)); got.StringFixed(2) != "4.00" {
		t.Errorf("Trend(104, 100) = %s, want 4.00", got)
	}
	if got := engine.Trend(d(90), d(100)); got.StringFixed(2) != "-10.00" {
		t.Errorf("Trend(90, 100) = %s, want -10.00", got)
	}
}

func TestClassifyTrend_DeadBand(t *testing.T) {
	cases := []struct {
		percent float64
		want    engine.TrendDirection
	}{
		{4, engine.TrendStable},
		{5, engine.TrendStable}, // boundary is stable
		{6, engine.TrendUp},
		{-5, engine.TrendStable},
		{-6, engine.TrendDown},
		{0, engine.TrendStable},
	}
	for _, c := range cases {
		if got := engine.ClassifyTrend(d(c.percent)); got != c.want {
			t.Errorf("ClassifyTrend(%v) = %s, want %s", c.percent, got, c.want)
		}
	}
}

// =============================================================================
// PRODUCTIVITY
// =============================================================================

func TestProductivityScore_Bounded(t *testing.T) {
	// 80 hours over 10 days at an 8-hour target is exactly on target.
	if got := engine.ProductivityScore(d(80), 10, d(8)); got != 100 {
		t.Errorf("on-target score = %d, want 100", got)
	}
	// Over-target clamps at 100.
	if got := engine.ProductivityScore(d(200), 10, d(8)); got != 100 {
		t.Errorf("over-target score = %d, want 100", got)
	}
	if got := engine.ProductivityScore(d(40), 10, d(8)); got != 50 {
		t.Errorf("half-target score = %d, want 50", got)
	}
}

func TestProductivityScore_Guards(t *testing.T) {
	if got := engine.ProductivityScore(d(40), 0, d(8)); got != 0 {
		t.Errorf("zero days elapsed = %d, want 0", got)
	}
	if got := engine.ProductivityScore(d(40), 5, d(0)); got != 0 {
		t.Errorf("zero target = %d, want 0", got)
	}
}

// =============================================================================
// PEAK HOUR
// =============================================================================

func TestPeakHour_BucketsByStartHour(t *testing.T) {
	entries := []engine.TimeEntry{
		workEntry("2024-03-01", "09:00", 4),
		workEntry("2024-03-02", "09:30", 5),
		workEntry("2024-03-03", "14:00", 6),
	}
	hour, ok := engine.PeakHour(entries)
	if !ok {
		t.Fatal("expected a peak hour")
	}
	if hour != 9 {
		t.Errorf("peak hour = %d, want 9 (4+5 beats 6)", hour)
	}
}

func TestPeakHour_TieBreaksLow(t *testing.T) {
	entries := []engine.TimeEntry{
		workEntry("2024-03-01", "14:00", 5),
		workEntry("2024-03-02", "09:00", 5),
	}
	hour, ok := engine.PeakHour(entries)
	if !ok || hour != 9 {
		t.Errorf("peak hour = %d (ok=%v), want 9 on tie", hour, ok)
	}
}

func TestPeakHour_NoUsableStartTimes(t *testing.T) {
	entries := []engine.TimeEntry{{Date: "2024-03-01", TotalHours: d(8)}}
	if _, ok := engine.PeakHour(entries); ok {
		t.Error("expected no peak hour for entries without start times")
	}
}

// =============================================================================
// DASHBOARD STATISTICS
// =============================================================================

func TestAggregateStatistics_WindowsAndTargets(t *testing.T) {
	// GIVEN: Entries spread over today, this week, this month, last month
	// WHEN: Aggregating from the 15th of March
	// THEN: Each window sums exactly its own entries

	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC) // a Friday

	entries := []engine.TimeEntry{
		workEntry("2024-03-15", "09:00", 8), // today, this week, this month
		workEntry("2024-03-12", "09:00", 6), // this week (Mon 11th starts it)
		workEntry("2024-03-01", "09:00", 4), // this month only
		workEntry("2024-02-10", "09:00", 9), // previous month
	}

	stats := engine.AggregateStatistics(entries, now, d(25), engine.DefaultTargets())

	if stats.Today.Hours.StringFixed(2) != "8.00" {
		t.Errorf("today hours = %s, want 8.00", stats.Today.Hours)
	}
	if stats.Week.Hours.StringFixed(2) != "14.00" {
		t.Errorf("week hours = %s, want 14.00", stats.Week.Hours)
	}
	if stats.Month.Hours.StringFixed(2) != "18.00" {
		t.Errorf("month hours = %s, want 18.00", stats.Month.Hours)
	}
	if stats.Month.Target.StringFixed(2) != "160.00" {
		t.Errorf("month target = %s, want 160.00", stats.Month.Target)
	}

	// 18 month hours vs 9 in February is +100%, classified up.
	if stats.Productivity.Trend != engine.TrendUp {
		t.Errorf("trend = %s, want up", stats.Productivity.Trend)
	}

	// 18 hours over 15 elapsed days against an 8-hour target: 15%.
	if stats.Productivity.Score != 15 {
		t.Errorf("score = %d, want 15", stats.Productivity.Score)
	}
}
