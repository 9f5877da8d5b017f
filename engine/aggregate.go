/*
aggregate.go - Period statistics over a set of time entries

PURPOSE:
  Groups entries by period and computes sums, trend deltas versus the
  prior comparable period, and a bounded productivity score. This is the
  shape consumed directly by dashboard rendering.

FAILURE SEMANTICS:
  This file never raises. All inputs are treated defensively: a missing
  TotalHours contributes zero, entries without a StartTime are excluded
  from hourly bucketing, and repeated calls over the same entry list are
  guaranteed to produce identical output (no internal accumulation).
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Aggregate filters entries whose date falls in the period (inclusive) and
// sums hours and entry count. Earnings are computed from the hours of
// earnings-bearing entries only (work type), multiplied by the hourly rate
// and rounded to 2 places for display.
func Aggregate(entries []TimeEntry, period Period, hourlyRate decimal.Decimal) PeriodStatistic {
	var stat PeriodStatistic
	stat.Hours = decimal.Zero
	earningHours := decimal.Zero

	for _, e := range entries {
		if !period.Contains(e.Date) {
			continue
		}
		stat.Entries++
		stat.Hours = stat.Hours.Add(e.TotalHours)
		if e.CountsTowardEarnings() {
			earningHours = earningHours.Add(e.TotalHours)
		}
	}

	stat.Hours = RoundHours(stat.Hours)
	stat.Earnings = RoundMoney(Earnings(earningHours, hourlyRate))
	return stat
}

// Trend returns the percentage change of current versus previous.
// A zero previous period maps to 100 when current is positive, else 0.
func Trend(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsPositive() {
			return hundred
		}
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred)
}

// ClassifyTrend maps a percent change onto up/down/stable with a ±5%
// dead-band, so small day-to-day noise does not flicker the indicator.
// The boundary values +5 and -5 classify stable.
func ClassifyTrend(percent decimal.Decimal) TrendDirection {
	five := decimal.NewFromInt(5)
	switch {
	case percent.GreaterThan(five):
		return TrendUp
	case percent.LessThan(five.Neg()):
		return TrendDown
	default:
		return TrendStable
	}
}

// ProductivityScore compares average hours per elapsed day against the
// daily target and returns a score bounded to [0,100].
// daysElapsed of zero (or less) scores 0.
func ProductivityScore(periodHours decimal.Decimal, daysElapsed int, targetHoursPerDay decimal.Decimal) int {
	if daysElapsed <= 0 || !targetHoursPerDay.IsPositive() {
		return 0
	}
	avg := periodHours.Div(decimal.NewFromInt(int64(daysElapsed)))
	score := avg.Div(targetHoursPerDay).Mul(hundred).Round(0).IntPart()
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(score)
}

// PeakHour buckets entries by the hour component of their start time, sums
// TotalHours per bucket, and returns the hour with the maximum sum. Ties
// break toward the lowest hour. The second return is false when no entry
// has a usable start time - callers must special-case that.
func PeakHour(entries []TimeEntry) (int, bool) {
	var buckets [24]decimal.Decimal
	seen := false

	for _, e := range entries {
		if e.StartTime == "" {
			continue
		}
		m, err := ParseClock(e.StartTime)
		if err != nil {
			continue
		}
		buckets[m/60] = buckets[m/60].Add(e.TotalHours)
		seen = true
	}
	if !seen {
		return 0, false
	}

	peak := 0
	for h := 1; h < 24; h++ {
		if buckets[h].GreaterThan(buckets[peak]) {
			peak = h
		}
	}
	return peak, true
}

// AggregateStatistics produces the today/week/month/productivity summary
// the dashboard consumes. It is a pure function of its inputs: calling it
// twice over the same entry list yields identical output.
func AggregateStatistics(entries []TimeEntry, now time.Time, hourlyRate decimal.Decimal, targets Targets) Statistics {
	today := Aggregate(entries, DayPeriod(now), hourlyRate)
	today.Target = targets.HoursPerDay

	week := Aggregate(entries, WeekPeriod(now), hourlyRate)
	week.Target = targets.WeekHours

	month := Aggregate(entries, MonthPeriod(now), hourlyRate)
	month.Target = targets.MonthHours

	prevMonth := Aggregate(entries, PreviousMonthPeriod(now), hourlyRate)
	comparison := Trend(month.Hours, prevMonth.Hours)

	return Statistics{
		Today: today,
		Week:  week,
		Month: month,
		Productivity: Productivity{
			Score:      ProductivityScore(month.Hours, now.Day(), targets.HoursPerDay),
			Trend:      ClassifyTrend(comparison),
			Comparison: comparison.Round(2),
		},
	}
}
