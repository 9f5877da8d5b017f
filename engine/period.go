package engine

import "time"

// =============================================================================
// PERIOD - Inclusive ISO-date range used for all aggregation
// =============================================================================

const isoDate = "2006-01-02"

// ISODate formats a time as yyyy-MM-dd.
func ISODate(t time.Time) string {
	return t.Format(isoDate)
}

// Period is an inclusive [Start, End] range of ISO dates. Membership is
// string comparison - intentional, because yyyy-MM-dd sorts lexically and
// it sidesteps timezone parsing bugs entirely.
type Period struct {
	Start string
	End   string
}

func (p Period) Contains(date string) bool {
	return date >= p.Start && date <= p.End
}

func (p Period) String() string {
	return "[" + p.Start + ", " + p.End + "]"
}

// DayPeriod returns the single-day period containing now.
func DayPeriod(now time.Time) Period {
	d := ISODate(now)
	return Period{Start: d, End: d}
}

// WeekPeriod returns the Monday-to-Sunday week containing now.
func WeekPeriod(now time.Time) Period {
	wd := int(now.Weekday())
	if wd == 0 {
		wd = 7 // ISO: Sunday belongs to the week that started the previous Monday
	}
	monday := now.AddDate(0, 0, -(wd - 1))
	return Period{Start: ISODate(monday), End: ISODate(monday.AddDate(0, 0, 6))}
}

// MonthPeriod returns the calendar month containing now.
func MonthPeriod(now time.Time) Period {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)
	return Period{Start: ISODate(first), End: ISODate(last)}
}

// PreviousWeekPeriod returns the comparable week immediately before the one
// containing now, for trend computation.
func PreviousWeekPeriod(now time.Time) Period {
	return WeekPeriod(now.AddDate(0, 0, -7))
}

// PreviousMonthPeriod returns the calendar month before the one containing now.
func PreviousMonthPeriod(now time.Time) Period {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return MonthPeriod(first.AddDate(0, 0, -1))
}

// DaysInMonth returns the number of calendar days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
