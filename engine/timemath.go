/*
timemath.go - Wall-clock span and working-hours arithmetic

PURPOSE:
  Converts HH:mm start/end pairs and break minutes into decimal hours.
  All functions here are total: malformed input degrades to zero rather
  than erroring, because these feed statistics that must always render.

OVERNIGHT SHIFTS:
  A negative raw span means the shift crossed midnight, so one day
  (1440 minutes) is added. SpanMinutes("22:00","06:00") == 480.
  No upper bound is placed on span - a 23:59-long shift is legal.
*/
package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const minutesPerDay = 24 * 60

var sixty = decimal.NewFromInt(60)

// ParseClock parses an HH:mm 24-hour wall-clock string into minutes since
// midnight. Returns an error for anything that is not a valid clock value.
func ParseClock(s string) (int, error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes-since-midnight as HH:mm, wrapping at 24h.
func FormatClock(minutes int) string {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SpanMinutes computes end - start in minutes on a shared reference day.
// A negative result is treated as an overnight shift and gets one day added.
// Unparseable clocks yield 0.
func SpanMinutes(start, end string) int {
	s, err := ParseClock(start)
	if err != nil {
		return 0
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0
	}
	span := e - s
	if span < 0 {
		span += minutesPerDay
	}
	return span
}

// WorkingHours returns the net decimal hours between start and end after
// subtracting the break. Never negative: an oversized break floors the
// result to zero rather than erroring.
func WorkingHours(start, end string, breakMinutes int) decimal.Decimal {
	net := SpanMinutes(start, end) - breakMinutes
	if net < 0 {
		net = 0
	}
	return decimal.NewFromInt(int64(net)).Div(sixty)
}

// EndTimeFromDuration is the inverse operation used by bulk generation:
// it adds hours*60 + breakMinutes minutes to start, wrapping at midnight,
// to preview the implied end time for a standard-hours template.
func EndTimeFromDuration(start string, hours decimal.Decimal, breakMinutes int) string {
	s, err := ParseClock(start)
	if err != nil {
		s = 0
	}
	work := int(hours.Mul(sixty).Round(0).IntPart())
	return FormatClock(s + work + breakMinutes)
}
