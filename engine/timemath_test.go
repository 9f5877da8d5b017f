package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/worktrack/earnings-engine/engine"
)

// =============================================================================
// CLOCK PARSING
// =============================================================================

func TestParseClock_Valid(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"09:00", 540},
		{"17:30", 1050},
		{"23:59", 1439},
	}
	for _, c := range cases {
		got, err := engine.ParseClock(c.in)
		if err != nil {
			t.Fatalf("ParseClock(%q): unexpected error %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseClock(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseClock_Invalid(t *testing.T) {
	for _, in := range []string{"", "9", "24:00", "12:60", "ab:cd", "12-30"} {
		if _, err := engine.ParseClock(in); err == nil {
			t.Errorf("ParseClock(%q): expected error", in)
		}
	}
}

func TestFormatClock_WrapsAtMidnight(t *testing.T) {
	if got := engine.FormatClock(1500); got != "01:00" {
		t.Errorf("FormatClock(1500) = %q, want 01:00", got)
	}
	if got := engine.FormatClock(540); got != "09:00" {
		t.Errorf("FormatClock(540) = %q, want 09:00", got)
	}
}

// =============================================================================
// SPAN AND WORKING HOURS
// =============================================================================

func TestSpanMinutes_Overnight(t *testing.T) {
	// GIVEN: A shift from 22:00 to 06:00
	// WHEN: Computing the raw span
	// THEN: The negative wall-clock delta gains one day: 480 minutes

	if got := engine.SpanMinutes("22:00", "06:00"); got != 480 {
		t.Errorf("SpanMinutes(22:00, 06:00) = %d, want 480", got)
	}
}

func TestSpanMinutes_SameDay(t *testing.T) {
	if got := engine.SpanMinutes("09:00", "17:30"); got != 510 {
		t.Errorf("SpanMinutes(09:00, 17:30) = %d, want 510", got)
	}
}

func TestSpanMinutes_MalformedInputYieldsZero(t *testing.T) {
	if got := engine.SpanMinutes("bogus", "17:00"); got != 0 {
		t.Errorf("SpanMinutes(bogus, 17:00) = %d, want 0", got)
	}
}

func TestWorkingHours_StandardDay(t *testing.T) {
	// GIVEN: 09:00 to 17:30 with a 30 minute break
	// THEN: Exactly 8 decimal hours

	got := engine.WorkingHours("09:00", "17:30", 30)
	if !got.Equal(decimal.NewFromInt(8)) {
		t.Errorf("WorkingHours = %s, want 8", got)
	}
}

func TestWorkingHours_BreakExceedsSpan(t *testing.T) {
	// A break longer than the span floors at zero, never negative.
	got := engine.WorkingHours("09:00", "09:30", 60)
	if !got.IsZero() {
		t.Errorf("WorkingHours = %s, want 0", got)
	}
}

func TestWorkingHours_OvernightShift(t *testing.T) {
	got := engine.WorkingHours("22:00", "06:00", 0)
	if !got.Equal(decimal.NewFromInt(8)) {
		t.Errorf("WorkingHours(22:00, 06:00) = %s, want 8", got)
	}
}

// =============================================================================
// END-TIME INVERSE
// =============================================================================

func TestEndTimeFromDuration_RoundTrip(t *testing.T) {
	// GIVEN: 09:00 start, 8 standard hours, 60 minute break
	// WHEN: Deriving the end time and feeding it back through WorkingHours
	// THEN: The derived end is 18:00 and the hours survive the round trip

	end := engine.EndTimeFromDuration("09:00", decimal.NewFromInt(8), 60)
	if end != "18:00" {
		t.Fatalf("EndTimeFromDuration = %q, want 18:00", end)
	}

	hours := engine.WorkingHours("09:00", end, 60)
	if !hours.Equal(decimal.NewFromInt(8)) {
		t.Errorf("round trip hours = %s, want 8", hours)
	}
}

func TestEndTimeFromDuration_WrapsPastMidnight(t *testing.T) {
	end := engine.EndTimeFromDuration("22:00", decimal.NewFromInt(4), 0)
	if end != "02:00" {
		t.Errorf("EndTimeFromDuration = %q, want 02:00", end)
	}
}
