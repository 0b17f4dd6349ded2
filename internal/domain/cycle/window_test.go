package cycle

import (
	"testing"
	"time"
)

func TestPhaseAt_ActiveMidweek(t *testing.T) {
	cal := mustCalendar(t)
	loc := cal.Location()

	// Wednesday 10:00 sits inside the selection period.
	now := time.Date(2024, 5, 8, 10, 0, 0, 0, loc)
	if got := cal.PhaseAt(now); got != PhaseActive {
		t.Fatalf("expected ACTIVE, got %s", got)
	}
}

func TestPhaseAt_RevealOverWeekend(t *testing.T) {
	cal := mustCalendar(t)
	loc := cal.Location()

	for _, now := range []time.Time{
		time.Date(2024, 5, 10, 18, 0, 0, 0, loc),   // Friday evening
		time.Date(2024, 5, 11, 3, 0, 0, 0, loc),    // Saturday
		time.Date(2024, 5, 13, 11, 59, 59, 0, loc), // Monday just before noon
	} {
		if got := cal.PhaseAt(now); got != PhaseReveal {
			t.Fatalf("expected REVEAL at %v, got %s", now, got)
		}
	}
}

func TestPhaseAt_ExactBoundaries(t *testing.T) {
	cal := mustCalendar(t)
	loc := cal.Location()

	fridayCut := time.Date(2024, 5, 10, 17, 0, 0, 0, loc)
	if got := cal.PhaseAt(fridayCut); got != PhaseReveal {
		t.Fatalf("Friday 17:00 sharp must already be REVEAL, got %s", got)
	}
	if got := cal.PhaseAt(fridayCut.Add(-time.Second)); got != PhaseActive {
		t.Fatalf("one second before the cut must still be ACTIVE, got %s", got)
	}

	mondayNoon := time.Date(2024, 5, 13, 12, 0, 0, 0, loc)
	if got := cal.PhaseAt(mondayNoon); got != PhaseActive {
		t.Fatalf("Monday 12:00 sharp must already be ACTIVE, got %s", got)
	}
	if got := cal.PhaseAt(mondayNoon.Add(-time.Second)); got != PhaseReveal {
		t.Fatalf("one second before Monday noon must still be REVEAL, got %s", got)
	}
}

func TestRevealedWeekOf_MondayTailStaysOnConcludedWeek(t *testing.T) {
	cal := mustCalendar(t)
	loc := cal.Location()

	// 2024-05-10 is a Friday; its reveal runs through 2024-05-13 Monday noon.
	fridayCut := time.Date(2024, 5, 10, 17, 0, 0, 0, loc)
	concluded := cal.WeekOf(fridayCut)

	for _, now := range []time.Time{
		fridayCut, // Friday 17:00 sharp
		time.Date(2024, 5, 11, 3, 0, 0, 0, loc),    // Saturday
		time.Date(2024, 5, 13, 0, 0, 0, 0, loc),    // Monday 00:00, new calendar week
		time.Date(2024, 5, 13, 11, 59, 59, 0, loc), // Monday just before noon
	} {
		if got := cal.RevealedWeekOf(now); got != concluded {
			t.Fatalf("expected revealed week %d at %v, got %d", concluded, now, got)
		}
	}

	monday := time.Date(2024, 5, 13, 9, 0, 0, 0, loc)
	if cal.WeekOf(monday) != concluded+1 {
		t.Fatalf("Monday morning must already be in the next calendar week")
	}
}

func TestNextTransition_Targets(t *testing.T) {
	cal := mustCalendar(t)
	loc := cal.Location()

	active := time.Date(2024, 5, 8, 10, 0, 0, 0, loc)
	if got, want := cal.NextTransition(active), time.Date(2024, 5, 10, 17, 0, 0, 0, loc); !got.Equal(want) {
		t.Fatalf("expected next transition %v, got %v", want, got)
	}

	reveal := time.Date(2024, 5, 11, 9, 0, 0, 0, loc)
	if got, want := cal.NextTransition(reveal), time.Date(2024, 5, 13, 12, 0, 0, 0, loc); !got.Equal(want) {
		t.Fatalf("expected next transition %v, got %v", want, got)
	}

	// Exactly at the reveal cut the target is the upcoming Monday, not the
	// instant itself.
	cut := time.Date(2024, 5, 10, 17, 0, 0, 0, loc)
	if got, want := cal.NextTransition(cut), time.Date(2024, 5, 13, 12, 0, 0, 0, loc); !got.Equal(want) {
		t.Fatalf("expected next transition %v at the cut, got %v", want, got)
	}
}

func TestRemaining_StrictlyDecreasingWithinPeriod(t *testing.T) {
	cal := mustCalendar(t)
	loc := cal.Location()

	now := time.Date(2024, 5, 8, 10, 0, 0, 0, loc)
	prev := cal.Remaining(now)
	for i := 0; i < 10; i++ {
		now = now.Add(37 * time.Minute)
		if cal.PhaseAt(now) != PhaseActive {
			break
		}
		cur := cal.Remaining(now)
		if cur >= prev {
			t.Fatalf("remaining did not decrease at %v: %v >= %v", now, cur, prev)
		}
		prev = cur
	}
}

func TestRemaining_ResetsAfterBoundaryAndNeverNegative(t *testing.T) {
	cal := mustCalendar(t)
	loc := cal.Location()

	cut := time.Date(2024, 5, 10, 17, 0, 0, 0, loc)
	before := cal.Remaining(cut.Add(-time.Second))
	after := cal.Remaining(cut)

	if before > time.Second {
		t.Fatalf("expected remaining just before the cut to be <= 1s, got %v", before)
	}
	if after <= before {
		t.Fatalf("expected remaining to reset to a large value after the cut: %v <= %v", after, before)
	}

	d := time.Date(2024, 5, 6, 0, 0, 0, 0, loc)
	for i := 0; i < 7*24; i++ {
		if cal.Remaining(d) <= 0 {
			t.Fatalf("remaining must be strictly positive, got %v at %v", cal.Remaining(d), d)
		}
		d = d.Add(time.Hour)
	}
}

func TestFormatCountdown(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-5 * time.Second, "00:00:00"},
		{90 * time.Second, "00:01:30"},
		{3*time.Hour + 4*time.Minute + 5*time.Second, "03:04:05"},
		{49*time.Hour + 30*time.Minute, "49:30:00"},
	}

	for _, tc := range cases {
		if got := FormatCountdown(tc.d); got != tc.want {
			t.Fatalf("FormatCountdown(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
