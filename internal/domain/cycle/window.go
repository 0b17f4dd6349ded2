package cycle

import (
	"fmt"
	"time"
)

// Phase names the two recurring periods of a game week.
type Phase string

const (
	// PhaseActive is the mission-selection period, Monday 12:00 through Friday 17:00.
	PhaseActive Phase = "ACTIVE"
	// PhaseReveal is the pairing-disclosure period, Friday 17:00 through next Monday 12:00.
	PhaseReveal Phase = "REVEAL"
)

const (
	revealStartWeekday = time.Friday
	revealStartHour    = 17
	activeStartWeekday = time.Monday
	activeStartHour    = 12
)

// PhaseAt reports which period now falls in. An instant exactly on a boundary
// belongs to the period that starts there: Friday 17:00 sharp is already REVEAL
// and Monday 12:00 sharp is already ACTIVE.
func (c Calendar) PhaseAt(now time.Time) Phase {
	local := now.In(c.loc)
	lastReveal := previousOrSame(local, revealStartWeekday, revealStartHour)
	lastActive := previousOrSame(local, activeStartWeekday, activeStartHour)
	if lastReveal.After(lastActive) {
		return PhaseReveal
	}
	return PhaseActive
}

// RevealedWeekOf returns the index of the week whose pairing is disclosed at
// now: the week containing the most recent reveal cutoff. REVEAL runs past the
// Monday 00:00 week rollover, so for the Monday-morning tail this is the
// previous calendar week, not WeekOf(now).
func (c Calendar) RevealedWeekOf(now time.Time) int {
	local := now.In(c.loc)
	return c.WeekOf(previousOrSame(local, revealStartWeekday, revealStartHour))
}

// NextTransition returns the first boundary strictly after now: the upcoming
// ACTIVE start while in REVEAL, the upcoming REVEAL start while in ACTIVE.
// Strictly-after semantics keep the target from collapsing onto now when now
// sits exactly on a boundary.
func (c Calendar) NextTransition(now time.Time) time.Time {
	local := now.In(c.loc)
	if c.PhaseAt(now) == PhaseReveal {
		return nextAfter(local, activeStartWeekday, activeStartHour)
	}
	return nextAfter(local, revealStartWeekday, revealStartHour)
}

// Remaining is the always-positive duration until the next phase transition,
// recomputed from now on every call.
func (c Calendar) Remaining(now time.Time) time.Duration {
	return c.NextTransition(now).Sub(now)
}

// FormatCountdown renders d as HH:MM:SS. Hours count total hours and are not
// wrapped at 24; negative durations render as 00:00:00.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// previousOrSame returns the latest instant at weekday/hour that is at or
// before t.
func previousOrSame(t time.Time, weekday time.Weekday, hour int) time.Time {
	candidate := onWeekday(t, weekday, hour)
	if candidate.After(t) {
		candidate = candidate.AddDate(0, 0, -7)
	}
	return candidate
}

// nextAfter returns the earliest instant at weekday/hour strictly after t.
func nextAfter(t time.Time, weekday time.Weekday, hour int) time.Time {
	candidate := onWeekday(t, weekday, hour)
	if !candidate.After(t) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

// onWeekday places weekday/hour inside the calendar week containing t.
func onWeekday(t time.Time, weekday time.Weekday, hour int) time.Time {
	start := weekStart(t)
	offset := (int(weekday) + 6) % 7
	day := start.AddDate(0, 0, offset)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, t.Location())
}
